package models

import (
	"time"
)

// JoinCodeLength is the length of the generated class join code.
const JoinCodeLength = 6

type Class struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	TeacherID uint   `json:"teacher_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	JoinCode  string `json:"join_code" gorm:"uniqueIndex;not null;size:12"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Teacher Teacher       `json:"-" gorm:"foreignKey:TeacherID"`
	Members []ClassMember `json:"-" gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE"`
	Polls   []Poll        `json:"-" gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE"`
	Quizzes []Quiz        `json:"-" gorm:"foreignKey:ClassID;constraint:OnDelete:CASCADE"`
}

// Teacher is the owning-user relation of a class. Declared as an alias so the
// gorm relation reads naturally without a second users table mapping.
type Teacher = User

type ClassMember struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	ClassID   uint `json:"class_id" gorm:"not null;uniqueIndex:idx_class_student"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_class_student"`

	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

func (Class) TableName() string {
	return "classes"
}

func (ClassMember) TableName() string {
	return "class_members"
}
