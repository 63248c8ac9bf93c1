package models

import (
	"time"
)

type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the closed set. Roles arrive from
// request payloads and token claims as plain strings, so the boundary checks
// them here before anything downstream trusts the value.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	FullName     string   `json:"full_name" gorm:"size:100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Classes []Class `json:"-" gorm:"foreignKey:TeacherID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}
