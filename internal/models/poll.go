package models

import (
	"time"
)

// ActivityStatus is the lifecycle state shared by polls and quizzes.
// Every transition among the three states is legal, including self-loops;
// the original system never constrained ordering (closed -> draft included)
// and that behavior is preserved deliberately.
type ActivityStatus string

const (
	StatusDraft  ActivityStatus = "draft"
	StatusLive   ActivityStatus = "live"
	StatusClosed ActivityStatus = "closed"
)

func (s ActivityStatus) Valid() bool {
	return s == StatusDraft || s == StatusLive || s == StatusClosed
}

type Poll struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	ClassID  uint           `json:"class_id" gorm:"not null;index"`
	Question string         `json:"question" gorm:"type:text;not null"`
	Status   ActivityStatus `json:"status" gorm:"default:draft;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Options   []PollOption   `json:"options,omitempty" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`
	Responses []PollResponse `json:"-" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`

	// Computed (not stored)
	OptionCount int `json:"option_count,omitempty" gorm:"-"`
}

type PollOption struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	PollID uint   `json:"poll_id" gorm:"not null;index"`
	Text   string `json:"text" gorm:"not null;size:500"`
}

// PollResponse carries no uniqueness over (poll_id, student_id): a student
// may vote more than once. Observed behavior of the original system; whether
// that is intended ballot flexibility or a missing constraint is unresolved,
// so it is preserved rather than fixed here.
type PollResponse struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	PollID    uint `json:"poll_id" gorm:"not null;index"`
	StudentID uint `json:"student_id" gorm:"not null;index"`
	OptionID  uint `json:"option_id" gorm:"not null;index"`

	RespondedAt time.Time `json:"responded_at" gorm:"autoCreateTime"`
}

func (Poll) TableName() string {
	return "polls"
}

func (PollOption) TableName() string {
	return "poll_options"
}

func (PollResponse) TableName() string {
	return "poll_responses"
}
