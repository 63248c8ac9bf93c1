package models

import (
	"time"
)

type Quiz struct {
	ID      uint           `json:"id" gorm:"primaryKey"`
	ClassID uint           `json:"class_id" gorm:"not null;index"`
	Title   string         `json:"title" gorm:"not null;size:200"`
	Timer   *int           `json:"timer"` // seconds, nil = untimed
	Status  ActivityStatus `json:"status" gorm:"default:draft;size:20;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []QuizQuestion `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`

	// Computed (not stored)
	QuestionCount int `json:"question_count,omitempty" gorm:"-"`
}

type QuizQuestion struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	Text   string `json:"text" gorm:"type:text;not null"`

	// CorrectOptionID references one of this question's own options. Nil when
	// the authoring payload carried an out-of-range correct_option_index; the
	// question then grades as never-correct rather than erroring.
	CorrectOptionID *uint `json:"correct_option_id,omitempty"`

	Options []QuizOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type QuizOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;size:500"`
}

// QuizSubmission is the one-per-(quiz, student) guard row written before any
// answer rows. Its unique index is what makes submission one-shot under
// concurrency: two simultaneous submissions always collide here, even when
// their answer sets are disjoint.
type QuizSubmission struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	QuizID    uint `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_student_submission"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_quiz_student_submission"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}

// QuizResponse rows carry the per-question answers of one submission. The
// unique index over (quiz_id, student_id, question_id) rejects duplicate
// answers within a payload; one-shot semantics come from QuizSubmission.
type QuizResponse struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	QuizID     uint `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_student_question"`
	StudentID  uint `json:"student_id" gorm:"not null;uniqueIndex:idx_quiz_student_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_quiz_student_question"`
	OptionID   uint `json:"option_id" gorm:"not null"`

	RespondedAt time.Time `json:"responded_at" gorm:"autoCreateTime"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

func (QuizOption) TableName() string {
	return "quiz_options"
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

func (QuizResponse) TableName() string {
	return "quiz_responses"
}
