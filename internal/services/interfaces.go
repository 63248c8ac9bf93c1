package services

import (
	"context"

	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Request types live next to their validation tags.
type SignUpRequest = validator.SignUpRequest
type LoginRequest = validator.LoginRequest
type CreateClassRequest = validator.CreateClassRequest
type JoinClassRequest = validator.JoinClassRequest
type CreatePollRequest = validator.CreatePollRequest
type VoteRequest = validator.VoteRequest
type CreateQuizRequest = validator.CreateQuizRequest
type QuizQuestionRequest = validator.QuizQuestionRequest
type SubmitQuizRequest = validator.SubmitQuizRequest
type QuizAnswerRequest = validator.QuizAnswerRequest
type UpdateStatusRequest = validator.UpdateStatusRequest

// ===== RESPONSE DTOs =====

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// OptionTally is one option's share of a poll's votes.
type OptionTally struct {
	OptionID   uint    `json:"option_id"`
	Text       string  `json:"text"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type TallyResponse struct {
	PollID     uint                  `json:"poll_id"`
	Question   string                `json:"question"`
	Status     models.ActivityStatus `json:"status"`
	TotalVotes int64                 `json:"total_votes"`
	Options    []OptionTally         `json:"options"`
}

// QuestionResult is the per-question correctness entry of a graded quiz,
// ordered by question ID.
type QuestionResult struct {
	QuestionID uint `json:"question_id"`
	Correct    bool `json:"correct"`
}

type QuizResultResponse struct {
	QuizID     uint             `json:"quiz_id"`
	StudentID  uint             `json:"student_id"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Details    []QuestionResult `json:"details"`
}

// StudentResultResponse augments a graded result with the student's identity
// for teacher-facing listings.
type StudentResultResponse struct {
	QuizResultResponse
	StudentName  string `json:"student_name"`
	StudentEmail string `json:"student_email"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
}

type ClassService interface {
	Create(ctx context.Context, req *CreateClassRequest, teacherID uint) (*models.Class, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)

	Join(ctx context.Context, req *JoinClassRequest, studentID uint) (*models.Class, error)
	ListJoined(ctx context.Context, studentID uint) ([]models.Class, error)
	IsMember(ctx context.Context, classID, studentID uint) (bool, error)
}

type PollService interface {
	Create(ctx context.Context, req *CreatePollRequest, teacherID uint) (*models.Poll, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]repositories.PollSummary, error)
	UpdateStatus(ctx context.Context, pollID uint, req *UpdateStatusRequest, teacherID uint) (*models.Poll, error)
	Tally(ctx context.Context, pollID, teacherID uint) (*TallyResponse, error)

	ListLiveForStudent(ctx context.Context, studentID uint) ([]models.Poll, error)
	Vote(ctx context.Context, pollID uint, req *VoteRequest, studentID uint) error
}

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, teacherID uint) (*models.Quiz, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]repositories.QuizSummary, error)
	UpdateStatus(ctx context.Context, quizID uint, req *UpdateStatusRequest, teacherID uint) (*models.Quiz, error)

	ListLiveForStudent(ctx context.Context, studentID uint) ([]models.Quiz, error)
	Submit(ctx context.Context, quizID uint, req *SubmitQuizRequest, studentID uint) (*QuizResultResponse, error)
	GetMyResult(ctx context.Context, quizID, studentID uint) (*QuizResultResponse, error)

	GetAllResults(ctx context.Context, quizID, teacherID uint) ([]StudentResultResponse, error)

	// ExportResults renders GetAllResults as an xlsx workbook and returns the
	// file contents with a suggested filename.
	ExportResults(ctx context.Context, quizID, teacherID uint) ([]byte, string, error)
}

// ServiceManager bundles the services for handler wiring.
type ServiceManager interface {
	Auth() AuthService
	Class() ClassService
	Poll() PollService
	Quiz() QuizService
}
