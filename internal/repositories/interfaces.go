package repositories

import (
	"context"

	"github.com/classpulse/engagement-service/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id uint) (*models.Class, error)
	GetByJoinCode(ctx context.Context, code string) (*models.Class, error)
	ExistsByJoinCode(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)

	// IsOwned reports whether the class exists and belongs to the teacher.
	IsOwned(ctx context.Context, classID, teacherID uint) (bool, error)
}

type MembershipRepository interface {
	Create(ctx context.Context, member *models.ClassMember) error
	Exists(ctx context.Context, classID, studentID uint) (bool, error)
	ListClassesByStudent(ctx context.Context, studentID uint) ([]models.Class, error)
	ClassIDsByStudent(ctx context.Context, studentID uint) ([]uint, error)
}

// PollSummary is a poll row joined with its option count for teacher listings.
type PollSummary struct {
	models.Poll
	OptionCount int `json:"option_count"`
}

type PollRepository interface {
	// Create persists the poll together with its options atomically.
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, id uint) (*models.Poll, error)

	// GetOwned resolves a poll only when its class belongs to teacherID;
	// a poll outside the teacher's classes reads as not found.
	GetOwned(ctx context.Context, pollID, teacherID uint) (*models.Poll, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]PollSummary, error)
	ListByClassIDs(ctx context.Context, classIDs []uint, status *models.ActivityStatus) ([]models.Poll, error)
	UpdateStatus(ctx context.Context, pollID uint, status models.ActivityStatus) error

	GetOptions(ctx context.Context, pollID uint) ([]models.PollOption, error)
	CreateResponse(ctx context.Context, resp *models.PollResponse) error
	CountResponses(ctx context.Context, pollID uint) (int64, error)
	CountResponsesByOption(ctx context.Context, optionID uint) (int64, error)
}

// QuizSummary is a quiz row joined with its question count for teacher listings.
type QuizSummary struct {
	models.Quiz
	QuestionCount int `json:"question_count"`
}

type QuizRepository interface {
	// Create persists the quiz with all questions and options atomically.
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetOwned(ctx context.Context, quizID, teacherID uint) (*models.Quiz, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]QuizSummary, error)
	ListByClassIDs(ctx context.Context, classIDs []uint, status *models.ActivityStatus) ([]models.Quiz, error)
	UpdateStatus(ctx context.Context, quizID uint, status models.ActivityStatus) error

	GetQuestions(ctx context.Context, quizID uint) ([]models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error

	// CreateSubmission inserts the per-(quiz, student) guard row; a second
	// insert for the same pair returns ErrDuplicate.
	CreateSubmission(ctx context.Context, sub *models.QuizSubmission) error
	CreateResponses(ctx context.Context, responses []models.QuizResponse) error
	HasSubmission(ctx context.Context, quizID, studentID uint) (bool, error)
	GetResponses(ctx context.Context, quizID, studentID uint) ([]models.QuizResponse, error)
	SubmittedStudentIDs(ctx context.Context, quizID uint) ([]uint, error)
}
