package validator

// Request DTOs for the HTTP surface. Validation tags are enforced by the
// Validator in this package before any service logic runs.

// ===== AUTH =====

type SignUpRequest struct {
	FullName string `json:"full_name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ===== CLASSES =====

type CreateClassRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type JoinClassRequest struct {
	JoinCode string `json:"join_code" validate:"required,join_code"`
}

// ===== POLLS =====

type CreatePollRequest struct {
	ClassID  uint     `json:"class_id" validate:"required"`
	Question string   `json:"question" validate:"required,max=2000"`
	Options  []string `json:"options" validate:"required,min=2,max=10,dive,required,max=500"`
}

type VoteRequest struct {
	OptionID uint `json:"option_id" validate:"required"`
}

// ===== QUIZZES =====

type CreateQuizRequest struct {
	ClassID   uint                  `json:"class_id" validate:"required"`
	Title     string                `json:"title" validate:"required,max=200"`
	Timer     *int                  `json:"timer" validate:"omitempty,min=10,max=7200"`
	Questions []QuizQuestionRequest `json:"questions" validate:"required,min=1,max=100,dive"`
}

type QuizQuestionRequest struct {
	Text    string   `json:"text" validate:"required,max=2000"`
	Options []string `json:"options" validate:"required,min=2,max=10,dive,required,max=500"`

	// Zero-based index into Options. An out-of-range value is accepted and
	// leaves the question without a correct option; it then always grades
	// incorrect.
	CorrectOptionIndex int `json:"correct_option_index"`
}

type SubmitQuizRequest struct {
	Answers []QuizAnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

type QuizAnswerRequest struct {
	QuestionID uint `json:"question_id" validate:"required"`
	OptionID   uint `json:"option_id" validate:"required"`
}

// ===== SHARED =====

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,activity_status"`
}
