package services

import (
	"errors"
	"fmt"

	"github.com/classpulse/engagement-service/internal/validator"
)

// Sentinel errors for conditions handlers map onto HTTP statuses.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrClassNotFound = errors.New("class not found")
	ErrPollNotFound  = errors.New("poll not found")
	ErrQuizNotFound  = errors.New("quiz not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrAlreadyMember        = errors.New("student already joined this class")
	ErrQuizAlreadySubmitted = errors.New("quiz already submitted")

	ErrOptionNotFound = errors.New("option does not belong to this poll")
)

// PermissionError reports an action attempted on a resource the caller does
// not own or is not a member of.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrPollNotFound) ||
		errors.Is(err, ErrQuizNotFound)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAlreadyMember) ||
		errors.Is(err, ErrQuizAlreadySubmitted)
}
