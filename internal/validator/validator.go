package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/classpulse/engagement-service/internal/models"
)

// Validator wraps go-playground/validator with the custom rules the request
// DTOs reference (role and status enums, join code shape).
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single failed field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates a struct; nil means valid.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerRules() {
	// Three-state activity lifecycle. Every transition is legal, so status
	// updates only need membership in the enum.
	v.validate.RegisterValidation("activity_status", func(fl validator.FieldLevel) bool {
		return models.ActivityStatus(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	// Join codes are exactly 6 characters drawn from A-Z0-9.
	v.validate.RegisterValidation("join_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) != models.JoinCodeLength {
			return false
		}
		for _, c := range code {
			if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
				return false
			}
		}
		return true
	})
}

// ToValidationErrors converts validator.ValidationErrors into the local type.
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			errors = append(errors, ValidationError{
				Field:   fe.Field(),
				Message: errorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errors
	}
	return ValidationErrors{{Field: "", Message: err.Error()}}
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have at least %s items or characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s items or characters", fe.Param())
	case "activity_status":
		return fmt.Sprintf("must be one of: %s, %s, %s",
			models.StatusDraft, models.StatusLive, models.StatusClosed)
	case "user_role":
		return fmt.Sprintf("must be one of: %s, %s", models.RoleTeacher, models.RoleStudent)
	case "join_code":
		return fmt.Sprintf("must be %d uppercase letters or digits", models.JoinCodeLength)
	default:
		return strings.TrimSpace(fmt.Sprintf("failed rule %s %s", fe.Tag(), fe.Param()))
	}
}
