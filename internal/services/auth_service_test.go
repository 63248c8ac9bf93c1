package services

import (
	"context"
	"errors"
	"testing"

	"github.com/classpulse/engagement-service/internal/models"
)

func TestAuthService_SignUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := &SignUpRequest{
		FullName: "Ada Teacher",
		Email:    "ada@example.com",
		Password: "correct-horse",
		Role:     "teacher",
	}
	resp, err := env.services.Auth().SignUp(ctx, req)
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.User.Role != models.RoleTeacher {
		t.Errorf("expected teacher role, got %s", resp.User.Role)
	}
	if resp.User.PasswordHash == req.Password {
		t.Error("password stored unhashed")
	}

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := env.services.Auth().SignUp(ctx, req)
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := env.services.Auth().SignUp(ctx, &SignUpRequest{
			FullName: "X", Email: "x@example.com", Password: "longenough", Role: "admin",
		})
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := env.services.Auth().SignUp(ctx, &SignUpRequest{
			FullName: "X", Email: "y@example.com", Password: "short", Role: "student",
		})
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.services.Auth().SignUp(ctx, &SignUpRequest{
		FullName: "Stu Dent",
		Email:    "stu@example.com",
		Password: "correct-horse",
		Role:     "student",
	}); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	resp, err := env.services.Auth().Login(ctx, &LoginRequest{Email: "stu@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.services.Auth().Login(ctx, &LoginRequest{Email: "stu@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		_, err := env.services.Auth().Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "whatever"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
