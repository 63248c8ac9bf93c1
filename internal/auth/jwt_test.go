package auth

import (
	"testing"
	"time"

	"github.com/classpulse/engagement-service/internal/models"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := &models.User{ID: 42, Email: "t@example.com", Role: models.RoleTeacher}

	token, err := svc.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != 42 || claims.Role != models.RoleTeacher {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestJWTService_Rejections(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	user := &models.User{ID: 1, Email: "x@example.com", Role: models.RoleStudent}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.Validate("not-a-token"); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTService("other-secret", time.Hour).Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := svc.Validate(token); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := NewJWTService("secret", -time.Minute).Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := svc.Validate(token); err != ErrInvalidToken {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash equals the plain password")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("wrong password accepted")
	}
}
