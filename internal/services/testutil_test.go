package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/classpulse/engagement-service/internal/auth"
	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories/memory"
	"github.com/classpulse/engagement-service/internal/validator"
)

// testEnv wires the services against the in-memory repository and the
// recording event publisher.
type testEnv struct {
	repo      *memory.Repository
	publisher *events.MockEventPublisher
	services  ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewRepository()
	publisher := events.NewMockEventPublisher(logger)
	jwt := auth.NewJWTService("test-secret", time.Hour)
	sm := NewServiceManager(repo, publisher, jwt, logger, validator.New())
	return &testEnv{repo: repo, publisher: publisher, services: sm}
}

func (e *testEnv) createTeacher(t *testing.T, email string) *models.User {
	t.Helper()
	return e.createUser(t, email, models.RoleTeacher)
}

func (e *testEnv) createStudent(t *testing.T, email string) *models.User {
	t.Helper()
	return e.createUser(t, email, models.RoleStudent)
}

func (e *testEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{FullName: "Test " + email, Email: email, PasswordHash: "x", Role: role}
	if err := e.repo.User().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEnv) createClass(t *testing.T, teacherID uint, name string) *models.Class {
	t.Helper()
	class, err := e.services.Class().Create(context.Background(), &CreateClassRequest{Name: name}, teacherID)
	if err != nil {
		t.Fatalf("failed to create class: %v", err)
	}
	return class
}

func (e *testEnv) joinClass(t *testing.T, class *models.Class, studentID uint) {
	t.Helper()
	_, err := e.services.Class().Join(context.Background(), &JoinClassRequest{JoinCode: class.JoinCode}, studentID)
	if err != nil {
		t.Fatalf("failed to join class: %v", err)
	}
}
