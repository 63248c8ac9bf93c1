package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/utils"
	"github.com/classpulse/engagement-service/internal/validator"
)

// joinCodeMaxAttempts bounds the generate-until-unique loop; with a 36^6
// space collisions are rare, so hitting the bound means something is wrong
// with the random source or the table is implausibly full.
const joinCodeMaxAttempts = 10

type classService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClassService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ClassService {
	return &classService{repo: repo, publisher: publisher, logger: logger, validator: v}
}

func (s *classService) Create(ctx context.Context, req *CreateClassRequest, teacherID uint) (*models.Class, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var class *models.Class
	for attempt := 0; attempt < joinCodeMaxAttempts; attempt++ {
		code, err := utils.GenerateJoinCode()
		if err != nil {
			return nil, err
		}

		exists, err := s.repo.Class().ExistsByJoinCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check join code: %w", err)
		}
		if exists {
			continue
		}

		class = &models.Class{TeacherID: teacherID, Name: req.Name, JoinCode: code}
		err = s.repo.Class().Create(ctx, class)
		if err == nil {
			break
		}
		// A concurrent creator can win the same code between the existence
		// check and the insert; the unique index rejects ours, so retry
		// with a fresh code.
		if repositories.IsDuplicateError(err) {
			class = nil
			continue
		}
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	if class == nil {
		return nil, fmt.Errorf("failed to allocate a unique join code after %d attempts", joinCodeMaxAttempts)
	}

	s.logger.Info("Class created", "class_id", class.ID, "teacher_id", teacherID, "join_code", class.JoinCode)
	s.publish(ctx, events.NewEvent(events.EventClassCreated, class))
	return class, nil
}

func (s *classService) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	classes, err := s.repo.Class().ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (s *classService) Join(ctx context.Context, req *JoinClassRequest, studentID uint) (*models.Class, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	class, err := s.repo.Class().GetByJoinCode(ctx, req.JoinCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to resolve join code: %w", err)
	}

	member := &models.ClassMember{ClassID: class.ID, StudentID: studentID}
	if err := s.repo.Membership().Create(ctx, member); err != nil {
		// Repeat joins are a Conflict, never a silent success. The unique
		// index over (class_id, student_id) also settles concurrent joins.
		if repositories.IsDuplicateError(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.logger.Info("Student joined class", "class_id", class.ID, "student_id", studentID)
	s.publish(ctx, events.NewEvent(events.EventClassJoined, events.ClassJoinedEvent{
		ClassID:   class.ID,
		StudentID: studentID,
		JoinCode:  class.JoinCode,
	}))
	return class, nil
}

func (s *classService) ListJoined(ctx context.Context, studentID uint) ([]models.Class, error) {
	classes, err := s.repo.Membership().ListClassesByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined classes: %w", err)
	}
	return classes, nil
}

func (s *classService) IsMember(ctx context.Context, classID, studentID uint) (bool, error) {
	return s.repo.Membership().Exists(ctx, classID, studentID)
}

// publish is fire-and-forget: event delivery never fails the request.
func (s *classService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
