package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/validator"
)

type pollService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewPollService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) PollService {
	return &pollService{repo: repo, publisher: publisher, logger: logger, validator: v}
}

func (s *pollService) Create(ctx context.Context, req *CreatePollRequest, teacherID uint) (*models.Poll, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	owned, err := s.repo.Class().IsOwned(ctx, req.ClassID, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to check class ownership: %w", err)
	}
	if !owned {
		// An unowned class reads as not found rather than forbidden so the
		// response does not reveal which class IDs exist.
		return nil, ErrClassNotFound
	}

	poll := &models.Poll{
		ClassID:  req.ClassID,
		Question: req.Question,
		Status:   models.StatusDraft,
	}
	for _, text := range req.Options {
		poll.Options = append(poll.Options, models.PollOption{Text: text})
	}

	if err := s.repo.Poll().Create(ctx, poll); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	s.logger.Info("Poll created", "poll_id", poll.ID, "class_id", poll.ClassID, "teacher_id", teacherID)
	return poll, nil
}

func (s *pollService) ListByTeacher(ctx context.Context, teacherID uint) ([]repositories.PollSummary, error) {
	polls, err := s.repo.Poll().ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (s *pollService) UpdateStatus(ctx context.Context, pollID uint, req *UpdateStatusRequest, teacherID uint) (*models.Poll, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	newStatus := models.ActivityStatus(req.Status)

	poll, err := s.repo.Poll().GetOwned(ctx, pollID, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	// All nine transitions of the three-state lifecycle are legal, so only
	// enum membership (checked above) gates the update.
	oldStatus := poll.Status
	if err := s.repo.Poll().UpdateStatus(ctx, pollID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update poll status: %w", err)
	}
	poll.Status = newStatus

	s.logger.Info("Poll status changed", "poll_id", pollID, "from", oldStatus, "to", newStatus)
	s.publish(ctx, events.NewEvent(events.EventPollStatusChanged, events.StatusChangedEvent{
		ResourceID: pollID,
		Resource:   "poll",
		OldStatus:  string(oldStatus),
		NewStatus:  string(newStatus),
		TeacherID:  teacherID,
	}))
	return poll, nil
}

func (s *pollService) Tally(ctx context.Context, pollID, teacherID uint) (*TallyResponse, error) {
	poll, err := s.repo.Poll().GetOwned(ctx, pollID, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	options, err := s.repo.Poll().GetOptions(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll options: %w", err)
	}

	total, err := s.repo.Poll().CountResponses(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	tally := &TallyResponse{
		PollID:     pollID,
		Question:   poll.Question,
		Status:     poll.Status,
		TotalVotes: total,
		Options:    make([]OptionTally, 0, len(options)),
	}
	for _, opt := range options {
		votes, err := s.repo.Poll().CountResponsesByOption(ctx, opt.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count votes for option %d: %w", opt.ID, err)
		}
		percentage := 0.0
		if total > 0 {
			percentage = float64(votes) / float64(total) * 100
		}
		tally.Options = append(tally.Options, OptionTally{
			OptionID:   opt.ID,
			Text:       opt.Text,
			Votes:      votes,
			Percentage: percentage,
		})
	}
	return tally, nil
}

func (s *pollService) ListLiveForStudent(ctx context.Context, studentID uint) ([]models.Poll, error) {
	classIDs, err := s.repo.Membership().ClassIDsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve joined classes: %w", err)
	}
	if len(classIDs) == 0 {
		return []models.Poll{}, nil
	}

	live := models.StatusLive
	polls, err := s.repo.Poll().ListByClassIDs(ctx, classIDs, &live)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (s *pollService) Vote(ctx context.Context, pollID uint, req *VoteRequest, studentID uint) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	poll, err := s.repo.Poll().GetByID(ctx, pollID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPollNotFound
		}
		return fmt.Errorf("failed to load poll: %w", err)
	}

	member, err := s.repo.Membership().Exists(ctx, poll.ClassID, studentID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return NewPermissionError(studentID, pollID, "poll", "vote", "not a member of the poll's class")
	}

	valid := false
	for _, opt := range poll.Options {
		if opt.ID == req.OptionID {
			valid = true
			break
		}
	}
	if !valid {
		return ErrOptionNotFound
	}

	// No uniqueness over (poll, student): repeat votes all persist. That
	// matches the observed ballot behavior; see the PollResponse model note.
	resp := &models.PollResponse{PollID: pollID, StudentID: studentID, OptionID: req.OptionID}
	if err := s.repo.Poll().CreateResponse(ctx, resp); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	s.logger.Info("Vote recorded", "poll_id", pollID, "student_id", studentID, "option_id", req.OptionID)
	return nil
}

func (s *pollService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
