package services

import (
	"log/slog"

	"github.com/classpulse/engagement-service/internal/auth"
	"github.com/classpulse/engagement-service/internal/events"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/validator"
)

// serviceManager implements ServiceManager: one place to construct the
// services with their shared dependencies.
type serviceManager struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	jwt       *auth.JWTService
	logger    *slog.Logger
	validator *validator.Validator

	authService  AuthService
	classService ClassService
	pollService  PollService
	quizService  QuizService
}

func NewServiceManager(repo repositories.Repository, publisher events.EventPublisher, jwt *auth.JWTService, logger *slog.Logger, v *validator.Validator) ServiceManager {
	sm := &serviceManager{
		repo:      repo,
		publisher: publisher,
		jwt:       jwt,
		logger:    logger,
		validator: v,
	}
	sm.authService = NewAuthService(repo, jwt, logger, v)
	sm.classService = NewClassService(repo, publisher, logger, v)
	sm.pollService = NewPollService(repo, publisher, logger, v)
	sm.quizService = NewQuizService(repo, publisher, logger, v)
	return sm
}

func (sm *serviceManager) Auth() AuthService   { return sm.authService }
func (sm *serviceManager) Class() ClassService { return sm.classService }
func (sm *serviceManager) Poll() PollService   { return sm.pollService }
func (sm *serviceManager) Quiz() QuizService   { return sm.quizService }
