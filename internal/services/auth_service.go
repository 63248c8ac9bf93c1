package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/classpulse/engagement-service/internal/auth"
	"github.com/classpulse/engagement-service/internal/models"
	"github.com/classpulse/engagement-service/internal/repositories"
	"github.com/classpulse/engagement-service/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	jwt       *auth.JWTService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, jwt *auth.JWTService, logger *slog.Logger, v *validator.Validator) AuthService {
	return &authService{repo: repo, jwt: jwt, logger: logger, validator: v}
}

func (s *authService) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a bad password so the response does not leak
			// which emails exist.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return &AuthResponse{Token: token, User: user}, nil
}
