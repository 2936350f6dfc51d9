package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/auth"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/repository"
)

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

// AuthResult is a logged-in user together with their access token.
type AuthResult struct {
	User  model.User
	Token string
}

type AuthService interface {
	// Register creates a customer account. The role is always customer,
	// regardless of what the request carries.
	Register(ctx context.Context, params RegisterParams) (AuthResult, error)
	Login(ctx context.Context, params LoginParams) (AuthResult, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error)
}

type authService struct {
	logger     *slog.Logger
	userRepo   repository.UserRepository
	jwtManager *auth.JWTManager
	hasher     *auth.PasswordHasher
}

func NewAuthService(
	logger *slog.Logger,
	userRepo repository.UserRepository,
	jwtManager *auth.JWTManager,
	hasher *auth.PasswordHasher,
) AuthService {
	return &authService{
		logger:     logger.With(slog.String("service", "auth")),
		userRepo:   userRepo,
		jwtManager: jwtManager,
		hasher:     hasher,
	}
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (AuthResult, error) {
	if _, err := s.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return AuthResult{}, apperr.EmailTakenErr
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("user repository get user by email: %w", err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           id,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return AuthResult{}, fmt.Errorf("user repository create user: %w", err)
	}

	token, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))

	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, params LoginParams) (AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, apperr.InvalidCredentialsErr
		}
		return AuthResult{}, fmt.Errorf("user repository get user by email: %w", err)
	}

	if !s.hasher.Verify(params.Password, user.PasswordHash) {
		return AuthResult{}, apperr.InvalidCredentialsErr
	}
	if !user.IsActive {
		return AuthResult{}, apperr.AccountDisabledErr
	}

	now := time.Now()
	if err := s.userRepo.SetLastLogin(ctx, user.ID, now); err != nil {
		return AuthResult{}, fmt.Errorf("user repository set last login: %w", err)
	}
	user.LastLogin = &now

	token, err := s.jwtManager.GenerateAccessToken(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.UserNotFoundErr
		}
		return model.User{}, fmt.Errorf("user repository get user: %w", err)
	}

	return user, nil
}
