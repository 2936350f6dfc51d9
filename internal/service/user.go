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

type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

type UpdateUserParams struct {
	Name     *string
	Email    *string
	Role     *model.Role
	IsActive *bool
}

type ListUsersParams struct {
	Role     *model.Role
	IsActive *bool
}

// UserStats mirrors repository.UserCounts for the admin dashboard.
type UserStats struct {
	Total     int64
	Admins    int64
	Staff     int64
	Customers int64
	Active    int64
	Inactive  int64
}

// UserService covers the admin user-management surface. The acting
// admin's id is passed in so the self-management guards can apply.
type UserService interface {
	// CreateUser provisions a staff or admin account. Customer accounts
	// come from Register only.
	CreateUser(ctx context.Context, params CreateUserParams) (model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListUsers(ctx context.Context, params ListUsersParams) ([]model.User, error)
	UpdateUser(ctx context.Context, actorID, id uuid.UUID, params UpdateUserParams) (model.User, error)
	ToggleUserStatus(ctx context.Context, actorID, id uuid.UUID) (model.User, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
	Stats(ctx context.Context) (UserStats, error)
}

type userService struct {
	logger   *slog.Logger
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
}

func NewUserService(
	logger *slog.Logger,
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
) UserService {
	return &userService{
		logger:   logger.With(slog.String("service", "user")),
		userRepo: userRepo,
		hasher:   hasher,
	}
}

func (s *userService) CreateUser(ctx context.Context, params CreateUserParams) (model.User, error) {
	if params.Role != model.RoleStaff && params.Role != model.RoleAdmin {
		return model.User{}, apperr.InvalidStaffRoleErr
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, params.Email); err == nil {
		return model.User{}, apperr.EmailTakenErr
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, fmt.Errorf("user repository get user by email: %w", err)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           id,
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         params.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("user repository create user: %w", err)
	}

	s.logger.InfoContext(ctx, "staff user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, apperr.UserNotFoundErr
		}
		return model.User{}, fmt.Errorf("user repository get user: %w", err)
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, params ListUsersParams) ([]model.User, error) {
	users, err := s.userRepo.ListUsers(ctx, repository.ListUsersParams{
		Role:     params.Role,
		IsActive: params.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("user repository list users: %w", err)
	}

	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, id uuid.UUID, params UpdateUserParams) (model.User, error) {
	if actorID == id {
		return model.User{}, apperr.SelfEditErr
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if params.Role != nil {
		if err := params.Role.Validate(); err != nil {
			return model.User{}, apperr.ValidationErr.WrapParent(err)
		}
		// Customer accounts never get promoted through this endpoint.
		if user.Role == model.RoleCustomer && *params.Role != model.RoleCustomer {
			return model.User{}, apperr.RoleChangeForbiddenErr
		}
		user.Role = *params.Role
	}
	if params.Email != nil && *params.Email != user.Email {
		if _, err := s.userRepo.GetUserByEmail(ctx, *params.Email); err == nil {
			return model.User{}, apperr.EmailTakenErr
		} else if !errors.Is(err, repository.ErrNotFound) {
			return model.User{}, fmt.Errorf("user repository get user by email: %w", err)
		}
		user.Email = *params.Email
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("user repository update user: %w", err)
	}

	return user, nil
}

func (s *userService) ToggleUserStatus(ctx context.Context, actorID, id uuid.UUID) (model.User, error) {
	if actorID == id {
		return model.User{}, apperr.SelfDisableErr
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	user.IsActive = !user.IsActive
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("user repository update user: %w", err)
	}

	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperr.SelfDeleteErr
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == model.RoleAdmin {
		return apperr.AdminDeleteForbiddenErr
	}

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.UserNotFoundErr
		}
		return fmt.Errorf("user repository delete user: %w", err)
	}

	return nil
}

func (s *userService) Stats(ctx context.Context) (UserStats, error) {
	counts, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return UserStats{}, fmt.Errorf("user repository count users: %w", err)
	}

	return UserStats{
		Total:     counts.Total,
		Admins:    counts.Admins,
		Staff:     counts.Staff,
		Customers: counts.Customers,
		Active:    counts.Active,
		Inactive:  counts.Inactive,
	}, nil
}
