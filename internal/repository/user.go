package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/retail-pos/internal/model"
	"github.com/tuanvumaihuynh/retail-pos/internal/storage/db"
)

type ListUsersParams struct {
	Role     *model.Role
	IsActive *bool
}

// UserCounts aggregates account counts for the admin dashboard.
type UserCounts struct {
	Total     int64
	Admins    int64
	Staff     int64
	Customers int64
	Active    int64
	Inactive  int64
}

type UserRepository interface {
	WithDB(db db.DB) UserRepository
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	ListUsers(ctx context.Context, params ListUsersParams) ([]model.User, error)
	UpdateUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	CountUsers(ctx context.Context) (UserCounts, error)
}

type userRepository struct {
	db db.DB
}

func NewUserRepository(db db.DB) UserRepository {
	return &userRepository{db: db}
}

func (r userRepository) WithDB(db db.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, name, email, password_hash, role, is_active, last_login, created_at, updated_at`

func (r userRepository) CreateUser(ctx context.Context, user model.User) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (@id, @name, @email, @password_hash, @role, @is_active, @last_login, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"is_active":     user.IsActive,
		"last_login":    user.LastLogin,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r userRepository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = @id
	`, pgx.NamedArgs{"id": id})

	return scanUserRow(row, "get user")
}

func (r userRepository) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = @email
	`, pgx.NamedArgs{"email": email})

	return scanUserRow(row, "get user by email")
}

func (r userRepository) ListUsers(ctx context.Context, params ListUsersParams) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := pgx.NamedArgs{}

	if params.Role != nil {
		query += ` AND role = @role`
		args["role"] = string(*params.Role)
	}
	if params.IsActive != nil {
		query += ` AND is_active = @is_active`
		args["is_active"] = *params.IsActive
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r userRepository) UpdateUser(ctx context.Context, user model.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = @name,
			email = @email,
			password_hash = @password_hash,
			role = @role,
			is_active = @is_active,
			updated_at = @updated_at
		WHERE id = @id
	`, pgx.NamedArgs{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"is_active":     user.IsActive,
		"updated_at":    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r userRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r userRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.Exec(ctx, `
		UPDATE users SET last_login = @at, updated_at = NOW() WHERE id = @id
	`, pgx.NamedArgs{"id": id, "at": at}); err != nil {
		return fmt.Errorf("set last login: %w", err)
	}

	return nil
}

func (r userRepository) CountUsers(ctx context.Context) (UserCounts, error) {
	var counts UserCounts
	if err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE role = 'admin'),
			COUNT(*) FILTER (WHERE role = 'staff'),
			COUNT(*) FILTER (WHERE role = 'customer'),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active)
		FROM users
	`).Scan(
		&counts.Total,
		&counts.Admins,
		&counts.Staff,
		&counts.Customers,
		&counts.Active,
		&counts.Inactive,
	); err != nil {
		return UserCounts{}, fmt.Errorf("count users: %w", err)
	}

	return counts, nil
}

func scanUserRow(row pgx.Row, op string) (model.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return model.User{}, err
	}

	user.Role = model.Role(role)
	return user, nil
}
