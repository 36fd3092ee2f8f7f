package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
)

const uniqueViolationCode = "23505"

// UserRepositoryPostgres implements repository.UserRepository for
// PostgreSQL.
type UserRepositoryPostgres struct {
	pool *pgxpool.Pool
}

// NewUserRepositoryPostgres creates a new instance.
func NewUserRepositoryPostgres(pool *pgxpool.Pool) *UserRepositoryPostgres {
	return &UserRepositoryPostgres{pool: pool}
}

// Create inserts a user row and fills in the generated ID and creation
// time. A duplicate email maps to domain errors.ErrEmailExists.
func (r *UserRepositoryPostgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domainErrors.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by primary key.
func (r *UserRepositoryPostgres) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByEmail retrieves a user by email.
func (r *UserRepositoryPostgres) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

// FindByRefreshTokenHash retrieves the user owning a refresh-token
// digest.
func (r *UserRepositoryPostgres) FindByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.findOne(ctx, `WHERE refresh_token_hash = $1`, hash)
}

// UpdateRefreshToken stores a new refresh-token digest and expiry on the
// user row.
func (r *UserRepositoryPostgres) UpdateRefreshToken(ctx context.Context, userID int64, hash string, expiresAt time.Time) error {
	query := `UPDATE users SET refresh_token_hash = $1, refresh_token_expires_at = $2 WHERE id = $3`
	tag, err := r.pool.Exec(ctx, query, hash, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// ClearRefreshToken drops the stored refresh-token digest.
func (r *UserRepositoryPostgres) ClearRefreshToken(ctx context.Context, userID int64) error {
	query := `UPDATE users SET refresh_token_hash = NULL, refresh_token_expires_at = NULL WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

func (r *UserRepositoryPostgres) findOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, is_active,
		       refresh_token_hash, refresh_token_expires_at, created_at
		FROM users ` + where

	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.IsActive, &user.RefreshTokenHash, &user.RefreshTokenExpiresAt, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

var _ repository.UserRepository = (*UserRepositoryPostgres)(nil)
