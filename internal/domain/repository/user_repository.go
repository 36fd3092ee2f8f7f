package repository

import (
	"context"
	"time"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
)

// UserRepository is the subject-lookup collaborator consumed by the
// auth core. FindByID backs the per-request subject re-resolution, so
// account deactivation takes effect without waiting for token expiry.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRefreshTokenHash(ctx context.Context, hash string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID int64, hash string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, userID int64) error
}
