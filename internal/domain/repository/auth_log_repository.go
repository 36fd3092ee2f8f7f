package repository

import (
	"context"
	"time"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
)

// AuthLogRepository persists the append-only audit trail.
type AuthLogRepository interface {
	Create(ctx context.Context, entry *models.AuthLog) error

	// FindFailedLogins returns failed login rows for an email since the
	// given time, newest first, capped at limit.
	FindFailedLogins(ctx context.Context, email string, since time.Time, limit int) ([]*models.AuthLog, error)

	// FindByUserID returns a user's auth history, newest first.
	FindByUserID(ctx context.Context, userID int64, limit int) ([]*models.AuthLog, error)

	// CountByEventType aggregates event counts since the given time.
	CountByEventType(ctx context.Context, since time.Time) (map[models.AuthEventType]int64, error)
}
