package repository

import (
	"context"
	"time"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
)

// RevokedTokenRepository is the durable revocation store. It is the
// source of truth; the in-memory cache in front of it is only a fast
// path.
type RevokedTokenRepository interface {
	// Create inserts a revocation row. Inserting an already-revoked
	// digest is a no-op, not an error.
	Create(ctx context.Context, token *models.RevokedToken) error

	// FindByHash returns domain errors.ErrNotFound when the digest has
	// not been revoked.
	FindByHash(ctx context.Context, tokenHash string) (*models.RevokedToken, error)

	// ListHashesExpiringBefore returns the digests of all rows whose
	// natural expiry falls before the given horizon.
	ListHashesExpiringBefore(ctx context.Context, horizon time.Time) ([]string, error)

	// DeleteExpired removes rows whose expiry has passed and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
