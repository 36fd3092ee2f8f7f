package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
)

// RevokedTokenRepositoryPostgres implements repository.RevokedTokenRepository
// for PostgreSQL.
type RevokedTokenRepositoryPostgres struct {
	pool *pgxpool.Pool
}

// NewRevokedTokenRepositoryPostgres creates a new instance.
func NewRevokedTokenRepositoryPostgres(pool *pgxpool.Pool) *RevokedTokenRepositoryPostgres {
	return &RevokedTokenRepositoryPostgres{pool: pool}
}

// Create persists a revocation row. The unique constraint on token_hash
// plus ON CONFLICT DO NOTHING makes a second revocation of the same
// digest a no-op.
func (r *RevokedTokenRepositoryPostgres) Create(ctx context.Context, token *models.RevokedToken) error {
	query := `
		INSERT INTO revoked_tokens (token_hash, user_id, reason, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token_hash) DO NOTHING
	`
	revokedAt := token.RevokedAt
	if revokedAt.IsZero() {
		revokedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, query,
		token.TokenHash, token.UserID, token.Reason, revokedAt, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create revoked token: %w", err)
	}
	return nil
}

// FindByHash looks up a revocation row by digest.
func (r *RevokedTokenRepositoryPostgres) FindByHash(ctx context.Context, tokenHash string) (*models.RevokedToken, error) {
	query := `
		SELECT id, token_hash, user_id, reason, revoked_at, expires_at
		FROM revoked_tokens
		WHERE token_hash = $1
	`
	token := &models.RevokedToken{}
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID, &token.TokenHash, &token.UserID, &token.Reason,
		&token.RevokedAt, &token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find revoked token by hash: %w", err)
	}
	return token, nil
}

// ListHashesExpiringBefore returns the digests of all rows whose natural
// expiry falls before the horizon. This is the cache-rebuild query; rows
// expiring past the horizon are left out to bound the cache size.
func (r *RevokedTokenRepositoryPostgres) ListHashesExpiringBefore(ctx context.Context, horizon time.Time) ([]string, error) {
	query := `SELECT token_hash FROM revoked_tokens WHERE expires_at < $1`

	rows, err := r.pool.Query(ctx, query, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to list revoked token hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("failed to scan revoked token hash: %w", err)
		}
		hashes = append(hashes, hash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revoked token rows: %w", err)
	}
	return hashes, nil
}

// DeleteExpired removes rows whose expiry has passed.
func (r *RevokedTokenRepositoryPostgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revoked tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.RevokedTokenRepository = (*RevokedTokenRepositoryPostgres)(nil)
