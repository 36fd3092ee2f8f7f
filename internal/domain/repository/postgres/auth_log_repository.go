package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
)

// AuthLogRepositoryPostgres implements repository.AuthLogRepository for
// PostgreSQL.
type AuthLogRepositoryPostgres struct {
	pool *pgxpool.Pool
}

// NewAuthLogRepositoryPostgres creates a new instance.
func NewAuthLogRepositoryPostgres(pool *pgxpool.Pool) *AuthLogRepositoryPostgres {
	return &AuthLogRepositoryPostgres{pool: pool}
}

// Create persists a new audit row. id and created_at are handled by the DB.
func (r *AuthLogRepositoryPostgres) Create(ctx context.Context, entry *models.AuthLog) error {
	query := `
		INSERT INTO auth_logs (user_id, email, event_type, success, ip_address, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.UserID, entry.Email, entry.EventType, entry.Success,
		entry.IPAddress, entry.UserAgent, entry.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth log: %w", err)
	}
	return nil
}

// FindFailedLogins returns failed login rows for an email, newest first.
func (r *AuthLogRepositoryPostgres) FindFailedLogins(ctx context.Context, email string, since time.Time, limit int) ([]*models.AuthLog, error) {
	query := `
		SELECT id, user_id, email, event_type, success, ip_address, user_agent, metadata, created_at
		FROM auth_logs
		WHERE email = $1 AND event_type = $2 AND success = false AND created_at > $3
		ORDER BY created_at DESC
		LIMIT $4
	`
	return r.queryLogs(ctx, query, email, models.EventLoginFailure, since, limit)
}

// FindByUserID returns a user's auth history, newest first.
func (r *AuthLogRepositoryPostgres) FindByUserID(ctx context.Context, userID int64, limit int) ([]*models.AuthLog, error) {
	query := `
		SELECT id, user_id, email, event_type, success, ip_address, user_agent, metadata, created_at
		FROM auth_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.queryLogs(ctx, query, userID, limit)
}

// CountByEventType aggregates event counts since the given time.
func (r *AuthLogRepositoryPostgres) CountByEventType(ctx context.Context, since time.Time) (map[models.AuthEventType]int64, error) {
	query := `
		SELECT event_type, COUNT(*)
		FROM auth_logs
		WHERE created_at > $1
		GROUP BY event_type
	`
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count auth logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.AuthEventType]int64)
	for rows.Next() {
		var eventType models.AuthEventType
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan auth log count: %w", err)
		}
		counts[eventType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth log counts: %w", err)
	}
	return counts, nil
}

func (r *AuthLogRepositoryPostgres) queryLogs(ctx context.Context, query string, args ...interface{}) ([]*models.AuthLog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuthLog
	for rows.Next() {
		entry := &models.AuthLog{}
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Email, &entry.EventType, &entry.Success,
			&entry.IPAddress, &entry.UserAgent, &entry.Metadata, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan auth log row: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auth log rows: %w", err)
	}
	return logs, nil
}

var _ repository.AuthLogRepository = (*AuthLogRepositoryPostgres)(nil)
