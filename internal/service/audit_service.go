package service

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
	"github.com/sonorousduck/foodtracker-backend/internal/utils/metrics"
)

const auditWriteTimeout = 5 * time.Second

// AuditEvent describes one authentication-relevant occurrence to be
// appended to the audit trail.
type AuditEvent struct {
	EventType models.AuthEventType
	UserID    *int64
	Email     *string
	Success   bool
	Request   *http.Request
	Metadata  *models.AuthLogMetadata
}

// AuditService appends authentication events to the durable audit
// trail. Writes are fire-and-forget: a failed or panicking write is
// logged and counted but never surfaces to the operation being audited.
type AuditService struct {
	repo   repository.AuthLogRepository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewAuditService creates an audit service over the given repository.
func NewAuditService(repo repository.AuthLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// LogEvent records an event asynchronously. It never returns an error
// and never blocks on the store; the write happens on a detached
// context so request cancellation cannot lose the row.
func (s *AuditService) LogEvent(event AuditEvent) {
	entry := &models.AuthLog{
		UserID:    event.UserID,
		Email:     event.Email,
		EventType: event.EventType,
		Success:   event.Success,
		Metadata:  event.Metadata,
	}
	if event.Request != nil {
		if ip := ExtractIPAddress(event.Request); ip != "" {
			entry.IPAddress = &ip
		}
		if ua := event.Request.UserAgent(); ua != "" {
			entry.UserAgent = &ua
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.AuditWriteFailuresTotal.Inc()
				s.logger.Error("panic while writing audit log", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()

		if err := s.repo.Create(ctx, entry); err != nil {
			metrics.AuditWriteFailuresTotal.Inc()
			s.logger.Error("failed to write audit log",
				zap.Error(err),
				zap.String("event_type", string(entry.EventType)))
			return
		}
		s.logger.Debug("auth event logged",
			zap.String("event_type", string(entry.EventType)),
			zap.Bool("success", entry.Success))
	}()
}

// Wait blocks until all in-flight audit writes have finished. Used on
// shutdown and in tests.
func (s *AuditService) Wait() {
	s.wg.Wait()
}

// StatsSince aggregates event counts since the given time.
func (s *AuditService) StatsSince(ctx context.Context, since time.Time) (*models.AuthStats, error) {
	counts, err := s.repo.CountByEventType(ctx, since)
	if err != nil {
		return nil, err
	}

	stats := &models.AuthStats{}
	for eventType, count := range counts {
		stats.TotalEvents += count
		switch eventType {
		case models.EventLoginSuccess:
			stats.LoginSuccess = count
		case models.EventLoginFailure:
			stats.LoginFailure = count
		case models.EventRegister:
			stats.Registrations = count
		case models.EventTokenRefresh:
			stats.TokenRefreshSuccess = count
		case models.EventTokenRefreshFailure:
			stats.TokenRefreshFailure = count
		case models.EventLogout:
			stats.Logouts = count
		}
	}
	return stats, nil
}

// RecentFailedLogins returns recent failed login attempts for an email,
// newest first.
func (s *AuditService) RecentFailedLogins(ctx context.Context, email string, since time.Time, limit int) ([]*models.AuthLog, error) {
	return s.repo.FindFailedLogins(ctx, email, since, limit)
}

// UserHistory returns a user's authentication history, newest first.
func (s *AuditService) UserHistory(ctx context.Context, userID int64, limit int) ([]*models.AuthLog, error) {
	return s.repo.FindByUserID(ctx, userID, limit)
}

// ExtractIPAddress returns the client IP, preferring the first hop of
// X-Forwarded-For over the transport-level peer address.
func ExtractIPAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
