package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/config"
	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/repository"
	"github.com/sonorousduck/foodtracker-backend/internal/utils/metrics"
)

// RevocationService tracks invalidated access tokens. The durable store
// is authoritative; a process-local digest set in front of it keeps the
// per-request check off the database in the common case. The cache is a
// subset of the store bounded by a forward expiry horizon, and a miss is
// never treated as proof of non-revocation.
type RevocationService struct {
	repo   repository.RevokedTokenRepository
	logger *zap.Logger

	staleness     time.Duration
	horizon       time.Duration
	purgeInterval time.Duration

	mu          sync.RWMutex
	digests     map[string]struct{}
	lastRefresh time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRevocationService creates a revocation service. Call Start to load
// the cache and begin the purge sweeper, and Stop on shutdown.
func NewRevocationService(repo repository.RevokedTokenRepository, logger *zap.Logger, cfg config.RevocationConfig) *RevocationService {
	return &RevocationService{
		repo:          repo,
		logger:        logger,
		staleness:     cfg.CacheStaleness,
		horizon:       cfg.CacheHorizon,
		purgeInterval: cfg.PurgeInterval,
		digests:       make(map[string]struct{}),
	}
}

// Start warms the cache and launches the periodic purge sweeper. A
// failed initial refresh is not fatal: the store remains authoritative
// on every cache miss.
func (s *RevocationService) Start(ctx context.Context) {
	if err := s.RefreshCache(ctx); err != nil {
		s.logger.Error("initial revocation cache refresh failed, starting cold", zap.Error(err))
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if _, err := s.PurgeExpired(runCtx); err != nil {
					s.logger.Error("scheduled revoked-token purge failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the purge sweeper.
func (s *RevocationService) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// Revoke records the token's digest durably and in the cache. Revoking
// an already-revoked token is a no-op, not an error.
func (s *RevocationService) Revoke(ctx context.Context, token string, userID int64, reason string, expiresAt time.Time) error {
	digest := HashToken(token)

	err := s.repo.Create(ctx, &models.RevokedToken{
		TokenHash: digest,
		UserID:    userID,
		Reason:    reason,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.logger.Error("failed to revoke token",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("token_hash", digest[:8]))
		return err
	}

	// The digest goes into the cache regardless of whether the store
	// write was an insert or a conflict no-op, so repeat checks stay on
	// the fast path.
	s.addDigest(digest)

	s.logger.Info("token revoked",
		zap.Int64("user_id", userID),
		zap.String("reason", reason),
		zap.String("token_hash", digest[:8]))
	return nil
}

// IsRevoked reports whether the token has been revoked. A cache hit is
// always a true positive; a miss falls through to the store. A store
// failure on that path propagates as an error and is never interpreted
// as "not revoked".
func (s *RevocationService) IsRevoked(ctx context.Context, token string) (bool, error) {
	digest := HashToken(token)

	s.mu.RLock()
	stale := time.Since(s.lastRefresh) > s.staleness
	s.mu.RUnlock()

	if stale {
		// A failed refresh keeps the previous cache: stale but safe,
		// since the store still backs every miss.
		if err := s.RefreshCache(ctx); err != nil {
			s.logger.Warn("revocation cache refresh failed, serving previous cache", zap.Error(err))
		}
	}

	s.mu.RLock()
	_, cached := s.digests[digest]
	s.mu.RUnlock()
	if cached {
		metrics.RevocationChecksTotal.WithLabelValues("cache_hit").Inc()
		return true, nil
	}

	_, err := s.repo.FindByHash(ctx, digest)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			metrics.RevocationChecksTotal.WithLabelValues("miss").Inc()
			return false, nil
		}
		metrics.RevocationChecksTotal.WithLabelValues("error").Inc()
		return false, err
	}

	// Self-heal: the digest was revoked after the last refresh (or by
	// another instance); cache it so the next check is cheap.
	s.addDigest(digest)
	metrics.RevocationChecksTotal.WithLabelValues("store_hit").Inc()
	return true, nil
}

// RefreshCache rebuilds the cache from the store, restricted to digests
// whose natural expiry falls within the forward horizon. The new set is
// published as a single reference swap; readers see either the old or
// the new cache, never a half-built one.
func (s *RevocationService) RefreshCache(ctx context.Context) error {
	now := time.Now()
	hashes, err := s.repo.ListHashesExpiringBefore(ctx, now.Add(s.horizon))
	if err != nil {
		metrics.RevocationCacheRefreshTotal.WithLabelValues("error").Inc()
		return err
	}

	fresh := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		fresh[h] = struct{}{}
	}

	s.mu.Lock()
	s.digests = fresh
	s.lastRefresh = now
	s.mu.Unlock()

	metrics.RevocationCacheRefreshTotal.WithLabelValues("ok").Inc()
	metrics.RevocationCacheSize.Set(float64(len(fresh)))
	s.logger.Debug("revocation cache refreshed", zap.Int("size", len(fresh)))
	return nil
}

// PurgeExpired deletes store rows whose natural expiry has passed (the
// signature check rejects those tokens anyway) and refreshes the cache
// so it only carries surviving digests.
func (s *RevocationService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	s.logger.Info("purged expired revoked tokens", zap.Int64("deleted", deleted))

	if err := s.RefreshCache(ctx); err != nil {
		s.logger.Error("cache refresh after purge failed", zap.Error(err))
	}
	return deleted, nil
}

func (s *RevocationService) addDigest(digest string) {
	s.mu.Lock()
	s.digests[digest] = struct{}{}
	s.mu.Unlock()
}
