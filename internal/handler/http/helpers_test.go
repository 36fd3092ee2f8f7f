package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/config"
	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
	"github.com/sonorousduck/foodtracker-backend/internal/service"
)

// In-memory repositories backing the handler tests.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return domainErrors.ErrEmailExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (m *memUserRepo) FindByRefreshTokenHash(_ context.Context, hash string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.RefreshTokenHash != nil && *u.RefreshTokenHash == hash {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (m *memUserRepo) UpdateRefreshToken(_ context.Context, userID int64, hash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	u.RefreshTokenHash = &hash
	u.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (m *memUserRepo) ClearRefreshToken(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	u.RefreshTokenHash = nil
	u.RefreshTokenExpiresAt = nil
	return nil
}

type memRevokedTokenRepo struct {
	mu   sync.Mutex
	rows map[string]*models.RevokedToken
}

func newMemRevokedTokenRepo() *memRevokedTokenRepo {
	return &memRevokedTokenRepo{rows: make(map[string]*models.RevokedToken)}
}

func (m *memRevokedTokenRepo) Create(_ context.Context, token *models.RevokedToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[token.TokenHash]; !ok {
		m.rows[token.TokenHash] = token
	}
	return nil
}

func (m *memRevokedTokenRepo) FindByHash(_ context.Context, tokenHash string) (*models.RevokedToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[tokenHash]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return row, nil
}

func (m *memRevokedTokenRepo) ListHashesExpiringBefore(_ context.Context, horizon time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hashes []string
	for hash, row := range m.rows {
		if row.ExpiresAt.Before(horizon) {
			hashes = append(hashes, hash)
		}
	}
	return hashes, nil
}

func (m *memRevokedTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for hash, row := range m.rows {
		if row.ExpiresAt.Before(now) {
			delete(m.rows, hash)
			deleted++
		}
	}
	return deleted, nil
}

type memAuthLogRepo struct {
	mu      sync.Mutex
	entries []*models.AuthLog
}

func newMemAuthLogRepo() *memAuthLogRepo { return &memAuthLogRepo{} }

func (m *memAuthLogRepo) Create(_ context.Context, entry *models.AuthLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAuthLogRepo) FindFailedLogins(_ context.Context, email string, since time.Time, limit int) ([]*models.AuthLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AuthLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if e.EventType == models.EventLoginFailure && e.Email != nil && *e.Email == email && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuthLogRepo) FindByUserID(_ context.Context, userID int64, limit int) ([]*models.AuthLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AuthLog
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.entries[i]
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memAuthLogRepo) CountByEventType(_ context.Context, since time.Time) (map[models.AuthEventType]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.AuthEventType]int64)
	for _, e := range m.entries {
		if !e.CreatedAt.Before(since) {
			counts[e.EventType]++
		}
	}
	return counts, nil
}

// testEnv wires a full router over in-memory repositories.
type testEnv struct {
	router *gin.Engine
	users  *memUserRepo
	logs   *memAuthLogRepo
	audit  *service.AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			Secret:          "0123456789abcdef0123456789abcdef",
			Issuer:          "foodtracker",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 720 * time.Hour,
		},
		CSRF: config.CSRFConfig{Secret: "fedcba9876543210fedcba9876543210"},
		Revocation: config.RevocationConfig{
			CacheStaleness: time.Minute,
			CacheHorizon:   24 * time.Hour,
			PurgeInterval:  24 * time.Hour,
		},
		CORS: config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}

	logger := zap.NewNop()
	users := newMemUserRepo()
	revoked := newMemRevokedTokenRepo()
	logs := newMemAuthLogRepo()

	tokens := service.NewTokenService(cfg.Auth)
	passwords := service.NewPasswordService()
	csrf := service.NewCSRFService(cfg.CSRF.Secret)
	revocation := service.NewRevocationService(revoked, logger, cfg.Revocation)
	audit := service.NewAuditService(logs, logger)
	auth := service.NewAuthService(users, tokens, passwords, csrf, revocation, audit, logger)

	authHandler := NewAuthHandler(auth, audit, tokens, logger)

	router := NewRouter(RouterDeps{
		Config:      cfg,
		Logger:      logger,
		AuthHandler: authHandler,
		Health:      NewHealthHandler(nil),
		Tokens:      tokens,
		CSRF:        csrf,
		Revocation:  revocation,
		Users:       users,
	})

	return &testEnv{router: router, users: users, logs: logs, audit: audit}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "cookie not set", "no cookie named %q in response", name)
	return nil
}
