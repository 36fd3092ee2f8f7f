package service

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/sonorousduck/foodtracker-backend/internal/domain/errors"
	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
)

// fakeRevokedTokenRepo is an in-memory RevokedTokenRepository. Error
// fields, when set, are returned by the corresponding method.
type fakeRevokedTokenRepo struct {
	mu   sync.Mutex
	rows map[string]*models.RevokedToken

	createErr error
	findErr   error
	listErr   error
	deleteErr error

	findCalls int
	listCalls int
}

func newFakeRevokedTokenRepo() *fakeRevokedTokenRepo {
	return &fakeRevokedTokenRepo{rows: make(map[string]*models.RevokedToken)}
}

func (f *fakeRevokedTokenRepo) Create(_ context.Context, token *models.RevokedToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rows[token.TokenHash]; ok {
		return nil
	}
	f.rows[token.TokenHash] = token
	return nil
}

func (f *fakeRevokedTokenRepo) FindByHash(_ context.Context, tokenHash string) (*models.RevokedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	row, ok := f.rows[tokenHash]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return row, nil
}

func (f *fakeRevokedTokenRepo) ListHashesExpiringBefore(_ context.Context, horizon time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var hashes []string
	for hash, row := range f.rows {
		if row.ExpiresAt.Before(horizon) {
			hashes = append(hashes, hash)
		}
	}
	return hashes, nil
}

func (f *fakeRevokedTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var deleted int64
	for hash, row := range f.rows {
		if row.ExpiresAt.Before(now) {
			delete(f.rows, hash)
			deleted++
		}
	}
	return deleted, nil
}

// fakeAuthLogRepo is an in-memory AuthLogRepository.
type fakeAuthLogRepo struct {
	mu        sync.Mutex
	entries   []*models.AuthLog
	createErr error
	panicOn   bool
}

func newFakeAuthLogRepo() *fakeAuthLogRepo {
	return &fakeAuthLogRepo{}
}

func (f *fakeAuthLogRepo) Create(_ context.Context, entry *models.AuthLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn {
		panic("audit sink exploded")
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuthLogRepo) all() []*models.AuthLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.AuthLog, len(f.entries))
	copy(out, f.entries)
	return out
}

func (f *fakeAuthLogRepo) FindFailedLogins(_ context.Context, email string, since time.Time, limit int) ([]*models.AuthLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AuthLog
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.entries[i]
		if e.EventType == models.EventLoginFailure && e.Email != nil && *e.Email == email && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuthLogRepo) FindByUserID(_ context.Context, userID int64, limit int) ([]*models.AuthLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AuthLog
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.entries[i]
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeAuthLogRepo) CountByEventType(_ context.Context, since time.Time) (map[models.AuthEventType]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.AuthEventType]int64)
	for _, e := range f.entries {
		if !e.CreatedAt.Before(since) {
			counts[e.EventType]++
		}
	}
	return counts, nil
}

// fakeUserRepo is an in-memory UserRepository keyed by ID and email.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User

	updateRefreshErr error
	clearRefreshErr  error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return domainErrors.ErrEmailExists
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (f *fakeUserRepo) FindByRefreshTokenHash(_ context.Context, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.RefreshTokenHash != nil && *user.RefreshTokenHash == hash {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateRefreshToken(_ context.Context, userID int64, hash string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateRefreshErr != nil {
		return f.updateRefreshErr
	}
	user, ok := f.users[userID]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	user.RefreshTokenHash = &hash
	user.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearRefreshErr != nil {
		return f.clearRefreshErr
	}
	user, ok := f.users[userID]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	user.RefreshTokenHash = nil
	user.RefreshTokenExpiresAt = nil
	return nil
}
