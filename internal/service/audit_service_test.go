package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonorousduck/foodtracker-backend/internal/domain/models"
)

func TestLogEventWritesEntry(t *testing.T) {
	repo := newFakeAuthLogRepo()
	svc := NewAuditService(repo, zap.NewNop())

	userID := int64(42)
	email := "user@example.com"
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.5:51234"
	req.Header.Set("User-Agent", "foodtracker-app/1.0")

	svc.LogEvent(AuditEvent{
		EventType: models.EventLoginSuccess,
		UserID:    &userID,
		Email:     &email,
		Success:   true,
		Request:   req,
	})
	svc.Wait()

	entries := repo.all()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, models.EventLoginSuccess, entry.EventType)
	assert.True(t, entry.Success)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, int64(42), *entry.UserID)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "10.0.0.5", *entry.IPAddress)
	require.NotNil(t, entry.UserAgent)
	assert.Equal(t, "foodtracker-app/1.0", *entry.UserAgent)
}

func TestLogEventFailureNeverSurfaces(t *testing.T) {
	repo := newFakeAuthLogRepo()
	repo.createErr = errors.New("disk full")
	svc := NewAuditService(repo, zap.NewNop())

	// Must not panic and must not block the caller.
	svc.LogEvent(AuditEvent{EventType: models.EventLogout, Success: true})
	svc.Wait()

	assert.Empty(t, repo.all())
}

func TestLogEventPanicIsContained(t *testing.T) {
	repo := newFakeAuthLogRepo()
	repo.panicOn = true
	svc := NewAuditService(repo, zap.NewNop())

	svc.LogEvent(AuditEvent{EventType: models.EventLoginFailure, Success: false})
	svc.Wait()
}

func TestLogEventWithoutRequest(t *testing.T) {
	repo := newFakeAuthLogRepo()
	svc := NewAuditService(repo, zap.NewNop())

	svc.LogEvent(AuditEvent{EventType: models.EventPasswordChange, Success: true})
	svc.Wait()

	entries := repo.all()
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].IPAddress)
	assert.Nil(t, entries[0].UserAgent)
}

func TestExtractIPAddress(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"direct connection", "", "192.168.1.10:44321", "192.168.1.10"},
		{"single forwarded hop", "203.0.113.7", "10.0.0.1:80", "203.0.113.7"},
		{"multiple hops take first", "203.0.113.7, 10.0.0.2, 10.0.0.3", "10.0.0.1:80", "203.0.113.7"},
		{"forwarded with spaces", "  203.0.113.7 , 10.0.0.2", "10.0.0.1:80", "203.0.113.7"},
		{"remote addr without port", "", "192.168.1.10", "192.168.1.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ExtractIPAddress(req))
		})
	}
}

func TestStatsSince(t *testing.T) {
	repo := newFakeAuthLogRepo()
	svc := NewAuditService(repo, zap.NewNop())

	now := time.Now()
	for _, eventType := range []models.AuthEventType{
		models.EventLoginSuccess, models.EventLoginSuccess,
		models.EventLoginFailure,
		models.EventRegister,
		models.EventTokenRefresh,
		models.EventLogout,
	} {
		repo.entries = append(repo.entries, &models.AuthLog{EventType: eventType, CreatedAt: now})
	}

	stats, err := svc.StatsSince(context.Background(), now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalEvents)
	assert.Equal(t, int64(2), stats.LoginSuccess)
	assert.Equal(t, int64(1), stats.LoginFailure)
	assert.Equal(t, int64(1), stats.Registrations)
	assert.Equal(t, int64(1), stats.TokenRefreshSuccess)
	assert.Equal(t, int64(1), stats.Logouts)
}
