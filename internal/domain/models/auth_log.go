package models

import "time"

// AuthEventType classifies authentication-relevant occurrences.
type AuthEventType string

const (
	EventLoginSuccess        AuthEventType = "LOGIN_SUCCESS"
	EventLoginFailure        AuthEventType = "LOGIN_FAILURE"
	EventRegister            AuthEventType = "REGISTER"
	EventLogout              AuthEventType = "LOGOUT"
	EventTokenRefresh        AuthEventType = "TOKEN_REFRESH"
	EventTokenRefreshFailure AuthEventType = "TOKEN_REFRESH_FAILURE"
	EventPasswordChange      AuthEventType = "PASSWORD_CHANGE"
	EventEmailVerified       AuthEventType = "EMAIL_VERIFIED"
)

// AuthLogMetadata is the closed set of extension fields attached to an
// audit row, plus one opaque bag for anything else. Serialized to JSONB.
type AuthLogMetadata struct {
	Reason      string `json:"reason,omitempty"`
	TokenSource string `json:"tokenSource,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	Extra       string `json:"extra,omitempty"`
}

// AuthLog is one immutable audit row. Rows are created once, never
// updated or deleted by this service.
type AuthLog struct {
	ID        int64            `json:"id"`
	UserID    *int64           `json:"userId,omitempty"`
	Email     *string          `json:"email,omitempty"`
	EventType AuthEventType    `json:"eventType"`
	Success   bool             `json:"success"`
	IPAddress *string          `json:"ipAddress,omitempty"`
	UserAgent *string          `json:"userAgent,omitempty"`
	Metadata  *AuthLogMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AuthStats aggregates event counts since a point in time.
type AuthStats struct {
	TotalEvents         int64 `json:"totalEvents"`
	LoginSuccess        int64 `json:"loginSuccess"`
	LoginFailure        int64 `json:"loginFailure"`
	Registrations       int64 `json:"registrations"`
	TokenRefreshSuccess int64 `json:"tokenRefreshSuccess"`
	TokenRefreshFailure int64 `json:"tokenRefreshFailure"`
	Logouts             int64 `json:"logouts"`
}
