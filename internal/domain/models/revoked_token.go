package models

import "time"

// RevokedToken is one invalidated access token, keyed by the SHA-256
// digest of the raw token. Rows are immutable once written and become
// purgeable after ExpiresAt, when signature-expiry checks would reject
// the token anyway.
type RevokedToken struct {
	ID        int64     `json:"id"`
	TokenHash string    `json:"tokenHash"`
	UserID    int64     `json:"userId"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revokedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Revocation reasons recorded on RevokedToken rows.
const (
	RevocationReasonLogout         = "logout"
	RevocationReasonPasswordChange = "password_change"
)
