package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// CSRFService implements the double-submit cookie defense: a random
// token is handed to the client in a readable cookie and must be echoed
// back in the X-CSRF-Token header. Validity is purely "the two channels
// agree"; nothing is stored server-side.
type CSRFService struct {
	secret []byte
}

// NewCSRFService creates a CSRF service keyed by the server secret.
func NewCSRFService(secret string) *CSRFService {
	return &CSRFService{secret: []byte(secret)}
}

// GenerateToken returns a cryptographically random token, opaque to
// callers.
func (s *CSRFService) GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidateToken reports whether the cookie-carried token and the
// header-echoed token agree. Both must be present; the comparison is
// constant-time so a mismatch position cannot be measured. The
// equal-length requirement is checked first.
func (s *CSRFService) ValidateToken(cookieToken, headerToken string) bool {
	if cookieToken == "" || headerToken == "" {
		return false
	}
	if len(cookieToken) != len(headerToken) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) == 1
}

// HashToken returns the HMAC-SHA256 digest of a token under the server
// secret, for validation paths that compare against a stored digest
// rather than the raw value.
func (s *CSRFService) HashToken(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
