package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// PasswordService hashes and verifies credentials with bcrypt. It is
// the externally-supplied "password matches" capability the auth core
// consumes.
type PasswordService struct{}

// NewPasswordService creates a password service.
func NewPasswordService() *PasswordService {
	return &PasswordService{}
}

// Hash derives a bcrypt hash from a plaintext password.
func (s *PasswordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether the plaintext matches the stored hash.
func (s *PasswordService) Compare(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// IsHashed reports whether a value already looks like a bcrypt hash.
func (s *PasswordService) IsHashed(password string) bool {
	return strings.HasPrefix(password, "$2a$") ||
		strings.HasPrefix(password, "$2b$") ||
		strings.HasPrefix(password, "$2y$")
}
