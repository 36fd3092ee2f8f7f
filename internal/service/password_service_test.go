package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndCompare(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, svc.IsHashed(hash))

	assert.True(t, svc.Compare("correct horse battery staple", hash))
	assert.False(t, svc.Compare("wrong password", hash))
}

func TestIsHashed(t *testing.T) {
	svc := NewPasswordService()

	assert.True(t, svc.IsHashed("$2a$12$abcdefghijklmnopqrstuv"))
	assert.True(t, svc.IsHashed("$2b$12$abcdefghijklmnopqrstuv"))
	assert.False(t, svc.IsHashed("plaintext"))
	assert.False(t, svc.IsHashed(""))
}
