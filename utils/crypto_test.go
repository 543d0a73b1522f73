package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	// bcrypt 每次帶不同 salt，同一密碼的哈希不應相同
	hash1, err := HashPassword("secret123")
	assert.NoError(t, err)
	hash2, err := HashPassword("secret123")
	assert.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
	assert.True(t, CheckPasswordHash("secret123", hash1))
	assert.True(t, CheckPasswordHash("secret123", hash2))
}
