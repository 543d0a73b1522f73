package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	JWTSecret = []byte("test-secret")

	token, err := GenerateAdminToken(7, "admin")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, float64(7), claims["id"])
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, "admin", claims["role"])
	assert.NotNil(t, claims["exp"])
	assert.NotNil(t, claims["iat"])
}

func TestUserTokenRoundTrip(t *testing.T) {
	JWTSecret = []byte("test-secret")

	token, err := GenerateUserToken(12, "ABC-123")
	assert.NoError(t, err)

	claims, err := ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, float64(12), claims["id"])
	assert.Equal(t, "ABC-123", claims["vehicle_registration"])
	assert.Equal(t, "user", claims["role"])
}

func TestParseTokenRejectsTampering(t *testing.T) {
	JWTSecret = []byte("test-secret")
	token, err := GenerateAdminToken(1, "admin")
	assert.NoError(t, err)

	// 換密鑰後簽章驗證應失敗
	JWTSecret = []byte("another-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)

	JWTSecret = []byte("test-secret")
	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}
