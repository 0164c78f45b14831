package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(secret, "abc123", "doctor", true)
	require.NoError(t, err)

	claims, err := ValidateJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
	assert.True(t, claims.Admin)
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT([]byte("secret-a"), "abc123", "patient", false)
	require.NoError(t, err)

	_, err = ValidateJWT([]byte("secret-b"), token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	_, err := ValidateJWT([]byte("test-secret"), "not-a-token")
	assert.Error(t, err)
}

func TestGenerateJWTRequiresSecret(t *testing.T) {
	_, err := GenerateJWT(nil, "abc123", "patient", false)
	assert.Error(t, err)
}
