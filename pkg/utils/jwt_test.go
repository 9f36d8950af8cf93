package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("test-secret", "42", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "brandpanel", claims.Issuer)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", "42", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("test-secret", "42", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("test-secret", token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("test-secret", "not.a.token")
	assert.Error(t, err)
}
