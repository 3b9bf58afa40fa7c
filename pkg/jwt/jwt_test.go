package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("42", "jdoe", "staff")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "staff", claims.Role)
	assert.Equal(t, "access", claims.Type)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateRefreshToken("42")
	assert.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("42", "jdoe", "staff")
	assert.NoError(t, err)

	_, err = m.ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecretFails(t *testing.T) {
	m := NewManager("secret-a", time.Hour)
	token, err := m.GenerateAccessToken("1", "a", "staff")
	assert.NoError(t, err)

	other := NewManager("secret-b", time.Hour)
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_ExpiredTokenFails(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.GenerateAccessToken("1", "a", "staff")
	assert.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}
