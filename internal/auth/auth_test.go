package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/rststore/storefront/pkg/errors"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate("user-001", "jane@example.com", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "user-001", claims.Subject)
}

func TestJWTManager_Validate_WrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", time.Hour)
	other := NewJWTManager("secret-b", time.Hour)

	token, err := m.Generate("user-001", "jane@example.com", false)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_Validate_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute)

	token, err := m.Generate("user-001", "jane@example.com", false)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestJWTManager_Validate_Garbage(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	_, err := m.Validate("not.a.token")
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	assert.NoError(t, RequireAdmin(Identity{UserID: "u1", IsAdmin: true}))

	err := RequireAdmin(Identity{UserID: "u1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	assert.NoError(t, RequireSelfOrAdmin(Identity{UserID: "u1"}, "u1"))
	assert.NoError(t, RequireSelfOrAdmin(Identity{UserID: "u2", IsAdmin: true}, "u1"))

	err := RequireSelfOrAdmin(Identity{UserID: "u2"}, "u1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
