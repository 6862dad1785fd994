package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: "u-1", Email: "a@b.com", Nickname: "小王", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "bookworld", claims.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", refresh.UserID)
	assert.Empty(t, refresh.Role)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)

	pair, err := m.GenerateToken(Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.True(t, errors.Is(err, apperrors.ErrTokenExpired))
}

func TestManager_WrongSecret(t *testing.T) {
	pair, err := NewManager("a", time.Hour, time.Hour).GenerateToken(Identity{UserID: "u-1"})
	require.NoError(t, err)

	_, err = NewManager("b", time.Hour, time.Hour).ParseToken(pair.AccessToken)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestManager_RefreshPicksUpNewRole(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken(Identity{UserID: "u-1", Role: "user"})
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken, func(userID string) (Identity, error) {
		return Identity{UserID: userID, Role: "moderator"}, nil
	})
	require.NoError(t, err)

	claims, err := m.ParseToken(access)
	require.NoError(t, err)
	assert.Equal(t, "moderator", claims.Role)
}
