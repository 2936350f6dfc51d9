package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/retail-pos/internal/config"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
)

func testUser() model.User {
	return model.User{
		ID:    uuid.New(),
		Email: "user@example.com",
		Role:  model.RoleStaff,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(config.Auth{
		JWTSecret:           "test-secret",
		AccessTokenDuration: time.Hour,
		Issuer:              "retail-pos-test",
	})
	user := testUser()

	token, err := manager.GenerateAccessToken(user)
	require.NoError(t, err)

	principal, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, user.Email, principal.Email)
	assert.Equal(t, user.Role, principal.Role)
}

func TestValidateAccessToken(t *testing.T) {
	cfg := config.Auth{
		JWTSecret:           "test-secret",
		AccessTokenDuration: time.Hour,
		Issuer:              "retail-pos-test",
	}
	manager := NewJWTManager(cfg)

	t.Run("Should reject token signed with another secret", func(t *testing.T) {
		otherCfg := cfg
		otherCfg.JWTSecret = "other-secret"
		token, err := NewJWTManager(otherCfg).GenerateAccessToken(testUser())
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject expired token", func(t *testing.T) {
		expiredCfg := cfg
		expiredCfg.AccessTokenDuration = -time.Hour
		token, err := NewJWTManager(expiredCfg).GenerateAccessToken(testUser())
		require.NoError(t, err)

		_, err = manager.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Should reject garbage", func(t *testing.T) {
		_, err := manager.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHasher(t *testing.T) {
	hasher := NewPasswordHasher()

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, hasher.Verify("password123", hash))
	assert.False(t, hasher.Verify("wrong-password", hash))
}
