package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renta-rw/renta-backend/shared/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	user := &models.User{
		ID:    uuid.New(),
		Email: "owner@example.rw",
		Role:  models.RoleOwner,
	}

	token, exp, err := tm.Generate(user)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleOwner, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.Generate(&models.User{ID: uuid.New(), Role: models.RoleTenant})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, _, err := tm.Generate(&models.User{ID: uuid.New(), Role: models.RoleTenant})
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.Error(t, err)
}
