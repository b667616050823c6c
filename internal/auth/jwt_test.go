package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-reserve/backend/internal/models"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", 30)
	u := &models.User{ID: uuid.New(), Email: "ann@example.com", Role: models.RoleOrgAdmin}

	token, err := svc.Generate(u)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, models.RoleOrgAdmin, claims.Role)
	assert.Equal(t, 30*time.Minute, svc.TTL())
}

func TestJWT_Expired(t *testing.T) {
	svc := NewJWTService("secret", 1)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Generate(&models.User{ID: uuid.New()})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	token, err := NewJWTService("one", 10).Generate(&models.User{ID: uuid.New()})
	require.NoError(t, err)
	_, err = NewJWTService("two", 10).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTService_DefaultTTL(t *testing.T) {
	assert.Equal(t, time.Hour, NewJWTService("s", 0).TTL())
}
