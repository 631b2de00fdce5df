package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := issuer.Issue(models.User{ID: 42, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	actor, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, Actor{ID: 42, Role: models.RoleTeacher}, actor)
}

func TestTokenIssuerRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	other := NewTokenIssuer("other-secret", time.Hour)

	foreign, _, err := other.Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = issuer.Verify(foreign)
	require.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := issuer.Issue(models.User{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.Verify(stale)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsUnknownRole(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	claims := AccessClaims{
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRequiresSecret(t *testing.T) {
	_, _, err := NewTokenIssuer("", time.Hour).Issue(models.User{ID: 1, Role: models.RoleStudent})
	require.Error(t, err)
}
