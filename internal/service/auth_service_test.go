package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

func newTestAuthService(env *testEnv) *authService {
	svc := NewAuthService(env.users, NewTokenIssuer("test-secret", time.Hour), env.validate, testLogger()).(*authService)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(env)
	ctx := context.Background()

	registered, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Siti",
		Email:    "  Siti@Example.com ",
		Password: "secret123",
		Role:     "Student",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, "siti@example.com", registered.User.Email)
	require.Equal(t, models.RoleStudent, registered.User.Role)

	stored, err := env.users.GetByEmail(ctx, "siti@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.PasswordHash)

	loggedIn, err := svc.Login(ctx, dto.LoginRequest{Email: "SITI@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, loggedIn.User.ID)

	claims := &AccessClaims{}
	_, err = jwt.ParseWithClaims(loggedIn.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.Equal(t, strconv.FormatUint(uint64(stored.ID), 10), claims.Subject)
	require.Equal(t, models.RoleStudent, claims.Role)
	require.WithinDuration(t, loggedIn.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestAuthServiceRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(env)
	ctx := context.Background()

	payload := dto.RegisterRequest{Name: "Budi", Email: "budi@example.com", Password: "secret123", Role: models.RoleTeacher}
	_, err := svc.Register(ctx, payload)
	require.NoError(t, err)

	payload.Email = "BUDI@example.com"
	_, err = svc.Register(ctx, payload)
	require.ErrorIs(t, err, ErrEmailTaken)

	_, total, err := env.users.List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestAuthServiceRegisterRejectsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(env)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "secret123", Role: models.RoleAdmin})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestAuthServiceLoginFailuresLookAlike(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestAuthService(env)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Name: "Ani", Email: "ani@example.com", Password: "secret123", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ani@example.com", Password: "wrong-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
