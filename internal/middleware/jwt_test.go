package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/service"
)

func protectedApp(issuer *service.TokenIssuer) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.JWTProtected(issuer), func(c *fiber.Ctx) error {
		actor, ok := middleware.ActorFromLocals(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"id": actor.ID, "role": actor.Role})
	})
	return app
}

func TestJWTProtectedTrustsTokenRole(t *testing.T) {
	issuer := service.NewTokenIssuer("secret", time.Hour)
	// The role in the token wins even if the stored account changed since.
	token, _, err := issuer.Issue(models.User{ID: 12, Role: models.RoleTeacher})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := protectedApp(issuer).Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	decodeBody(t, resp, &body)
	require.Equal(t, uint(12), body.ID)
	require.Equal(t, models.RoleTeacher, body.Role)
}

func TestJWTProtectedRejectsBadHeaders(t *testing.T) {
	issuer := service.NewTokenIssuer("secret", time.Hour)
	foreign, _, err := service.NewTokenIssuer("other", time.Hour).Issue(models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	headers := []string{"", "Token abc", "Bearer ", "Bearer " + foreign}
	for _, header := range headers {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := protectedApp(issuer).Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
}
