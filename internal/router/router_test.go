package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/config"
	"github.com/noah-isme/gema-lms-api/internal/handler"
	"github.com/noah-isme/gema-lms-api/internal/router"
)

func TestRegisterClosesBearerRoutesWithoutJWT(t *testing.T) {
	app := fiber.New()
	router.Register(app, config.Config{AppName: "lms-test"}, router.Dependencies{
		UserHandler:  handler.NewUserHandler(nil, zerolog.Nop()),
		GradeHandler: handler.NewGradeHandler(nil, zerolog.Nop()),
	})

	for _, path := range []string{
		"/api/v1/users/profile",
		"/api/v1/users",
		"/api/v1/grades/student/me/gradebook",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "lms-test", resp.Header.Get("X-Application"))
}
