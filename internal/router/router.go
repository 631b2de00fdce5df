package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-lms-api/internal/config"
	"github.com/noah-isme/gema-lms-api/internal/handler"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler           *handler.AuthHandler
	UserHandler           *handler.UserHandler
	CourseHandler         *handler.CourseHandler
	LessonHandler         *handler.LessonHandler
	AssignmentHandler     *handler.AssignmentHandler
	SubmissionHandler     *handler.SubmissionHandler
	GradeHandler          *handler.GradeHandler
	QuizHandler           *handler.QuizHandler
	UploadHandler         *handler.UploadHandler
	AdminAnalyticsHandler *handler.AdminAnalyticsHandler
	JWTMiddleware         fiber.Handler
	// ServeUploads exposes locally stored files under cfg.UploadPublicPrefix.
	ServeUploads bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())
	if deps.ServeUploads && cfg.UploadDir != "" {
		app.Static(cfg.UploadPublicPrefix, cfg.UploadDir)
	}

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Without a verifier every bearer route is closed.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication unavailable", nil)
		}
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.RegisterProfile(users)
		deps.UserHandler.RegisterAdmin(users.Group("", middleware.RequireRole(models.RoleAdmin)))
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
		if deps.LessonHandler != nil {
			deps.LessonHandler.RegisterCourseRoutes(courses)
		}
		if deps.QuizHandler != nil {
			deps.QuizHandler.RegisterCourseRoutes(courses)
		}
	}

	if deps.LessonHandler != nil {
		deps.LessonHandler.Register(api.Group("/lessons", jwtMiddleware))
	}

	// Assignments & submissions share one prefix
	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.Register(assignments)
		}
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(api.Group("/grades", jwtMiddleware))
	}

	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(api.Group("/quizzes", jwtMiddleware))
	}

	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/resources", jwtMiddleware))
	}

	if deps.AdminAnalyticsHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminAnalyticsHandler.Register(admin)
	}
}
