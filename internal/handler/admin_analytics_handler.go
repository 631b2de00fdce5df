package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// AdminAnalyticsHandler exposes analytics endpoints for administrators.
type AdminAnalyticsHandler struct {
	service service.AdminAnalyticsService
	logger  zerolog.Logger
}

// NewAdminAnalyticsHandler constructs the handler.
func NewAdminAnalyticsHandler(service service.AdminAnalyticsService, logger zerolog.Logger) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_analytics_handler").Logger(),
	}
}

// Register attaches analytics routes to an admin-only router group.
func (h *AdminAnalyticsHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/analytics/courses", h.courses)
}

func (h *AdminAnalyticsHandler) stats(c *fiber.Ctx) error {
	summary, err := h.service.Stats(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err, "analytics")
	}

	return utils.OK(c, summary, "platform statistics", nil)
}

func (h *AdminAnalyticsHandler) courses(c *fiber.Ctx) error {
	report, err := h.service.CourseAnalytics(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err, "course analytics")
	}

	return utils.OK(c, report, "course analytics", nil)
}
