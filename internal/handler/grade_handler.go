package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// GradeHandler serves the read-only grade views.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register wires the /grades routes.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/student/me/gradebook", h.gradebook)
	router.Get("/student/:studentId/course/:courseId", h.studentCourse)
	router.Get("/course/:courseId", middleware.WithAuth(h.course, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
}

func (h *GradeHandler) gradebook(c *fiber.Ctx) error {
	result, err := h.service.Gradebook(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "gradebook")
	}
	return utils.OK(c, result, "gradebook retrieved", nil)
}

func (h *GradeHandler) studentCourse(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.service.StudentCourse(c.UserContext(), actorFromContext(c), studentID, courseID)
	if err != nil {
		return writeError(c, h.logger, err, "grade lookup")
	}
	return utils.OK(c, result, "grades retrieved", nil)
}

func (h *GradeHandler) course(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.service.Course(c.UserContext(), actorFromContext(c), courseID)
	if err != nil {
		return writeError(c, h.logger, err, "course grades")
	}
	return utils.OK(c, result, "course grades retrieved", nil)
}
