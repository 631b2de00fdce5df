package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// CourseHandler serves the course catalogue and enrollment endpoints.
type CourseHandler struct {
	courses     service.CourseService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(courses service.CourseService, enrollments service.EnrollmentService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register wires course routes. Static segments are registered before the
// :id routes so they are not captured as ids.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/my/courses", h.myCourses)
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleTeacher}))
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/enroll", middleware.WithAuth(h.enroll, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Get("/:id/enrollment", h.myEnrollment)
	router.Get("/:id/enrollments", h.roster)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	var filter dto.CourseListFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", nil)
	}

	result, err := h.courses.List(c.UserContext(), actorFromContext(c), filter)
	if err != nil {
		return writeError(c, h.logger, err, "course listing")
	}
	return utils.OK(c, result, "courses retrieved", nil)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.courses.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "course creation")
	}
	return utils.Created(c, result, "course created")
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.courses.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "course lookup")
	}
	return utils.OK(c, result, "course retrieved", nil)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.courses.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "course update")
	}
	return utils.OK(c, result, "course updated", nil)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := h.courses.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "course deletion")
	}
	return utils.OK(c, nil, "course deleted", nil)
}

func (h *CourseHandler) myCourses(c *fiber.Ctx) error {
	result, err := h.courses.MyCourses(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "course listing")
	}
	return utils.OK(c, result, "courses retrieved", nil)
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.EnrollRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return bodyError(c)
		}
	}

	result, err := h.enrollments.Enroll(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "enrollment")
	}
	return utils.Created(c, result, "enrolled successfully")
}

func (h *CourseHandler) myEnrollment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.enrollments.MyEnrollment(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "enrollment lookup")
	}
	return utils.OK(c, result, "enrollment retrieved", nil)
}

func (h *CourseHandler) roster(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.enrollments.Roster(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "roster lookup")
	}
	return utils.OK(c, result, "enrollments retrieved", nil)
}
