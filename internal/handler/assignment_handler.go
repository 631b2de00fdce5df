package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// AssignmentHandler exposes assignment management endpoints.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs an AssignmentHandler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register wires assignment routes.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/course/:courseId", h.listByCourse)
	router.Get("/course/:courseId/overview", middleware.WithAuth(h.overview, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "assignment creation")
	}
	return utils.Created(c, result, "assignment created")
}

func (h *AssignmentHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.service.ListByCourse(c.UserContext(), actorFromContext(c), courseID)
	if err != nil {
		return writeError(c, h.logger, err, "assignment listing")
	}
	return utils.OK(c, result, "assignments retrieved", nil)
}

func (h *AssignmentHandler) overview(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.service.Overview(c.UserContext(), actorFromContext(c), courseID)
	if err != nil {
		return writeError(c, h.logger, err, "assignment overview")
	}
	return utils.OK(c, result, "assignment overview retrieved", nil)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.service.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "assignment lookup")
	}
	return utils.OK(c, result, "assignment retrieved", nil)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "assignment update")
	}
	return utils.OK(c, result, "assignment updated", nil)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "assignment deletion")
	}
	return utils.OK(c, nil, "assignment deleted", nil)
}
