package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// UserHandler serves the caller's profile and the admin account endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// RegisterProfile wires the routes every authenticated user may call.
func (h *UserHandler) RegisterProfile(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Put("/profile", h.updateProfile)
	router.Put("/profile/password", h.changePassword)
}

// RegisterAdmin wires the account management routes. The caller must guard
// the router with an admin role check.
func (h *UserHandler) RegisterAdmin(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Put("/:id/admin", h.adminUpdate)
	router.Put("/:id/reset-password", h.resetPassword)
}

func (h *UserHandler) profile(c *fiber.Ctx) error {
	result, err := h.service.Profile(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "profile lookup")
	}
	return utils.OK(c, result, "profile retrieved", nil)
}

func (h *UserHandler) updateProfile(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.UpdateProfile(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return writeError(c, h.logger, err, "profile update")
	}
	return utils.OK(c, result, "profile updated", nil)
}

func (h *UserHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.PasswordChangeRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	if err := h.service.ChangePassword(c.UserContext(), actorFromContext(c), payload); err != nil {
		return writeError(c, h.logger, err, "password change")
	}
	return utils.OK(c, nil, "password updated", nil)
}

func (h *UserHandler) list(c *fiber.Ctx) error {
	var filter dto.UserListFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", nil)
	}

	users, meta, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.logger, err, "user listing")
	}
	return utils.OK(c, users, "users retrieved", meta)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err, "user lookup")
	}
	return utils.OK(c, result, "user retrieved", nil)
}

func (h *UserHandler) adminUpdate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.AdminUserUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.AdminUpdate(c.UserContext(), id, payload)
	if err != nil {
		return writeError(c, h.logger, err, "user update")
	}
	return utils.OK(c, result, "user updated", nil)
}

func (h *UserHandler) resetPassword(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.PasswordResetRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	if err := h.service.ResetPassword(c.UserContext(), id, payload); err != nil {
		return writeError(c, h.logger, err, "password reset")
	}
	return utils.OK(c, nil, "password reset", nil)
}
