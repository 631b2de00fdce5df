package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// UploadHandler handles generic file uploads.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes under /resources.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/upload", h.upload)
	router.Get("/uploads", h.listMine)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, service.ErrUploadRequired.Error(), nil)
	}

	var userID *uint
	if actor := actorFromContext(c); actor.ID > 0 {
		userID = &actor.ID
	}

	result, err := h.service.Upload(c.UserContext(), file, userID)
	if err != nil {
		return writeError(c, h.logger, err, "upload")
	}

	return utils.Created(c, result, "upload successful")
}

func (h *UploadHandler) listMine(c *fiber.Ctx) error {
	result, err := h.service.ListMine(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "upload listing")
	}
	return utils.OK(c, result, "uploads retrieved", nil)
}
