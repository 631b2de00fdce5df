package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// SubmissionHandler serves student submissions, grading and comments. Its
// routes live under /assignments.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires submission routes onto the assignments router.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/my/submissions", middleware.WithAuth(h.listMine, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Post("/:id/submit", middleware.WithAuth(h.submit, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
	router.Put("/:id/grade", middleware.WithAuth(h.grade, middleware.AuthOptions{Role: middleware.AuthRoleStaff}))
	router.Post("/:id/comment", h.comment)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var (
		payload dto.SubmissionCreateRequest
		file    *multipart.FileHeader
	)
	if isMultipart(c) {
		payload.Content = c.FormValue("content")
		payload.FileURL = c.FormValue("file_url")
		files, err := multipartFiles(c, "file")
		if err != nil {
			return bodyError(c)
		}
		if len(files) > 0 {
			file = files[0]
		}
	} else if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.Submit(c.UserContext(), actorFromContext(c), assignmentID, payload, file)
	if err != nil {
		return writeError(c, h.logger, err, "submission")
	}
	return utils.Created(c, result, "submission received")
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.Grade(c.UserContext(), actorFromContext(c), assignmentID, payload)
	if err != nil {
		return writeError(c, h.logger, err, "grading")
	}
	return utils.OK(c, result, "submission graded", nil)
}

func (h *SubmissionHandler) comment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var payload dto.CommentRequest
	if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.service.AddComment(c.UserContext(), actorFromContext(c), assignmentID, payload)
	if err != nil {
		return writeError(c, h.logger, err, "comment")
	}
	return utils.Created(c, result, "comment added")
}

func (h *SubmissionHandler) listMine(c *fiber.Ctx) error {
	result, err := h.service.ListMine(c.UserContext(), actorFromContext(c))
	if err != nil {
		return writeError(c, h.logger, err, "submission listing")
	}
	return utils.OK(c, result, "submissions retrieved", nil)
}
