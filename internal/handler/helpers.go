package handler

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	actor, _ := middleware.ActorFromLocals(c)
	return actor
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := strings.TrimSpace(c.Params(name))
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := middleware.RequestLogger(base, c)
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationDetails(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, FieldError{Field: fieldErr.Field(), Rule: fieldErr.Tag()})
	}
	return details
}

func statusForError(err error) int {
	switch {
	case isValidationError(err),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrDueDateRequired),
		errors.Is(err, service.ErrMaxGradeBelowGrades),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrEmptySubmission),
		errors.Is(err, service.ErrGradeOutOfRange),
		errors.Is(err, service.ErrAttemptsExhausted),
		errors.Is(err, service.ErrInvalidQuizAnswers),
		errors.Is(err, service.ErrUploadRequired),
		errors.Is(err, service.ErrUploadTypeNotAllowed),
		errors.Is(err, service.ErrUploadScanFailed):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrInvalidEnrollmentKey):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrQuizNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrAssignmentHasSubmissions),
		errors.Is(err, service.ErrQuizHasResults),
		errors.Is(err, service.ErrAttemptConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUploadTooLarge):
		return fiber.StatusRequestEntityTooLarge
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError translates a service error into the response envelope. Unknown
// errors are logged and reported as a generic 500.
func writeError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	status := statusForError(err)
	switch {
	case status == fiber.StatusInternalServerError:
		requestLogger(logger, c).Error().Err(err).Str("action", action).Msg("request failed")
		return utils.Fail(c, status, action+" failed", nil)
	case isValidationError(err):
		return utils.Fail(c, status, "validation failed", validationDetails(err))
	default:
		return utils.Fail(c, status, err.Error(), nil)
	}
}

func bodyError(c *fiber.Ctx) error {
	return utils.Fail(c, fiber.StatusBadRequest, "invalid request body", nil)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// multipartFiles returns the files sent under key, or nil when the request is
// not multipart.
func multipartFiles(c *fiber.Ctx, key string) ([]*multipart.FileHeader, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form.File[key], nil
}

func formBool(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
