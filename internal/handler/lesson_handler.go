package handler

import (
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/internal/utils"
)

// LessonHandler serves lesson authoring, listing and completion toggling.
type LessonHandler struct {
	lessons     service.LessonService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewLessonHandler constructs a lesson handler.
func NewLessonHandler(lessons service.LessonService, enrollments service.EnrollmentService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		lessons:     lessons,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// Register wires the /lessons routes.
func (h *LessonHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/complete", h.toggleCompletion)
}

// RegisterCourseRoutes wires lesson listing under a /courses router.
func (h *LessonHandler) RegisterCourseRoutes(router fiber.Router) {
	router.Get("/:id/lessons", h.listByCourse)
}

func (h *LessonHandler) create(c *fiber.Ctx) error {
	var (
		payload dto.LessonCreateRequest
		files   []*multipart.FileHeader
	)

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return bodyError(c)
		}
		if payload, err = lessonCreateFromForm(form); err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
		}
		files = form.File["files"]
	} else if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.lessons.Create(c.UserContext(), actorFromContext(c), payload, files)
	if err != nil {
		return writeError(c, h.logger, err, "lesson creation")
	}
	return utils.Created(c, result, "lesson created")
}

func (h *LessonHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.lessons.Get(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "lesson lookup")
	}
	return utils.OK(c, result, "lesson retrieved", nil)
}

func (h *LessonHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.lessons.ListByCourse(c.UserContext(), actorFromContext(c), courseID)
	if err != nil {
		return writeError(c, h.logger, err, "lesson listing")
	}
	return utils.OK(c, result, "lessons retrieved", nil)
}

func (h *LessonHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	var (
		payload dto.LessonUpdateRequest
		files   []*multipart.FileHeader
	)

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return bodyError(c)
		}
		if payload, err = lessonUpdateFromForm(form); err != nil {
			return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
		}
		files = form.File["files"]
	} else if err := c.BodyParser(&payload); err != nil {
		return bodyError(c)
	}

	result, err := h.lessons.Update(c.UserContext(), actorFromContext(c), id, payload, files)
	if err != nil {
		return writeError(c, h.logger, err, "lesson update")
	}
	return utils.OK(c, result, "lesson updated", nil)
}

func (h *LessonHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := h.lessons.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return writeError(c, h.logger, err, "lesson deletion")
	}
	return utils.OK(c, nil, "lesson deleted", nil)
}

func (h *LessonHandler) toggleCompletion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	result, err := h.enrollments.ToggleLessonCompletion(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return writeError(c, h.logger, err, "lesson completion")
	}
	return utils.OK(c, result, "lesson completion updated", nil)
}

// formValues reads typed optional fields from a multipart form.
type formValues map[string][]string

func (f formValues) has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f formValues) str(key string) *string {
	values, ok := f[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}

func (f formValues) integer(key string) (*int, error) {
	raw := f.str(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &parsed, nil
}

func (f formValues) float(key string) (*float64, error) {
	raw := f.str(key)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return &parsed, nil
}

func (f formValues) boolean(key string) (*bool, error) {
	raw := f.str(key)
	if raw == nil {
		return nil, nil
	}
	parsed, err := formBool(*raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return parsed, nil
}

// list accepts repeated keys as well as a single comma separated value.
func (f formValues) list(key string) []string {
	items := make([]string, 0)
	for _, value := range f[key] {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}

func (f formValues) assignmentFields() (dto.AssignmentFields, error) {
	maxGrade, err := f.float("max_grade")
	if err != nil {
		return dto.AssignmentFields{}, err
	}
	fields := dto.AssignmentFields{MaxGrade: maxGrade, Description: f.str("assignment_description")}
	if due := f.str("due_date"); due != nil && strings.TrimSpace(*due) != "" {
		fields.DueDate = due
	}
	return fields, nil
}

func lessonCreateFromForm(form *multipart.Form) (dto.LessonCreateRequest, error) {
	values := formValues(form.Value)

	var payload dto.LessonCreateRequest
	if raw := values.str("course_id"); raw != nil {
		courseID, err := strconv.ParseUint(strings.TrimSpace(*raw), 10, 64)
		if err != nil {
			return payload, fiber.NewError(fiber.StatusBadRequest, "invalid course_id")
		}
		payload.CourseID = uint(courseID)
	}
	if title := values.str("title"); title != nil {
		payload.Title = *title
	}
	if content := values.str("content"); content != nil {
		payload.Content = *content
	}

	order, err := values.integer("order")
	if err != nil {
		return payload, err
	}
	if order != nil {
		payload.Order = *order
	}
	if payload.IsPublished, err = values.boolean("is_published"); err != nil {
		return payload, err
	}
	isAssignment, err := values.boolean("is_assignment")
	if err != nil {
		return payload, err
	}
	payload.IsAssignment = isAssignment != nil && *isAssignment
	payload.Links = values.list("links")
	if payload.AssignmentFields, err = values.assignmentFields(); err != nil {
		return payload, err
	}
	return payload, nil
}

func lessonUpdateFromForm(form *multipart.Form) (dto.LessonUpdateRequest, error) {
	values := formValues(form.Value)

	payload := dto.LessonUpdateRequest{
		Title:   values.str("title"),
		Content: values.str("content"),
	}

	var err error
	if payload.Order, err = values.integer("order"); err != nil {
		return payload, err
	}
	if payload.IsPublished, err = values.boolean("is_published"); err != nil {
		return payload, err
	}
	if payload.IsAssignment, err = values.boolean("is_assignment"); err != nil {
		return payload, err
	}
	if values.has("links") {
		links := values.list("links")
		payload.Links = &links
	}
	if payload.AssignmentFields, err = values.assignmentFields(); err != nil {
		return payload, err
	}
	return payload, nil
}
