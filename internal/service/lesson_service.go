package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// CourseProgressRefresher recomputes enrollment progress for a course.
type CourseProgressRefresher interface {
	RefreshCourseProgress(ctx context.Context, courseID uint) error
}

// LessonService manages ordered lesson content.
type LessonService interface {
	Create(ctx context.Context, actor Actor, payload dto.LessonCreateRequest, files []*multipart.FileHeader) (dto.LessonResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.LessonResponse, error)
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.LessonResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.LessonUpdateRequest, files []*multipart.FileHeader) (dto.LessonResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type lessonService struct {
	repo        repository.LessonRepository
	enrollments repository.EnrollmentRepository
	access      courseAccess
	assignments AssignmentService
	progress    CourseProgressRefresher
	uploads     UploadService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewLessonService constructs the lesson service. uploads may be nil when
// attachments are not supported.
func NewLessonService(
	repo repository.LessonRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	assignments AssignmentService,
	progress CourseProgressRefresher,
	uploads UploadService,
	validate *validator.Validate,
	logger zerolog.Logger,
) LessonService {
	return &lessonService{
		repo:        repo,
		enrollments: enrollments,
		access:      courseAccess{courses: courses, enrollments: enrollments},
		assignments: assignments,
		progress:    progress,
		uploads:     uploads,
		validator:   validate,
		logger:      logger.With().Str("component", "lesson_service").Logger(),
	}
}

func (s *lessonService) Create(ctx context.Context, actor Actor, payload dto.LessonCreateRequest, files []*multipart.FileHeader) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, payload.CourseID); err != nil {
		return dto.LessonResponse{}, err
	}

	settings, err := ParseAssignmentFields(payload.AssignmentFields)
	if err != nil {
		return dto.LessonResponse{}, err
	}
	if payload.IsAssignment && settings.DueDate == nil {
		return dto.LessonResponse{}, ErrDueDateRequired
	}

	attachments, err := s.storeAttachments(ctx, actor, files)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		CourseID:    payload.CourseID,
		Title:       strings.TrimSpace(payload.Title),
		Content:     sanitizeRich(payload.Content),
		Position:    payload.Order,
		IsPublished: true,
		Links:       datatypes.NewJSONType(cleanLinks(payload.Links)),
		Attachments: datatypes.NewJSONType(attachments),
	}
	if payload.IsPublished != nil {
		lesson.IsPublished = *payload.IsPublished
	}

	if err := s.repo.Create(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	if payload.IsAssignment {
		assignment, err := s.assignments.SyncFromLesson(ctx, lesson, true, settings)
		if err != nil {
			if cleanupErr := s.repo.Delete(ctx, lesson.ID); cleanupErr != nil {
				s.logger.Error().Err(cleanupErr).Uint("lesson_id", lesson.ID).Msg("failed to remove lesson after assignment sync error")
			}
			return dto.LessonResponse{}, err
		}
		lesson.Assignment = assignment
	}

	if lesson.IsPublished {
		if err := s.progress.RefreshCourseProgress(ctx, lesson.CourseID); err != nil {
			return dto.LessonResponse{}, err
		}
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("course_id", lesson.CourseID).Bool("assignment", lesson.IsAssignment()).Msg("lesson created")
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Get(ctx context.Context, actor Actor, id uint) (dto.LessonResponse, error) {
	lesson, err := s.load(ctx, id)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	_, managing, err := s.access.view(ctx, actor, lesson.CourseID)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	response := dto.NewLessonResponse(lesson)
	if managing {
		return response, nil
	}
	if !lesson.IsPublished {
		return dto.LessonResponse{}, ErrLessonNotFound
	}

	enrollment, err := s.enrollments.Get(ctx, actor.ID, lesson.CourseID)
	if err != nil {
		return dto.LessonResponse{}, err
	}
	completed := enrollment.HasCompleted(lesson.ID)
	response.Completed = &completed
	return response, nil
}

func (s *lessonService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.LessonResponse, error) {
	_, managing, err := s.access.view(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.repo.ListByCourse(ctx, courseID, !managing)
	if err != nil {
		return nil, err
	}

	responses := dto.NewLessonResponseSlice(lessons)
	if managing {
		return responses, nil
	}

	enrollment, err := s.enrollments.Get(ctx, actor.ID, courseID)
	if err != nil {
		return nil, err
	}
	for i := range responses {
		completed := enrollment.HasCompleted(responses[i].ID)
		responses[i].Completed = &completed
	}
	return responses, nil
}

func (s *lessonService) Update(ctx context.Context, actor Actor, id uint, payload dto.LessonUpdateRequest, files []*multipart.FileHeader) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.load(ctx, id)
	if err != nil {
		return dto.LessonResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, lesson.CourseID); err != nil {
		return dto.LessonResponse{}, err
	}

	settings, err := ParseAssignmentFields(payload.AssignmentFields)
	if err != nil {
		return dto.LessonResponse{}, err
	}

	wasPublished := lesson.IsPublished
	if payload.Title != nil {
		lesson.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Content != nil {
		lesson.Content = sanitizeRich(*payload.Content)
	}
	if payload.Order != nil {
		lesson.Position = *payload.Order
	}
	if payload.IsPublished != nil {
		lesson.IsPublished = *payload.IsPublished
	}
	if payload.Links != nil {
		lesson.Links = datatypes.NewJSONType(cleanLinks(*payload.Links))
	}

	flagged := lesson.IsAssignment()
	if payload.IsAssignment != nil {
		flagged = *payload.IsAssignment
	}
	if flagged || lesson.IsAssignment() {
		assignment, err := s.assignments.SyncFromLesson(ctx, lesson, flagged, settings)
		if err != nil {
			return dto.LessonResponse{}, err
		}
		lesson.Assignment = assignment
	}

	if len(files) > 0 {
		added, err := s.storeAttachments(ctx, actor, files)
		if err != nil {
			return dto.LessonResponse{}, err
		}
		lesson.Attachments = datatypes.NewJSONType(append(lesson.AttachmentList(), added...))
	}

	if err := s.repo.Update(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	if wasPublished != lesson.IsPublished {
		if err := s.progress.RefreshCourseProgress(ctx, lesson.CourseID); err != nil {
			return dto.LessonResponse{}, err
		}
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Msg("lesson updated")
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Delete(ctx context.Context, actor Actor, id uint) error {
	lesson, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.manage(ctx, actor, lesson.CourseID); err != nil {
		return err
	}

	if lesson.IsAssignment() {
		if _, err := s.assignments.SyncFromLesson(ctx, lesson, false, AssignmentSettings{}); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, lesson.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}

	if lesson.IsPublished {
		if err := s.progress.RefreshCourseProgress(ctx, lesson.CourseID); err != nil {
			return err
		}
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("course_id", lesson.CourseID).Msg("lesson deleted")
	return nil
}

func (s *lessonService) storeAttachments(ctx context.Context, actor Actor, files []*multipart.FileHeader) ([]models.LessonAttachment, error) {
	attachments := make([]models.LessonAttachment, 0, len(files))
	if len(files) == 0 {
		return attachments, nil
	}
	if s.uploads == nil {
		return nil, ErrUploadTypeNotAllowed
	}

	userID := actor.ID
	for _, file := range files {
		stored, err := s.uploads.Upload(ctx, file, &userID)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, models.LessonAttachment{
			FileName: stored.FileName,
			URL:      stored.FileURL,
			MimeType: stored.MimeType,
			Size:     stored.Size,
		})
	}
	return attachments, nil
}

func (s *lessonService) load(ctx context.Context, id uint) (models.Lesson, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Lesson{}, ErrLessonNotFound
		}
		return models.Lesson{}, err
	}
	return lesson, nil
}

func cleanLinks(links []string) []string {
	cleaned := make([]string, 0, len(links))
	for _, link := range links {
		if trimmed := strings.TrimSpace(link); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
