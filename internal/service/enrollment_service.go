package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// EnrollmentService manages the enrollment ledger and lesson progress.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor Actor, courseID uint, payload dto.EnrollRequest) (dto.EnrollmentResponse, error)
	ToggleLessonCompletion(ctx context.Context, actor Actor, lessonID uint) (dto.LessonCompletionResponse, error)
	MyEnrollment(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error)
	Roster(ctx context.Context, actor Actor, courseID uint) ([]dto.RosterEntry, error)
	RefreshCourseProgress(ctx context.Context, courseID uint) error
}

type enrollmentService struct {
	repo    repository.EnrollmentRepository
	lessons repository.LessonRepository
	access  courseAccess
	events  EventPublisher
	logger  zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(repo repository.EnrollmentRepository, courses repository.CourseRepository, lessons repository.LessonRepository, events EventPublisher, logger zerolog.Logger) EnrollmentService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	return &enrollmentService{
		repo:    repo,
		lessons: lessons,
		access:  courseAccess{courses: courses, enrollments: repo},
		events:  events,
		logger:  logger.With().Str("component", "enrollment_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/enrollment"),
		now:     time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, courseID uint, payload dto.EnrollRequest) (dto.EnrollmentResponse, error) {
	if !actor.IsStudent() {
		return dto.EnrollmentResponse{}, ErrForbidden
	}

	course, err := s.access.load(ctx, courseID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if !course.KeyMatches(payload.EnrollmentKey) {
		return dto.EnrollmentResponse{}, ErrInvalidEnrollmentKey
	}

	exists, err := s.repo.Exists(ctx, actor.ID, course.ID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if exists {
		return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
	}

	enrollment := models.NewEnrollment(actor.ID, course.ID, s.now())
	if err := s.repo.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		return dto.EnrollmentResponse{}, err
	}

	observability.Enrollments().Inc()
	s.events.Publish(ctx, EventEnrollmentCreated, dto.NewEnrollmentResponse(enrollment))
	s.logger.Info().Uint("course_id", course.ID).Uint("student_id", actor.ID).Msg("student enrolled")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ToggleLessonCompletion(ctx context.Context, actor Actor, lessonID uint) (dto.LessonCompletionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "enrollment.toggle_lesson")
	defer span.End()
	span.SetAttributes(
		attribute.Int("lesson.id", int(lessonID)),
		attribute.Int("student.id", int(actor.ID)),
	)

	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonCompletionResponse{}, ErrLessonNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load lesson failed")
		return dto.LessonCompletionResponse{}, err
	}
	if !lesson.IsPublished {
		return dto.LessonCompletionResponse{}, ErrLessonNotFound
	}

	enrollment, err := s.access.openEnrollment(ctx, actor.ID, lesson.CourseID)
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) {
			return dto.LessonCompletionResponse{}, ErrForbidden
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load enrollment failed")
		return dto.LessonCompletionResponse{}, err
	}

	published, err := s.lessons.PublishedIDs(ctx, lesson.CourseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load published lessons failed")
		return dto.LessonCompletionResponse{}, err
	}

	wasCompleted := enrollment.Status == models.EnrollmentCompleted
	completed := enrollment.ToggleLesson(lesson.ID)
	enrollment.Recalculate(published, s.now())

	if err := s.repo.Update(ctx, &enrollment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist enrollment failed")
		return dto.LessonCompletionResponse{}, err
	}

	action := "uncomplete"
	if completed {
		action = "complete"
	}
	observability.LessonCompletions().WithLabelValues(action).Inc()
	span.SetAttributes(
		attribute.Bool("lesson.completed", completed),
		attribute.Int("enrollment.progress", enrollment.Progress),
	)

	response := dto.NewEnrollmentResponse(enrollment)
	if !wasCompleted && enrollment.Status == models.EnrollmentCompleted {
		s.events.Publish(ctx, EventEnrollmentCompleted, response)
		s.logger.Info().Uint("enrollment_id", enrollment.ID).Msg("course completed")
	}

	return dto.LessonCompletionResponse{
		LessonID:   lesson.ID,
		Completed:  completed,
		Enrollment: response,
	}, nil
}

func (s *enrollmentService) MyEnrollment(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error) {
	if _, err := s.access.load(ctx, courseID); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	enrollment, err := s.repo.Get(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrEnrollmentNotFound
		}
		return dto.EnrollmentResponse{}, err
	}

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) Roster(ctx context.Context, actor Actor, courseID uint) ([]dto.RosterEntry, error) {
	if _, err := s.access.manage(ctx, actor, courseID); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	roster := make([]dto.RosterEntry, 0, len(enrollments))
	for _, enrollment := range enrollments {
		roster = append(roster, dto.NewRosterEntry(enrollment))
	}
	return roster, nil
}

// RefreshCourseProgress recomputes every enrollment of the course after its
// set of published lessons changed.
func (s *enrollmentService) RefreshCourseProgress(ctx context.Context, courseID uint) error {
	published, err := s.lessons.PublishedIDs(ctx, courseID)
	if err != nil {
		return err
	}

	enrollments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}

	now := s.now()
	for i := range enrollments {
		enrollment := enrollments[i]
		progress, status := enrollment.Progress, enrollment.Status

		enrollment.Recalculate(published, now)
		if enrollment.Progress == progress && enrollment.Status == status {
			continue
		}

		if err := s.repo.Update(ctx, &enrollment); err != nil {
			return err
		}
		if status != models.EnrollmentCompleted && enrollment.Status == models.EnrollmentCompleted {
			s.events.Publish(ctx, EventEnrollmentCompleted, dto.NewEnrollmentResponse(enrollment))
		}
	}

	s.logger.Debug().Uint("course_id", courseID).Int("enrollments", len(enrollments)).Msg("course progress refreshed")
	return nil
}
