package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// CourseService exposes the course catalogue.
type CourseService interface {
	Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	List(ctx context.Context, actor Actor, filter dto.CourseListFilter) ([]dto.CourseResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	MyCourses(ctx context.Context, actor Actor) (dto.MyCoursesResponse, error)
}

type courseService struct {
	repo        repository.CourseRepository
	enrollments repository.EnrollmentRepository
	access      courseAccess
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo repository.CourseRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:        repo,
		enrollments: enrollments,
		access:      courseAccess{courses: repo, enrollments: enrollments},
		validator:   validate,
		logger:      logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if !actor.IsTeacher() {
		return dto.CourseResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:         strings.TrimSpace(payload.Title),
		Description:   sanitizeRich(payload.Description),
		TeacherID:     actor.ID,
		IsPublic:      true,
		EnrollmentKey: strings.TrimSpace(payload.EnrollmentKey),
		Category:      payload.Category,
		Level:         payload.Level,
		Duration:      strings.TrimSpace(payload.Duration),
	}
	if payload.IsPublic != nil {
		course.IsPublic = *payload.IsPublic
	}
	if course.Category == "" {
		course.Category = models.CategoryOther
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}

	if err := s.repo.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("teacher_id", actor.ID).Msg("course created")

	created, err := s.access.load(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(created, true), nil
}

func (s *courseService) List(ctx context.Context, actor Actor, filter dto.CourseListFilter) ([]dto.CourseResponse, error) {
	isPublic := true
	if filter.IsPublic != nil {
		isPublic = *filter.IsPublic
	}

	courses, err := s.repo.List(ctx, repository.CourseFilter{
		Search:    filter.Search,
		TeacherID: filter.TeacherID,
		Category:  filter.Category,
		Level:     filter.Level,
		IsPublic:  &isPublic,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course, actor.CanManage(course)))
	}
	return responses, nil
}

func (s *courseService) Get(ctx context.Context, actor Actor, id uint) (dto.CourseResponse, error) {
	course, err := s.access.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course, actor.CanManage(course)), nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.access.load(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !actor.IsTeacher() || !course.IsOwnedBy(actor.ID) {
		return dto.CourseResponse{}, ErrForbidden
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = sanitizeRich(*payload.Description)
	}
	if payload.IsPublic != nil {
		course.IsPublic = *payload.IsPublic
	}
	if payload.EnrollmentKey != nil {
		course.EnrollmentKey = strings.TrimSpace(*payload.EnrollmentKey)
	}
	if payload.Category != nil {
		course.Category = *payload.Category
	}
	if payload.Level != nil {
		course.Level = *payload.Level
	}
	if payload.Duration != nil {
		course.Duration = strings.TrimSpace(*payload.Duration)
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")
	return dto.NewCourseResponse(course, true), nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	course, err := s.access.manage(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteWithEnrollments(ctx, course.ID); err != nil {
		return err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("actor_id", actor.ID).Msg("course deleted")
	return nil
}

func (s *courseService) MyCourses(ctx context.Context, actor Actor) (dto.MyCoursesResponse, error) {
	switch {
	case actor.IsTeacher():
		courses, err := s.repo.ListByTeacher(ctx, actor.ID)
		if err != nil {
			return dto.MyCoursesResponse{}, err
		}
		teaching := make([]dto.CourseResponse, 0, len(courses))
		for _, course := range courses {
			teaching = append(teaching, dto.NewCourseResponse(course, true))
		}
		return dto.MyCoursesResponse{Role: models.RoleTeacher, Teaching: teaching}, nil
	case actor.IsStudent():
		enrollments, err := s.enrollments.ListByStudent(ctx, actor.ID)
		if err != nil {
			return dto.MyCoursesResponse{}, err
		}
		enrolled := make([]dto.EnrolledCourseResponse, 0, len(enrollments))
		for _, enrollment := range enrollments {
			enrolled = append(enrolled, dto.EnrolledCourseResponse{
				Course:       dto.NewCourseResponse(enrollment.Course, false),
				EnrollmentID: enrollment.ID,
				Progress:     enrollment.Progress,
				Status:       enrollment.Status,
				EnrolledAt:   enrollment.EnrolledAt,
			})
		}
		return dto.MyCoursesResponse{Role: models.RoleStudent, Enrolled: enrolled}, nil
	default:
		return dto.MyCoursesResponse{}, ErrForbidden
	}
}
