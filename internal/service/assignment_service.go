package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// AssignmentSettings are the graded-work fields applied to a lesson. Nil
// fields keep their stored value.
type AssignmentSettings struct {
	DueDate     *time.Time
	MaxGrade    *float64
	Description *string
}

// AssignmentService owns the assignment row derived from a lesson. Every
// write goes through SyncFromLesson.
type AssignmentService interface {
	SyncFromLesson(ctx context.Context, lesson models.Lesson, flagged bool, settings AssignmentSettings) (*models.Assignment, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Overview(ctx context.Context, actor Actor, courseID uint) ([]dto.AssignmentOverview, error)
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	lessons     repository.LessonRepository
	submissions repository.SubmissionRepository
	enrollments repository.EnrollmentRepository
	access      courseAccess
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	repo repository.AssignmentRepository,
	lessons repository.LessonRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	submissions repository.SubmissionRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		repo:        repo,
		lessons:     lessons,
		submissions: submissions,
		enrollments: enrollments,
		access:      courseAccess{courses: courses, enrollments: enrollments},
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

// dueDateLayouts lists the accepted due_date formats. Values without a zone,
// as sent by datetime-local inputs, are read as UTC.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDueDate(value string) (time.Time, error) {
	for _, layout := range dueDateLayouts {
		if due, err := time.Parse(layout, value); err == nil {
			return due, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: due_date must be an ISO 8601 date or datetime", ErrInvalidInput)
}

// ParseAssignmentFields converts request fields into settings.
func ParseAssignmentFields(fields dto.AssignmentFields) (AssignmentSettings, error) {
	settings := AssignmentSettings{MaxGrade: fields.MaxGrade}
	if fields.DueDate != nil && strings.TrimSpace(*fields.DueDate) != "" {
		due, err := parseDueDate(strings.TrimSpace(*fields.DueDate))
		if err != nil {
			return AssignmentSettings{}, err
		}
		settings.DueDate = &due
	}
	if fields.Description != nil {
		description := sanitizeRich(*fields.Description)
		settings.Description = &description
	}
	return settings, nil
}

func (s *assignmentService) SyncFromLesson(ctx context.Context, lesson models.Lesson, flagged bool, settings AssignmentSettings) (*models.Assignment, error) {
	existing, err := s.repo.GetByLessonID(ctx, lesson.ID)
	found := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !flagged {
		if !found {
			return nil, nil
		}
		count, err := s.repo.CountSubmissions(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrAssignmentHasSubmissions
		}
		if err := s.repo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		s.logger.Info().Uint("lesson_id", lesson.ID).Uint("assignment_id", existing.ID).Msg("assignment removed from lesson")
		return nil, nil
	}

	assignment := existing
	if !found {
		if settings.DueDate == nil {
			return nil, ErrDueDateRequired
		}
		assignment = models.Assignment{
			LessonID: lesson.ID,
			MaxGrade: models.DefaultMaxGrade,
		}
	}

	assignment.CourseID = lesson.CourseID
	assignment.Title = lesson.Title
	if settings.DueDate != nil {
		assignment.DueDate = settings.DueDate.UTC()
	}
	if settings.Description != nil {
		assignment.Description = *settings.Description
	}
	if settings.MaxGrade != nil {
		if *settings.MaxGrade <= 0 {
			return nil, fmt.Errorf("%w: max_grade must be positive", ErrInvalidInput)
		}
		if found {
			highest, err := s.repo.HighestGrade(ctx, assignment.ID)
			if err != nil {
				return nil, err
			}
			if highest != nil && *highest > *settings.MaxGrade {
				return nil, ErrMaxGradeBelowGrades
			}
		}
		assignment.MaxGrade = *settings.MaxGrade
	}

	if err := s.repo.Save(ctx, &assignment); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("assignment_id", assignment.ID).Bool("created", !found).Msg("assignment synced from lesson")
	return &assignment, nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	lesson, err := s.loadLesson(ctx, payload.LessonID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, lesson.CourseID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate := payload.DueDate
	description := payload.Description
	settings, err := ParseAssignmentFields(dto.AssignmentFields{
		DueDate:     &dueDate,
		MaxGrade:    payload.MaxGrade,
		Description: &description,
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.SyncFromLesson(ctx, lesson, true, settings)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(*assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	_, managing, err := s.access.view(ctx, actor, assignment.CourseID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	response := dto.NewAssignmentResponse(assignment)
	if managing {
		submissions, err := s.submissions.ListByAssignments(ctx, []uint{assignment.ID})
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		response.Submissions = dto.NewSubmissionResponseSlice(submissions)
		return response, nil
	}

	submission, err := s.submissions.Get(ctx, assignment.ID, actor.ID)
	if err == nil {
		mine := dto.NewSubmissionResponse(submission)
		response.MySubmission = &mine
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AssignmentResponse{}, err
	}
	return response, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.AssignmentResponse, error) {
	_, managing, err := s.access.view(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	responses := dto.NewAssignmentResponseSlice(assignments)
	if managing || len(assignments) == 0 {
		return responses, nil
	}

	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}
	mine, err := s.submissions.ListForStudent(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}
	byAssignment := make(map[uint]dto.SubmissionResponse, len(mine))
	for _, submission := range mine {
		byAssignment[submission.AssignmentID] = dto.NewSubmissionResponse(submission)
	}
	for i := range responses {
		if submission, ok := byAssignment[responses[i].ID]; ok {
			submission := submission
			responses[i].MySubmission = &submission
		}
	}
	return responses, nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.load(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, assignment.CourseID); err != nil {
		return dto.AssignmentResponse{}, err
	}
	lesson, err := s.loadLesson(ctx, assignment.LessonID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	settings, err := ParseAssignmentFields(dto.AssignmentFields{
		DueDate:     payload.DueDate,
		MaxGrade:    payload.MaxGrade,
		Description: payload.Description,
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	updated, err := s.SyncFromLesson(ctx, lesson, true, settings)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(*updated), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.manage(ctx, actor, assignment.CourseID); err != nil {
		return err
	}
	lesson, err := s.loadLesson(ctx, assignment.LessonID)
	if err != nil {
		return err
	}

	_, err = s.SyncFromLesson(ctx, lesson, false, AssignmentSettings{})
	return err
}

func (s *assignmentService) Overview(ctx context.Context, actor Actor, courseID uint) ([]dto.AssignmentOverview, error) {
	if _, err := s.access.manage(ctx, actor, courseID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled := make(map[uint]struct{}, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.IsOpen() {
			enrolled[enrollment.StudentID] = struct{}{}
		}
	}

	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}
	byAssignment := map[uint][]models.Submission{}
	if len(ids) > 0 {
		submissions, err := s.submissions.ListByAssignments(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, submission := range submissions {
			byAssignment[submission.AssignmentID] = append(byAssignment[submission.AssignmentID], submission)
		}
	}

	overview := make([]dto.AssignmentOverview, 0, len(assignments))
	for _, assignment := range assignments {
		entry := dto.AssignmentOverview{
			Assignment:    dto.NewAssignmentResponse(assignment),
			EnrolledCount: len(enrolled),
		}

		total := 0.0
		for _, submission := range byAssignment[assignment.ID] {
			if _, ok := enrolled[submission.StudentID]; !ok {
				continue
			}
			entry.SubmittedCount++
			if submission.IsGraded() {
				entry.GradedCount++
				total += *submission.Grade
			}
		}
		entry.PendingCount = entry.SubmittedCount - entry.GradedCount
		entry.MissingCount = entry.EnrolledCount - entry.SubmittedCount
		if entry.GradedCount > 0 {
			average := math.Round(total/float64(entry.GradedCount)*100) / 100
			entry.AverageGrade = &average
		}

		overview = append(overview, entry)
	}
	return overview, nil
}

func (s *assignmentService) load(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) loadLesson(ctx context.Context, id uint) (models.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Lesson{}, ErrLessonNotFound
		}
		return models.Lesson{}, err
	}
	return lesson, nil
}
