package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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

// SubmissionService handles student submissions, grading and comments.
type SubmissionService interface {
	Submit(ctx context.Context, actor Actor, assignmentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor Actor, assignmentID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error)
	AddComment(ctx context.Context, actor Actor, assignmentID uint, payload dto.CommentRequest) (dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo        repository.SubmissionRepository
	assignments repository.AssignmentRepository
	access      courseAccess
	uploads     UploadService
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs the submission service. uploads may be nil
// when file submissions are not supported.
func NewSubmissionService(
	repo repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	uploads UploadService,
	events EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) SubmissionService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	return &submissionService{
		repo:        repo,
		assignments: assignments,
		access:      courseAccess{courses: courses, enrollments: enrollments},
		uploads:     uploads,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, actor Actor, assignmentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.access.openEnrollment(ctx, actor.ID, assignment.CourseID); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if _, err := s.repo.Get(ctx, assignment.ID, actor.ID); err == nil {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	if assignment.IsPastDue(now) {
		return dto.SubmissionResponse{}, ErrDeadlinePassed
	}

	content := sanitizeRich(payload.Content)
	fileURL := strings.TrimSpace(payload.FileURL)
	if content == "" && fileURL == "" && file == nil {
		return dto.SubmissionResponse{}, ErrEmptySubmission
	}

	if file != nil {
		if s.uploads == nil {
			return dto.SubmissionResponse{}, fmt.Errorf("%w: file submissions are disabled", ErrInvalidInput)
		}
		userID := actor.ID
		stored, err := s.uploads.Upload(ctx, file, &userID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		fileURL = stored.FileURL
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Content:      content,
		FileURL:      fileURL,
		SubmittedAt:  now,
	}
	if err := s.repo.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, ErrAlreadySubmitted
		}
		return dto.SubmissionResponse{}, err
	}

	observability.Submissions().Inc()
	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("student_id", actor.ID).Msg("submission received")

	stored, err := s.repo.Get(ctx, assignment.ID, actor.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	response := dto.NewSubmissionResponse(stored)
	s.events.Publish(ctx, EventSubmissionCreated, response)
	return response, nil
}

func (s *submissionService) Grade(ctx context.Context, actor Actor, assignmentID uint, payload dto.GradeRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.grade")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.id", int(assignmentID)))

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, assignment.CourseID); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}
	if !assignment.AcceptsGrade(*payload.Grade) {
		span.SetStatus(codes.Error, "grade out of range")
		return dto.SubmissionResponse{}, ErrGradeOutOfRange
	}

	submission, err := s.loadSubmission(ctx, assignment.ID, payload.StudentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	gradedAt := s.now()
	grade := *payload.Grade
	graderID := actor.ID
	submission.Grade = &grade
	submission.GradedBy = &graderID
	submission.GradedAt = &gradedAt
	if payload.Feedback != nil {
		submission.Feedback = sanitizePlain(*payload.Feedback)
	}

	if err := s.repo.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist grade failed")
		return dto.SubmissionResponse{}, err
	}

	observability.Grades().Inc()
	span.SetAttributes(
		attribute.Int("student.id", int(submission.StudentID)),
		attribute.Float64("submission.grade", grade),
	)
	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", submission.StudentID).
		Float64("grade", grade).
		Msg("submission graded")

	response := dto.NewSubmissionResponse(submission)
	s.events.Publish(ctx, EventSubmissionGraded, response)
	return response, nil
}

func (s *submissionService) AddComment(ctx context.Context, actor Actor, assignmentID uint, payload dto.CommentRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	studentID := actor.ID
	if !actor.IsStudent() {
		if _, err := s.access.manage(ctx, actor, assignment.CourseID); err != nil {
			return dto.SubmissionResponse{}, err
		}
		if payload.StudentID == 0 {
			return dto.SubmissionResponse{}, fmt.Errorf("%w: student_id is required", ErrInvalidInput)
		}
		studentID = payload.StudentID
	}

	submission, err := s.loadSubmission(ctx, assignment.ID, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	content := sanitizePlain(payload.Content)
	if content == "" {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: comment is empty", ErrInvalidInput)
	}

	comment := models.SubmissionComment{
		SubmissionID: submission.ID,
		AuthorID:     actor.ID,
		Content:      content,
		CreatedAt:    s.now(),
	}
	if err := s.repo.AddComment(ctx, &comment); err != nil {
		return dto.SubmissionResponse{}, err
	}

	refreshed, err := s.loadSubmission(ctx, assignment.ID, studentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(refreshed), nil
}

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	submissions, err := s.repo.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) loadAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *submissionService) loadSubmission(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	submission, err := s.repo.Get(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}
