package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// QuizService manages quizzes and scores attempts.
type QuizService interface {
	Create(ctx context.Context, actor Actor, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.QuizResponse, error)
	ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.QuizResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.QuizUpdateRequest) (dto.QuizResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Submit(ctx context.Context, actor Actor, id uint, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error)
	Results(ctx context.Context, actor Actor, id uint) ([]dto.QuizResultResponse, error)
}

type quizService struct {
	repo      repository.QuizRepository
	access    courseAccess
	events    EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewQuizService constructs the quiz service.
func NewQuizService(
	repo repository.QuizRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	events EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) QuizService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	return &quizService{
		repo:      repo,
		access:    courseAccess{courses: courses, enrollments: enrollments},
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/quiz"),
		now:       time.Now,
	}
}

func (s *quizService) Create(ctx context.Context, actor Actor, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, payload.CourseID); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		CourseID:        payload.CourseID,
		Title:           strings.TrimSpace(payload.Title),
		Description:     sanitizeRich(payload.Description),
		TimeLimit:       payload.TimeLimit,
		PassingScore:    models.DefaultPassingScore,
		AttemptsAllowed: models.DefaultAttemptsAllowed,
		IsPublished:     payload.IsPublished,
		Questions:       make([]models.Question, 0, len(payload.Questions)),
	}
	if payload.PassingScore != nil {
		quiz.PassingScore = *payload.PassingScore
	}
	if payload.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *payload.AttemptsAllowed
	}

	for i, item := range payload.Questions {
		if item.CorrectOptionIndex >= len(item.Options) {
			return dto.QuizResponse{}, fmt.Errorf("%w: question %d correct_option_index is out of range", ErrInvalidInput, i+1)
		}
		points := models.DefaultQuestionPoints
		if item.Points != nil {
			points = *item.Points
		}
		options := make([]string, 0, len(item.Options))
		for _, option := range item.Options {
			options = append(options, strings.TrimSpace(option))
		}
		quiz.Questions = append(quiz.Questions, models.Question{
			Text:               strings.TrimSpace(item.Text),
			Options:            datatypes.NewJSONType(options),
			CorrectOptionIndex: item.CorrectOptionIndex,
			Points:             points,
		})
	}

	if err := s.repo.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Uint("course_id", quiz.CourseID).Int("questions", len(quiz.Questions)).Msg("quiz created")
	return dto.NewQuizResponse(quiz, true), nil
}

func (s *quizService) Get(ctx context.Context, actor Actor, id uint) (dto.QuizResponse, error) {
	quiz, managing, err := s.viewQuiz(ctx, actor, id)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	response := dto.NewQuizResponse(quiz, managing)
	if !managing {
		used, err := s.repo.CountAttempts(ctx, quiz.ID, actor.ID)
		if err != nil {
			return dto.QuizResponse{}, err
		}
		response.AttemptsUsed = &used
	}
	return response, nil
}

func (s *quizService) ListByCourse(ctx context.Context, actor Actor, courseID uint) ([]dto.QuizResponse, error) {
	_, managing, err := s.access.view(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	quizzes, err := s.repo.ListByCourse(ctx, courseID, !managing)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, dto.NewQuizResponse(quiz, managing))
	}
	return responses, nil
}

func (s *quizService) Update(ctx context.Context, actor Actor, id uint, payload dto.QuizUpdateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.load(ctx, id)
	if err != nil {
		return dto.QuizResponse{}, err
	}
	if _, err := s.access.manage(ctx, actor, quiz.CourseID); err != nil {
		return dto.QuizResponse{}, err
	}

	if payload.Title != nil {
		quiz.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		quiz.Description = sanitizeRich(*payload.Description)
	}
	if payload.TimeLimit != nil {
		quiz.TimeLimit = *payload.TimeLimit
	}
	if payload.PassingScore != nil {
		quiz.PassingScore = *payload.PassingScore
	}
	if payload.AttemptsAllowed != nil {
		quiz.AttemptsAllowed = *payload.AttemptsAllowed
	}
	if payload.IsPublished != nil {
		quiz.IsPublished = *payload.IsPublished
	}

	if err := s.repo.Update(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}
	return dto.NewQuizResponse(quiz, true), nil
}

func (s *quizService) Delete(ctx context.Context, actor Actor, id uint) error {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.manage(ctx, actor, quiz.CourseID); err != nil {
		return err
	}

	results, err := s.repo.CountResults(ctx, quiz.ID)
	if err != nil {
		return err
	}
	if results > 0 {
		return ErrQuizHasResults
	}

	if err := s.repo.Delete(ctx, quiz.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Msg("quiz deleted")
	return nil
}

func (s *quizService) Submit(ctx context.Context, actor Actor, id uint, payload dto.QuizSubmitRequest) (dto.QuizResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "quiz.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int("quiz.id", int(id)),
		attribute.Int("student.id", int(actor.ID)),
	)

	if !actor.IsStudent() {
		return dto.QuizResultResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResultResponse{}, err
	}

	quiz, err := s.load(ctx, id)
	if err != nil {
		return dto.QuizResultResponse{}, err
	}
	if !quiz.IsPublished {
		return dto.QuizResultResponse{}, ErrQuizNotFound
	}
	if _, err := s.access.openEnrollment(ctx, actor.ID, quiz.CourseID); err != nil {
		return dto.QuizResultResponse{}, err
	}
	if len(payload.Answers) > len(quiz.Questions) {
		return dto.QuizResultResponse{}, ErrInvalidQuizAnswers
	}

	attempts, err := s.repo.CountAttempts(ctx, quiz.ID, actor.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count attempts failed")
		return dto.QuizResultResponse{}, err
	}
	if attempts >= int64(quiz.AttemptsAllowed) {
		span.SetStatus(codes.Error, "attempts exhausted")
		return dto.QuizResultResponse{}, ErrAttemptsExhausted
	}

	score := quiz.Grade(payload.Answers)
	result := models.QuizResult{
		QuizID:        quiz.ID,
		StudentID:     actor.ID,
		AttemptNumber: int(attempts) + 1,
		Score:         score.Score,
		TotalPoints:   score.TotalPoints,
		Percentage:    score.Percentage,
		Passed:        score.Passed,
		Answers:       datatypes.NewJSONType(payload.Answers),
		SubmittedAt:   s.now(),
	}
	if err := s.repo.CreateResult(ctx, &result); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.QuizResultResponse{}, ErrAttemptConflict
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist result failed")
		return dto.QuizResultResponse{}, err
	}

	observability.QuizAttempts().WithLabelValues(strconv.FormatBool(result.Passed)).Inc()
	span.SetAttributes(
		attribute.Int("quiz.attempt", result.AttemptNumber),
		attribute.Float64("quiz.percentage", result.Percentage),
		attribute.Bool("quiz.passed", result.Passed),
	)

	response := dto.NewQuizResultResponse(result)
	s.events.Publish(ctx, EventQuizAttempted, response)
	return response, nil
}

func (s *quizService) Results(ctx context.Context, actor Actor, id uint) ([]dto.QuizResultResponse, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	_, managing, err := s.access.view(ctx, actor, quiz.CourseID)
	if err != nil {
		return nil, err
	}

	var studentID *uint
	if !managing {
		own := actor.ID
		studentID = &own
	}

	results, err := s.repo.ListResults(ctx, quiz.ID, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuizResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, dto.NewQuizResultResponse(result))
	}
	return responses, nil
}

func (s *quizService) viewQuiz(ctx context.Context, actor Actor, id uint) (models.Quiz, bool, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return models.Quiz{}, false, err
	}
	_, managing, err := s.access.view(ctx, actor, quiz.CourseID)
	if err != nil {
		return models.Quiz{}, false, err
	}
	if !managing && !quiz.IsPublished {
		return models.Quiz{}, false, ErrQuizNotFound
	}
	return quiz, managing, nil
}

func (s *quizService) load(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quiz{}, ErrQuizNotFound
		}
		return models.Quiz{}, err
	}
	return quiz, nil
}
