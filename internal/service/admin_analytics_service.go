package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/observability"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

const (
	statsCacheKey           = "lms:admin:stats"
	courseAnalyticsCacheKey = "lms:admin:courses"
)

// AdminAnalyticsService aggregates platform analytics for administrators.
type AdminAnalyticsService interface {
	Stats(ctx context.Context) (dto.AdminStatsResponse, error)
	CourseAnalytics(ctx context.Context) (dto.CourseAnalyticsResponse, error)
}

type adminAnalyticsService struct {
	repo     repository.AdminAnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewAdminAnalyticsService constructs the analytics service. cache may be nil.
func NewAdminAnalyticsService(repo repository.AdminAnalyticsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminAnalyticsService {
	return &adminAnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_analytics_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/admin_analytics"),
		now:      time.Now,
	}
}

func (s *adminAnalyticsService) Stats(ctx context.Context) (dto.AdminStatsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.stats")
	defer span.End()

	var stats dto.AdminStatsResponse
	if s.readCache(ctx, span, "stats", statsCacheKey, &stats) {
		stats.CacheHit = true
		return stats, nil
	}

	roles, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, s.fail(span, "count_users_failed", err)
	}
	for _, row := range roles {
		switch models.NormalizeRole(row.Role) {
		case models.RoleStudent:
			stats.TotalStudents += row.Total
		case models.RoleTeacher:
			stats.TotalTeachers += row.Total
		case models.RoleAdmin:
			stats.TotalAdmins += row.Total
		}
	}

	if stats.TotalCourses, err = s.repo.CountCourses(ctx); err != nil {
		return dto.AdminStatsResponse{}, s.fail(span, "count_courses_failed", err)
	}
	if stats.TotalEnrollments, err = s.repo.CountEnrollments(ctx); err != nil {
		return dto.AdminStatsResponse{}, s.fail(span, "count_enrollments_failed", err)
	}

	average, err := s.repo.AverageProgress(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, s.fail(span, "average_progress_failed", err)
	}
	stats.AverageProgress = int(math.Round(average))
	stats.GeneratedAt = s.now().UTC()

	span.SetAttributes(
		attribute.Int64("analytics.enrollments", stats.TotalEnrollments),
		attribute.Int("analytics.average_progress", stats.AverageProgress),
	)
	s.writeCache(ctx, span, statsCacheKey, stats)

	return stats, nil
}

func (s *adminAnalyticsService) CourseAnalytics(ctx context.Context) (dto.CourseAnalyticsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.courses")
	defer span.End()

	var response dto.CourseAnalyticsResponse
	if s.readCache(ctx, span, "courses", courseAnalyticsCacheKey, &response) {
		response.CacheHit = true
		return response, nil
	}

	courses, enrollments, err := s.repo.ListCoursesWithEnrollments(ctx)
	if err != nil {
		return dto.CourseAnalyticsResponse{}, s.fail(span, "list_courses_failed", err)
	}

	byCourse := map[uint][]models.Enrollment{}
	for _, enrollment := range enrollments {
		byCourse[enrollment.CourseID] = append(byCourse[enrollment.CourseID], enrollment)
	}

	response.Courses = make([]dto.CourseAnalytics, 0, len(courses))
	for _, course := range courses {
		teacher := dto.NewUserLite(course.Teacher)
		if teacher.ID == 0 {
			teacher.ID = course.TeacherID
		}

		rows := byCourse[course.ID]
		entry := dto.CourseAnalytics{
			ID:           course.ID,
			Title:        course.Title,
			Teacher:      teacher,
			StudentCount: len(rows),
			Students:     make([]dto.CourseAnalyticsStudent, 0, len(rows)),
		}

		total := 0
		for _, enrollment := range rows {
			total += enrollment.Progress
			entry.Students = append(entry.Students, dto.CourseAnalyticsStudent{
				ID:         enrollment.StudentID,
				Name:       enrollment.Student.Name,
				Email:      enrollment.Student.Email,
				Progress:   enrollment.Progress,
				Status:     enrollment.Status,
				EnrolledAt: enrollment.EnrolledAt,
			})
		}
		if len(rows) > 0 {
			entry.AverageProgress = int(math.Round(float64(total) / float64(len(rows))))
		}

		response.Courses = append(response.Courses, entry)
	}
	response.GeneratedAt = s.now().UTC()

	span.SetAttributes(attribute.Int("analytics.courses", len(response.Courses)))
	s.writeCache(ctx, span, courseAnalyticsCacheKey, response)

	return response, nil
}

func (s *adminAnalyticsService) readCache(ctx context.Context, span trace.Span, report, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
		observability.AnalyticsCacheLookups().WithLabelValues(report, "miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), target); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding malformed analytics cache entry")
		observability.AnalyticsCacheLookups().WithLabelValues(report, "miss").Inc()
		return false
	}

	observability.AnalyticsCacheLookups().WithLabelValues(report, "hit").Inc()
	span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
	return true
}

func (s *adminAnalyticsService) writeCache(ctx context.Context, span trace.Span, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store analytics cache")
		span.RecordError(err)
	}
}

func (s *adminAnalyticsService) fail(span trace.Span, status string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}
