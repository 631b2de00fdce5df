package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

func (e *testEnv) analyticsService(cache *redis.Client, ttl time.Duration) AdminAnalyticsService {
	return NewAdminAnalyticsService(repository.NewAdminAnalyticsRepository(e.db), cache, ttl, testLogger())
}

func TestAdminStatsWithoutData(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.analyticsService(nil, time.Minute).Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalStudents)
	require.Zero(t, stats.TotalEnrollments)
	require.Zero(t, stats.AverageProgress)
	require.False(t, stats.CacheHit)
}

func TestAdminStatsAggregates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	env.actor(t, "Admin", models.RoleAdmin)
	course := env.course(t, teacher, true, "")
	env.course(t, teacher, false, "KEY")

	for _, progress := range []int{50, 25} {
		student := env.actor(t, "Student", models.RoleStudent)
		enrollment := env.enroll(t, student, course.ID)
		enrollment.Progress = progress
		require.NoError(t, env.enrollments.Update(ctx, &enrollment))
	}

	stats, err := env.analyticsService(nil, time.Minute).Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalStudents)
	require.Equal(t, int64(1), stats.TotalTeachers)
	require.Equal(t, int64(1), stats.TotalAdmins)
	require.Equal(t, int64(2), stats.TotalCourses)
	require.Equal(t, int64(2), stats.TotalEnrollments)
	require.Equal(t, 38, stats.AverageProgress)
}

func TestAdminCourseAnalytics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	busy := env.course(t, teacher, true, "")
	empty := env.course(t, teacher, true, "")

	for _, progress := range []int{100, 33} {
		student := env.actor(t, "Student", models.RoleStudent)
		enrollment := env.enroll(t, student, busy.ID)
		enrollment.Progress = progress
		require.NoError(t, env.enrollments.Update(ctx, &enrollment))
	}

	report, err := env.analyticsService(nil, time.Minute).CourseAnalytics(ctx)
	require.NoError(t, err)
	require.Len(t, report.Courses, 2)

	byID := map[uint]int{}
	for i, course := range report.Courses {
		byID[course.ID] = i
		require.Equal(t, "Teacher", course.Teacher.Name)
	}
	busyRow := report.Courses[byID[busy.ID]]
	require.Equal(t, 2, busyRow.StudentCount)
	require.Equal(t, 67, busyRow.AverageProgress)
	require.Len(t, busyRow.Students, 2)
	require.Equal(t, "Student", busyRow.Students[0].Name)

	emptyRow := report.Courses[byID[empty.ID]]
	require.Zero(t, emptyRow.StudentCount)
	require.Zero(t, emptyRow.AverageProgress)
	require.Empty(t, emptyRow.Students)
}

func TestAdminStatsUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := env.analyticsService(client, time.Minute)
	env.actor(t, "Student", models.RoleStudent)

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, int64(1), first.TotalStudents)
	require.True(t, mr.Exists(statsCacheKey))

	env.actor(t, "Another", models.RoleStudent)

	cached, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, int64(1), cached.TotalStudents)

	mr.FastForward(2 * time.Minute)

	fresh, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.False(t, fresh.CacheHit)
	require.Equal(t, int64(2), fresh.TotalStudents)
}

func TestAdminAnalyticsIgnoresCorruptCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set(courseAnalyticsCacheKey, "{not json"))

	report, err := env.analyticsService(client, time.Minute).CourseAnalytics(ctx)
	require.NoError(t, err)
	require.False(t, report.CacheHit)
	require.Empty(t, report.Courses)
}
