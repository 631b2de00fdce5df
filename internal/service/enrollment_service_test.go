package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

func TestEnrollmentServiceEnrollPublicCourse(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")

	enrollment, err := svc.Enroll(context.Background(), student, course.ID, dto.EnrollRequest{})
	require.NoError(t, err)
	require.Equal(t, 0, enrollment.Progress)
	require.Equal(t, models.EnrollmentActive, enrollment.Status)
	require.Empty(t, enrollment.CompletedLessons)
	require.Equal(t, []string{EventEnrollmentCreated}, env.events.names())
}

func TestEnrollmentServiceEnrollmentKey(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, false, "ABC123")

	_, err := svc.Enroll(ctx, student, course.ID, dto.EnrollRequest{EnrollmentKey: "WRONG"})
	require.ErrorIs(t, err, ErrInvalidEnrollmentKey)

	_, err = svc.Enroll(ctx, student, course.ID, dto.EnrollRequest{EnrollmentKey: "ABC123"})
	require.NoError(t, err)

	_, err = svc.Enroll(ctx, student, course.ID, dto.EnrollRequest{EnrollmentKey: "ABC123"})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollmentServiceEnrollRequiresStudent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	course := env.course(t, teacher, true, "")

	_, err := svc.Enroll(context.Background(), teacher, course.ID, dto.EnrollRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	student := env.actor(t, "Student", models.RoleStudent)
	_, err = svc.Enroll(context.Background(), student, 9999, dto.EnrollRequest{})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestEnrollmentServiceProgressReachesCompletion(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")

	lessons := make([]models.Lesson, 0, 4)
	for i := 0; i < 4; i++ {
		lessons = append(lessons, env.lesson(t, course.ID, i, true))
	}
	_, err := svc.Enroll(ctx, student, course.ID, dto.EnrollRequest{})
	require.NoError(t, err)

	var result dto.LessonCompletionResponse
	for _, lesson := range lessons[:3] {
		result, err = svc.ToggleLessonCompletion(ctx, student, lesson.ID)
		require.NoError(t, err)
		require.True(t, result.Completed)
	}
	require.Equal(t, 75, result.Enrollment.Progress)
	require.Equal(t, models.EnrollmentActive, result.Enrollment.Status)
	require.Nil(t, result.Enrollment.CompletedAt)

	result, err = svc.ToggleLessonCompletion(ctx, student, lessons[3].ID)
	require.NoError(t, err)
	require.Equal(t, 100, result.Enrollment.Progress)
	require.Equal(t, models.EnrollmentCompleted, result.Enrollment.Status)
	require.NotNil(t, result.Enrollment.CompletedAt)
	require.Contains(t, env.events.names(), EventEnrollmentCompleted)

	result, err = svc.ToggleLessonCompletion(ctx, student, lessons[3].ID)
	require.NoError(t, err)
	require.False(t, result.Completed)
	require.Equal(t, 75, result.Enrollment.Progress)
	require.Equal(t, models.EnrollmentActive, result.Enrollment.Status)
	require.Nil(t, result.Enrollment.CompletedAt)
}

func TestEnrollmentServiceToggleRequiresOpenEnrollment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	lesson := env.lesson(t, course.ID, 0, true)

	_, err := svc.ToggleLessonCompletion(ctx, student, lesson.ID)
	require.ErrorIs(t, err, ErrForbidden)

	enrollment := env.enroll(t, student, course.ID)
	enrollment.Status = models.EnrollmentDropped
	require.NoError(t, env.enrollments.Update(ctx, &enrollment))

	_, err = svc.ToggleLessonCompletion(ctx, student, lesson.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestEnrollmentServiceUnpublishedLessonIsNotToggleable(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	draft := env.lesson(t, course.ID, 0, false)
	env.enroll(t, student, course.ID)

	_, err := svc.ToggleLessonCompletion(context.Background(), student, draft.ID)
	require.ErrorIs(t, err, ErrLessonNotFound)
}

func TestEnrollmentServiceRefreshFollowsPublishedLessons(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	first := env.lesson(t, course.ID, 0, true)
	env.enroll(t, student, course.ID)

	result, err := svc.ToggleLessonCompletion(ctx, student, first.ID)
	require.NoError(t, err)
	require.Equal(t, 100, result.Enrollment.Progress)

	env.lesson(t, course.ID, 1, true)
	require.NoError(t, svc.RefreshCourseProgress(ctx, course.ID))

	enrollment, err := svc.MyEnrollment(ctx, student, course.ID)
	require.NoError(t, err)
	require.Equal(t, 50, enrollment.Progress)
	require.Equal(t, models.EnrollmentActive, enrollment.Status)
}

func TestEnrollmentServiceRosterRequiresManager(t *testing.T) {
	env := newTestEnv(t)
	svc := env.enrollmentService()
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	env.enroll(t, student, course.ID)

	_, err := svc.Roster(ctx, student, course.ID)
	require.ErrorIs(t, err, ErrForbidden)

	roster, err := svc.Roster(ctx, teacher, course.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, "Student", roster[0].Student.Name)

	_, err = svc.MyEnrollment(ctx, teacher, course.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
