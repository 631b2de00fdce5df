package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

func newTestCourseService(env *testEnv) CourseService {
	return NewCourseService(env.courses, env.enrollments, env.validate, testLogger())
}

func TestCourseServiceCreateAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)
	teacher := env.actor(t, "Teacher", models.RoleTeacher)

	course, err := svc.Create(context.Background(), teacher, dto.CourseCreateRequest{
		Title:       "Go Basics",
		Description: `<p>Intro</p><script>alert(1)</script>`,
	})
	require.NoError(t, err)
	require.True(t, course.IsPublic)
	require.Equal(t, models.CategoryOther, course.Category)
	require.Equal(t, models.LevelBeginner, course.Level)
	require.Equal(t, "<p>Intro</p>", course.Description)
	require.Equal(t, teacher.ID, course.Teacher.ID)
	require.Equal(t, "Teacher", course.Teacher.Name)
}

func TestCourseServiceCreateRequiresTeacher(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)

	for _, role := range []string{models.RoleStudent, models.RoleAdmin} {
		actor := env.actor(t, role, role)
		_, err := svc.Create(context.Background(), actor, dto.CourseCreateRequest{Title: "Nope"})
		require.ErrorIs(t, err, ErrForbidden, role)
	}
}

func TestCourseServiceEnrollmentKeyOnlyVisibleToManagers(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	admin := env.actor(t, "Admin", models.RoleAdmin)

	created, err := svc.Create(ctx, teacher, dto.CourseCreateRequest{Title: "Secret", IsPublic: ptr(false), EnrollmentKey: "ABC123"})
	require.NoError(t, err)
	require.Equal(t, "ABC123", created.EnrollmentKey)

	asStudent, err := svc.Get(ctx, student, created.ID)
	require.NoError(t, err)
	require.Empty(t, asStudent.EnrollmentKey)
	require.True(t, asStudent.RequiresKey)

	asAdmin, err := svc.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	require.Equal(t, "ABC123", asAdmin.EnrollmentKey)
}

func TestCourseServiceListDefaultsToPublic(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)

	env.course(t, teacher, true, "")
	env.course(t, teacher, false, "KEY")

	public, err := svc.List(ctx, teacher, dto.CourseListFilter{})
	require.NoError(t, err)
	require.Len(t, public, 1)
	require.True(t, public[0].IsPublic)

	private, err := svc.List(ctx, teacher, dto.CourseListFilter{IsPublic: ptr(false)})
	require.NoError(t, err)
	require.Len(t, private, 1)
	require.False(t, private[0].IsPublic)
}

func TestCourseServiceUpdateRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)
	ctx := context.Background()
	owner := env.actor(t, "Owner", models.RoleTeacher)
	other := env.actor(t, "Other", models.RoleTeacher)
	course := env.course(t, owner, true, "")

	_, err := svc.Update(ctx, other, course.ID, dto.CourseUpdateRequest{Title: ptr("Hijacked")})
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(ctx, owner, course.ID, dto.CourseUpdateRequest{Title: ptr("Renamed"), Level: ptr(models.LevelAdvanced)})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, models.LevelAdvanced, updated.Level)

	_, err = svc.Update(ctx, owner, 9999, dto.CourseUpdateRequest{Title: ptr("Missing")})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceDeleteRemovesEnrollments(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)
	ctx := context.Background()
	owner := env.actor(t, "Owner", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, owner, true, "")
	env.enroll(t, student, course.ID)

	require.ErrorIs(t, svc.Delete(ctx, student, course.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, course.ID))

	exists, err := env.enrollments.Exists(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestCourseServiceMyCoursesByRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newTestCourseService(env)
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	admin := env.actor(t, "Admin", models.RoleAdmin)
	course := env.course(t, teacher, true, "")
	enrollment := env.enroll(t, student, course.ID)

	teaching, err := svc.MyCourses(ctx, teacher)
	require.NoError(t, err)
	require.Len(t, teaching.Teaching, 1)
	require.Empty(t, teaching.Enrolled)

	enrolled, err := svc.MyCourses(ctx, student)
	require.NoError(t, err)
	require.Len(t, enrolled.Enrolled, 1)
	require.Equal(t, enrollment.ID, enrolled.Enrolled[0].EnrollmentID)
	require.Equal(t, course.ID, enrolled.Enrolled[0].Course.ID)
	require.Equal(t, models.EnrollmentActive, enrolled.Enrolled[0].Status)

	_, err = svc.MyCourses(ctx, admin)
	require.ErrorIs(t, err, ErrForbidden)
}
