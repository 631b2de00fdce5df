package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

func (e *testEnv) gradeService() GradeService {
	return NewGradeService(e.assignments, e.submissions, e.courses, e.enrollments, testLogger())
}

func TestGradeProjectionStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	env.enroll(t, student, course.ID)

	graded := env.assignment(t, env.lesson(t, course.ID, 0, true), now.Add(time.Hour))
	missing := env.assignment(t, env.lesson(t, course.ID, 1, true), now.Add(2*time.Hour))
	late := env.assignment(t, env.lesson(t, course.ID, 2, true), now.Add(3*time.Hour))

	submissions := env.submissionService(now)
	_, err := submissions.Submit(ctx, student, graded.ID, dto.SubmissionCreateRequest{Content: "on time"}, nil)
	require.NoError(t, err)
	_, err = submissions.Grade(ctx, teacher, graded.ID, dto.GradeRequest{StudentID: student.ID, Grade: ptr(90.0), Feedback: ptr("Great")})
	require.NoError(t, err)

	lateSubmission := models.Submission{
		AssignmentID: late.ID,
		StudentID:    student.ID,
		Content:      "sorry",
		SubmittedAt:  now.Add(4 * time.Hour),
	}
	require.NoError(t, env.submissions.Create(ctx, &lateSubmission))

	book, err := env.gradeService().StudentCourse(ctx, student, student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, book.Grades, 3)

	byAssignment := map[uint]dto.GradeEntry{}
	for _, entry := range book.Grades {
		byAssignment[entry.AssignmentID] = entry
	}

	require.Equal(t, models.GradeStatusGraded, byAssignment[graded.ID].Status)
	require.Equal(t, 90.0, *byAssignment[graded.ID].Grade)
	require.Equal(t, "Great", byAssignment[graded.ID].Feedback)
	require.False(t, byAssignment[graded.ID].IsLate)

	require.Equal(t, models.GradeStatusNotSubmitted, byAssignment[missing.ID].Status)
	require.Nil(t, byAssignment[missing.ID].Grade)
	require.Nil(t, byAssignment[missing.ID].SubmittedAt)

	require.Equal(t, models.GradeStatusPending, byAssignment[late.ID].Status)
	require.True(t, byAssignment[late.ID].IsLate)
}

func TestGradeStudentCourseAccess(t *testing.T) {
	env := newTestEnv(t)
	svc := env.gradeService()
	ctx := context.Background()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	other := env.actor(t, "Other", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	peer := env.actor(t, "Peer", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	env.enroll(t, student, course.ID)

	_, err := svc.StudentCourse(ctx, peer, student.ID, course.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.StudentCourse(ctx, other, student.ID, course.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.StudentCourse(ctx, peer, peer.ID, course.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)

	book, err := svc.StudentCourse(ctx, teacher, student.ID, course.ID)
	require.NoError(t, err)
	require.Empty(t, book.Grades)
	require.Equal(t, models.EnrollmentActive, book.Status)
}

func TestGradebookAndCourseGrades(t *testing.T) {
	env := newTestEnv(t)
	svc := env.gradeService()
	ctx := context.Background()
	now := time.Now()
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	alice := env.actor(t, "Alice", models.RoleStudent)
	bob := env.actor(t, "Bob", models.RoleStudent)
	first := env.course(t, teacher, true, "")
	second := env.course(t, teacher, true, "")
	env.enroll(t, alice, first.ID)
	env.enroll(t, alice, second.ID)
	env.enroll(t, bob, first.ID)

	assignment := env.assignment(t, env.lesson(t, first.ID, 0, true), now.Add(time.Hour))
	_, err := env.submissionService(now).Submit(ctx, alice, assignment.ID, dto.SubmissionCreateRequest{Content: "done"}, nil)
	require.NoError(t, err)

	gradebook, err := svc.Gradebook(ctx, alice)
	require.NoError(t, err)
	require.Len(t, gradebook, 2)
	total := 0
	for _, course := range gradebook {
		total += len(course.Grades)
	}
	require.Equal(t, 1, total)

	_, err = svc.Gradebook(ctx, teacher)
	require.ErrorIs(t, err, ErrForbidden)

	grades, err := svc.Course(ctx, teacher, first.ID)
	require.NoError(t, err)
	require.Len(t, grades.Assignments, 1)
	require.Len(t, grades.Students, 2)
	statuses := map[string]string{}
	for _, student := range grades.Students {
		require.Len(t, student.Grades, 1)
		statuses[student.Student.Name] = student.Grades[0].Status
	}
	require.Equal(t, models.GradeStatusPending, statuses["Alice"])
	require.Equal(t, models.GradeStatusNotSubmitted, statuses["Bob"])

	_, err = svc.Course(ctx, alice, first.ID)
	require.ErrorIs(t, err, ErrForbidden)
}
