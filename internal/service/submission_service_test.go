package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
)

type submissionFixture struct {
	env        *testEnv
	teacher    Actor
	student    Actor
	course     models.Course
	assignment models.Assignment
}

func newSubmissionFixture(t *testing.T, due time.Time) submissionFixture {
	t.Helper()
	env := newTestEnv(t)
	teacher := env.actor(t, "Teacher", models.RoleTeacher)
	student := env.actor(t, "Student", models.RoleStudent)
	course := env.course(t, teacher, true, "")
	assignment := env.assignment(t, env.lesson(t, course.ID, 0, true), due)
	env.enroll(t, student, course.ID)
	return submissionFixture{env: env, teacher: teacher, student: student, course: course, assignment: assignment}
}

func TestSubmissionSubmitAndGrade(t *testing.T) {
	now := time.Now()
	fx := newSubmissionFixture(t, now.Add(24*time.Hour))
	svc := fx.env.submissionService(now)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "<p>My answer</p>"}, nil)
	require.NoError(t, err)
	require.Equal(t, "<p>My answer</p>", submitted.Content)
	require.Equal(t, models.GradeStatusPending, submitted.Status)
	require.Equal(t, "Student", submitted.Student.Name)

	_, err = svc.Submit(ctx, fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "again"}, nil)
	require.ErrorIs(t, err, ErrAlreadySubmitted)

	graded, err := svc.Grade(ctx, fx.teacher, fx.assignment.ID, dto.GradeRequest{
		StudentID: fx.student.ID,
		Grade:     ptr(85.0),
		Feedback:  ptr("Good <b>work</b>"),
	})
	require.NoError(t, err)
	require.Equal(t, models.GradeStatusGraded, graded.Status)
	require.Equal(t, 85.0, *graded.Grade)
	require.Equal(t, "Good work", graded.Feedback)
	require.Equal(t, fx.teacher.ID, *graded.GradedBy)
	require.NotNil(t, graded.GradedAt)

	_, err = svc.Grade(ctx, fx.teacher, fx.assignment.ID, dto.GradeRequest{StudentID: fx.student.ID, Grade: ptr(150.0)})
	require.ErrorIs(t, err, ErrGradeOutOfRange)

	stored, err := fx.env.submissions.Get(ctx, fx.assignment.ID, fx.student.ID)
	require.NoError(t, err)
	require.Equal(t, 85.0, *stored.Grade)

	require.Equal(t, []string{EventSubmissionCreated, EventSubmissionGraded}, fx.env.events.names())
}

func TestSubmissionRejectsAfterDeadline(t *testing.T) {
	due := time.Now().Add(-time.Hour)
	fx := newSubmissionFixture(t, due)
	svc := fx.env.submissionService(time.Now())

	_, err := svc.Submit(context.Background(), fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "late"}, nil)
	require.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestSubmissionRejectsEmptyAnswer(t *testing.T) {
	fx := newSubmissionFixture(t, time.Now().Add(time.Hour))
	svc := fx.env.submissionService(time.Now())

	_, err := svc.Submit(context.Background(), fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "<script>x</script>"}, nil)
	require.ErrorIs(t, err, ErrEmptySubmission)
}

func TestSubmissionAccessRules(t *testing.T) {
	fx := newSubmissionFixture(t, time.Now().Add(time.Hour))
	svc := fx.env.submissionService(time.Now())
	ctx := context.Background()
	outsider := fx.env.actor(t, "Outsider", models.RoleStudent)
	otherTeacher := fx.env.actor(t, "Other", models.RoleTeacher)

	_, err := svc.Submit(ctx, outsider, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "hi"}, nil)
	require.ErrorIs(t, err, ErrNotEnrolled)

	_, err = svc.Submit(ctx, fx.teacher, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "hi"}, nil)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Submit(ctx, fx.student, 9999, dto.SubmissionCreateRequest{Content: "hi"}, nil)
	require.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = svc.Submit(ctx, fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "hi"}, nil)
	require.NoError(t, err)

	_, err = svc.Grade(ctx, otherTeacher, fx.assignment.ID, dto.GradeRequest{StudentID: fx.student.ID, Grade: ptr(10.0)})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Grade(ctx, fx.teacher, fx.assignment.ID, dto.GradeRequest{StudentID: outsider.ID, Grade: ptr(10.0)})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmissionComments(t *testing.T) {
	fx := newSubmissionFixture(t, time.Now().Add(time.Hour))
	svc := fx.env.submissionService(time.Now())
	ctx := context.Background()

	_, err := svc.Submit(ctx, fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{FileURL: "/uploads/report.pdf"}, nil)
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, fx.student, fx.assignment.ID, dto.CommentRequest{Content: "Please check page 2"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, fx.teacher, fx.assignment.ID, dto.CommentRequest{Content: "Looks fine"})
	require.ErrorIs(t, err, ErrInvalidInput)

	withComments, err := svc.AddComment(ctx, fx.teacher, fx.assignment.ID, dto.CommentRequest{StudentID: fx.student.ID, Content: "Looks <i>fine</i>"})
	require.NoError(t, err)
	require.Len(t, withComments.Comments, 2)
	require.Equal(t, "Please check page 2", withComments.Comments[0].Content)
	require.Equal(t, "Looks fine", withComments.Comments[1].Content)
	require.Equal(t, "Teacher", withComments.Comments[1].Author.Name)
}

func TestSubmissionListMine(t *testing.T) {
	fx := newSubmissionFixture(t, time.Now().Add(time.Hour))
	svc := fx.env.submissionService(time.Now())
	ctx := context.Background()

	_, err := svc.Submit(ctx, fx.student, fx.assignment.ID, dto.SubmissionCreateRequest{Content: "done"}, nil)
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, fx.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Assignment)
	require.Equal(t, fx.course.ID, mine[0].Assignment.CourseID)

	_, err = svc.ListMine(ctx, fx.teacher)
	require.ErrorIs(t, err, ErrForbidden)
}
