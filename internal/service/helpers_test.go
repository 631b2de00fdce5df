package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/database"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type recordedEvent struct {
	name string
	data interface{}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Publish(_ context.Context, event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{name: event, data: data})
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, event := range r.events {
		names = append(names, event.name)
	}
	return names
}

type testEnv struct {
	db          *gorm.DB
	validate    *validator.Validate
	events      *eventRecorder
	users       repository.UserRepository
	courses     repository.CourseRepository
	lessons     repository.LessonRepository
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	quizzes     repository.QuizRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.ConnectSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return &testEnv{
		db:          db,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		events:      &eventRecorder{},
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		lessons:     repository.NewLessonRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		assignments: repository.NewAssignmentRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		quizzes:     repository.NewQuizRepository(db),
	}
}

func (e *testEnv) actor(t *testing.T, name, role string) Actor {
	t.Helper()
	hash, err := hashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: hash, Role: role}
	require.NoError(t, e.users.Create(context.Background(), &user))
	return Actor{ID: user.ID, Role: role}
}

func (e *testEnv) course(t *testing.T, teacher Actor, public bool, key string) models.Course {
	t.Helper()
	course := models.Course{
		Title:         "Course " + uuid.NewString()[:6],
		TeacherID:     teacher.ID,
		IsPublic:      public,
		EnrollmentKey: key,
		Category:      models.CategoryBackend,
		Level:         models.LevelBeginner,
	}
	require.NoError(t, e.courses.Create(context.Background(), &course))
	return course
}

func (e *testEnv) lesson(t *testing.T, courseID uint, position int, published bool) models.Lesson {
	t.Helper()
	lesson := models.Lesson{CourseID: courseID, Title: "Lesson", Position: position, IsPublished: published}
	require.NoError(t, e.lessons.Create(context.Background(), &lesson))
	return lesson
}

func (e *testEnv) enroll(t *testing.T, student Actor, courseID uint) models.Enrollment {
	t.Helper()
	enrollment := models.NewEnrollment(student.ID, courseID, time.Now())
	require.NoError(t, e.enrollments.Create(context.Background(), &enrollment))
	return enrollment
}

func (e *testEnv) enrollmentService() *enrollmentService {
	return NewEnrollmentService(e.enrollments, e.courses, e.lessons, e.events, testLogger()).(*enrollmentService)
}

func (e *testEnv) assignmentService() AssignmentService {
	return NewAssignmentService(e.assignments, e.lessons, e.courses, e.enrollments, e.submissions, e.validate, testLogger())
}

func (e *testEnv) lessonService(uploads UploadService) LessonService {
	return NewLessonService(e.lessons, e.courses, e.enrollments, e.assignmentService(), e.enrollmentService(), uploads, e.validate, testLogger())
}

func (e *testEnv) submissionService(now time.Time) *submissionService {
	svc := NewSubmissionService(e.submissions, e.assignments, e.courses, e.enrollments, nil, e.events, e.validate, testLogger()).(*submissionService)
	svc.now = func() time.Time { return now }
	return svc
}

func ptr[T any](v T) *T {
	return &v
}
