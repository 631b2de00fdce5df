package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/config"
	"github.com/noah-isme/gema-lms-api/internal/database"
	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/handler"
	"github.com/noah-isme/gema-lms-api/internal/middleware"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
	"github.com/noah-isme/gema-lms-api/internal/router"
	"github.com/noah-isme/gema-lms-api/internal/service"
	"github.com/noah-isme/gema-lms-api/pkg/storage"
)

type envelope[T any] struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *service.TokenIssuer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.ConnectSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := service.NewTokenIssuer("handler-secret", time.Hour)
	cfg := config.Config{
		AppName:            "GEMA LMS API",
		AppEnv:             "test",
		UploadPublicPrefix: "/uploads",
		UploadMaxMB:        1,
		AuthRateLimit:      100,
		AuthRateWindow:     time.Minute,
	}

	local, err := storage.NewLocal(afero.NewMemMapFs(), "/data/uploads", cfg.UploadPublicPrefix, logger)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	events := service.NoopEventPublisher{}

	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, lessonRepo, events, logger)
	uploadService := service.NewUploadService(local, repository.NewUploadRepository(db), cfg.UploadMaxMB, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, lessonRepo, courseRepo, enrollmentRepo, submissionRepo, validate, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(service.NewAuthService(userRepo, tokens, validate, logger), logger),
		UserHandler:       handler.NewUserHandler(service.NewUserService(userRepo, validate, logger), logger),
		CourseHandler:     handler.NewCourseHandler(service.NewCourseService(courseRepo, enrollmentRepo, validate, logger), enrollmentService, logger),
		LessonHandler:     handler.NewLessonHandler(service.NewLessonService(lessonRepo, courseRepo, enrollmentRepo, assignmentService, enrollmentService, uploadService, validate, logger), enrollmentService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(submissionRepo, assignmentRepo, courseRepo, enrollmentRepo, uploadService, events, validate, logger), logger),
		GradeHandler:      handler.NewGradeHandler(service.NewGradeService(assignmentRepo, submissionRepo, courseRepo, enrollmentRepo, logger), logger),
		QuizHandler:       handler.NewQuizHandler(service.NewQuizService(quizRepo, courseRepo, enrollmentRepo, events, validate, logger), logger),
		UploadHandler:     handler.NewUploadHandler(uploadService, logger),
		AdminAnalyticsHandler: handler.NewAdminAnalyticsHandler(
			service.NewAdminAnalyticsService(repository.NewAdminAnalyticsRepository(db), nil, 0, logger),
			logger,
		),
		JWTMiddleware: middleware.JWTProtected(tokens),
	})

	return &testApp{app: app, db: db, tokens: tokens}
}

// register signs a student or teacher up through the API and returns its token.
func (a *testApp) register(t *testing.T, name, role string) (dto.UserResponse, string) {
	t.Helper()

	resp := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "secret123",
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope[dto.AuthResponse]
	decodeResponse(t, resp, &body)
	return body.Data.User, body.Data.Token
}

// admin inserts an administrator directly, since sign-up never grants that role.
func (a *testApp) admin(t *testing.T) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: "Root", Email: "root@example.com", PasswordHash: string(hash), Role: models.RoleAdmin}
	require.NoError(t, a.db.Create(&user).Error)

	token, _, err := a.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return a.send(t, req, token)
}

func (a *testApp) send(t *testing.T, req *http.Request, token string) *http.Response {
	t.Helper()

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// createCourse creates a course as teacher and returns its id.
func (a *testApp) createCourse(t *testing.T, token string, payload map[string]interface{}) uint {
	t.Helper()

	if _, ok := payload["title"]; !ok {
		payload["title"] = "Go Fundamentals"
	}
	resp := a.do(t, http.MethodPost, "/api/v1/courses", token, payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope[dto.CourseResponse]
	decodeResponse(t, resp, &body)
	return body.Data.ID
}

// createLesson creates a published JSON lesson and returns its id.
func (a *testApp) createLesson(t *testing.T, token string, payload map[string]interface{}) dto.LessonResponse {
	t.Helper()

	resp := a.do(t, http.MethodPost, "/api/v1/lessons", token, payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope[dto.LessonResponse]
	decodeResponse(t, resp, &body)
	return body.Data
}

type formFile struct {
	field    string
	name     string
	contents []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string][]string, files ...formFile) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(key, value))
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = part.Write(file.contents)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
