package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-lms-api/internal/dto"
)

func TestLessonMultipartCreate(t *testing.T) {
	app := newTestApp(t)
	_, teacherToken := app.register(t, "tess", "teacher")
	courseID := app.createCourse(t, teacherToken, map[string]interface{}{})

	req := multipartRequest(t, http.MethodPost, "/api/v1/lessons", map[string][]string{
		"course_id": {itoa(courseID)},
		"title":     {"Goroutines"},
		"content":   {"<p>Hello</p><script>alert(1)</script>"},
		"order":     {"2"},
		"links":     {"https://go.dev/tour", "https://go.dev/doc"},
	}, formFile{field: "files", name: "notes.txt", contents: []byte("channels and select")})
	resp := app.send(t, req, teacherToken)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope[dto.LessonResponse]
	decodeResponse(t, resp, &body)
	lesson := body.Data
	require.Equal(t, 2, lesson.Order)
	require.True(t, lesson.IsPublished)
	require.NotContains(t, lesson.Content, "script")
	require.Equal(t, []string{"https://go.dev/tour", "https://go.dev/doc"}, lesson.Links)
	require.Len(t, lesson.Attachments, 1)
	require.Equal(t, "text/plain", lesson.Attachments[0].MimeType)
	require.True(t, strings.HasPrefix(lesson.Attachments[0].URL, "/uploads/"))

	req = multipartRequest(t, http.MethodPut, "/api/v1/lessons/"+itoa(lesson.ID), map[string][]string{
		"title": {"Goroutines and channels"},
	}, formFile{field: "files", name: "slides.exe", contents: []byte("MZ")})
	resp = app.send(t, req, teacherToken)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = multipartRequest(t, http.MethodPost, "/api/v1/lessons", map[string][]string{
		"course_id": {itoa(courseID)},
		"title":     {"Homework"},
		"order":     {"three"},
	})
	resp = app.send(t, req, teacherToken)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLessonAssignmentFromForm(t *testing.T) {
	app := newTestApp(t)
	_, teacherToken := app.register(t, "tess", "teacher")
	courseID := app.createCourse(t, teacherToken, map[string]interface{}{})

	req := multipartRequest(t, http.MethodPost, "/api/v1/lessons", map[string][]string{
		"course_id":     {itoa(courseID)},
		"title":         {"Homework"},
		"is_assignment": {"true"},
	})
	resp := app.send(t, req, teacherToken)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	dueAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Minute)
	due := dueAt.Format("2006-01-02T15:04")
	req = multipartRequest(t, http.MethodPost, "/api/v1/lessons", map[string][]string{
		"course_id":              {itoa(courseID)},
		"title":                  {"Homework"},
		"is_assignment":          {"true"},
		"due_date":               {due},
		"max_grade":              {"50"},
		"assignment_description": {"Build a worker pool"},
	})
	resp = app.send(t, req, teacherToken)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body envelope[dto.LessonResponse]
	decodeResponse(t, resp, &body)
	require.True(t, body.Data.IsAssignment)
	require.NotNil(t, body.Data.AssignmentID)
	require.Equal(t, 50.0, *body.Data.MaxGrade)

	resp = app.do(t, http.MethodGet, "/api/v1/assignments/"+itoa(*body.Data.AssignmentID), teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var assignment envelope[dto.AssignmentResponse]
	decodeResponse(t, resp, &assignment)
	require.Equal(t, "Homework", assignment.Data.Title)
	require.Equal(t, "Build a worker pool", assignment.Data.Description)
	require.True(t, dueAt.Equal(assignment.Data.DueDate))
}

func TestLessonCompletionProgress(t *testing.T) {
	app := newTestApp(t)
	_, teacherToken := app.register(t, "tess", "teacher")
	_, studentToken := app.register(t, "sam", "student")
	courseID := app.createCourse(t, teacherToken, map[string]interface{}{})

	resp := app.do(t, http.MethodPost, "/api/v1/courses/"+itoa(courseID)+"/enroll", studentToken, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	lessonIDs := make([]uint, 0, 4)
	for i := 0; i < 4; i++ {
		lesson := app.createLesson(t, teacherToken, map[string]interface{}{
			"course_id": courseID,
			"title":     "Lesson " + itoa(uint(i+1)),
			"order":     i,
		})
		lessonIDs = append(lessonIDs, lesson.ID)
	}
	draft := app.createLesson(t, teacherToken, map[string]interface{}{
		"course_id": courseID, "title": "Draft", "order": 9, "is_published": false,
	})

	resp = app.do(t, http.MethodGet, "/api/v1/courses/"+itoa(courseID)+"/lessons", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed envelope[[]dto.LessonResponse]
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 4)

	resp = app.do(t, http.MethodGet, "/api/v1/lessons/"+itoa(draft.ID), studentToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var toggled envelope[dto.LessonCompletionResponse]
	for _, id := range lessonIDs[:3] {
		resp = app.do(t, http.MethodPost, "/api/v1/lessons/"+itoa(id)+"/complete", studentToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		decodeResponse(t, resp, &toggled)
		require.True(t, toggled.Data.Completed)
	}
	require.Equal(t, 75, toggled.Data.Enrollment.Progress)
	require.Equal(t, "active", toggled.Data.Enrollment.Status)

	resp = app.do(t, http.MethodPost, "/api/v1/lessons/"+itoa(lessonIDs[3])+"/complete", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &toggled)
	require.Equal(t, 100, toggled.Data.Enrollment.Progress)
	require.Equal(t, "completed", toggled.Data.Enrollment.Status)
	require.NotNil(t, toggled.Data.Enrollment.CompletedAt)

	resp = app.do(t, http.MethodPost, "/api/v1/lessons/"+itoa(lessonIDs[0])+"/complete", teacherToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = app.do(t, http.MethodDelete, "/api/v1/lessons/"+itoa(lessonIDs[3]), teacherToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/v1/courses/"+itoa(courseID)+"/enrollment", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var enrollment envelope[dto.EnrollmentResponse]
	decodeResponse(t, resp, &enrollment)
	require.Equal(t, 100, enrollment.Data.Progress)
}
