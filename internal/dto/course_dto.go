package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// CourseCreateRequest is the payload for creating a course.
type CourseCreateRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=100"`
	Description   string `json:"description" validate:"max=1000"`
	IsPublic      *bool  `json:"is_public"`
	EnrollmentKey string `json:"enrollment_key" validate:"max=128"`
	Category      string `json:"category" validate:"omitempty,oneof=Backend Frontend Data Security DevOps Mobile Development Business Design Marketing Other"`
	Level         string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Duration      string `json:"duration" validate:"max=64"`
}

// CourseUpdateRequest is the partial payload for updating a course.
type CourseUpdateRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=3,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=1000"`
	IsPublic      *bool   `json:"is_public"`
	EnrollmentKey *string `json:"enrollment_key" validate:"omitempty,max=128"`
	Category      *string `json:"category" validate:"omitempty,oneof=Backend Frontend Data Security DevOps Mobile Development Business Design Marketing Other"`
	Level         *string `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Duration      *string `json:"duration" validate:"omitempty,max=64"`
}

// CourseListFilter narrows the catalogue.
type CourseListFilter struct {
	Search    string `query:"search"`
	TeacherID uint   `query:"teacher_id"`
	Category  string `query:"category"`
	Level     string `query:"level"`
	IsPublic  *bool  `query:"is_public"`
}

// EnrollRequest carries the optional enrollment key.
type EnrollRequest struct {
	EnrollmentKey string `json:"enrollment_key"`
}

// CourseResponse is the serialized representation of a course.
type CourseResponse struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Teacher       UserLite  `json:"teacher"`
	IsPublic      bool      `json:"is_public"`
	RequiresKey   bool      `json:"requires_key"`
	EnrollmentKey string    `json:"enrollment_key,omitempty"`
	Category      string    `json:"category"`
	Level         string    `json:"level"`
	Duration      string    `json:"duration"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewCourseResponse converts a model into a DTO. The enrollment key is only
// included when revealKey is set.
func NewCourseResponse(course models.Course, revealKey bool) CourseResponse {
	response := CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Teacher:     NewUserLite(course.Teacher),
		IsPublic:    course.IsPublic,
		RequiresKey: !course.IsPublic && course.EnrollmentKey != "",
		Category:    course.Category,
		Level:       course.Level,
		Duration:    course.Duration,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
	if response.Teacher.ID == 0 {
		response.Teacher.ID = course.TeacherID
	}
	if revealKey {
		response.EnrollmentKey = course.EnrollmentKey
	}
	return response
}

// EnrollmentResponse is the serialized representation of an enrollment.
type EnrollmentResponse struct {
	ID               uint       `json:"id"`
	StudentID        uint       `json:"student_id"`
	CourseID         uint       `json:"course_id"`
	Progress         int        `json:"progress"`
	Status           string     `json:"status"`
	CompletedLessons []uint     `json:"completed_lessons"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// NewEnrollmentResponse converts a model into a DTO.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:               enrollment.ID,
		StudentID:        enrollment.StudentID,
		CourseID:         enrollment.CourseID,
		Progress:         enrollment.Progress,
		Status:           enrollment.Status,
		CompletedLessons: enrollment.CompletedLessonIDs(),
		EnrolledAt:       enrollment.EnrolledAt,
		CompletedAt:      enrollment.CompletedAt,
	}
}

// LessonCompletionResponse is returned after toggling a lesson.
type LessonCompletionResponse struct {
	LessonID   uint               `json:"lesson_id"`
	Completed  bool               `json:"completed"`
	Enrollment EnrollmentResponse `json:"enrollment"`
}

// EnrolledCourseResponse is one entry of a student's course list.
type EnrolledCourseResponse struct {
	Course       CourseResponse `json:"course"`
	EnrollmentID uint           `json:"enrollment_id"`
	Progress     int            `json:"progress"`
	Status       string         `json:"status"`
	EnrolledAt   time.Time      `json:"enrolled_at"`
}

// MyCoursesResponse is the role-specific course list of the caller.
type MyCoursesResponse struct {
	Role     string                   `json:"role"`
	Teaching []CourseResponse         `json:"teaching,omitempty"`
	Enrolled []EnrolledCourseResponse `json:"enrolled,omitempty"`
}

// RosterEntry is one enrolled student of a course.
type RosterEntry struct {
	EnrollmentID uint       `json:"enrollment_id"`
	Student      UserLite   `json:"student"`
	Progress     int        `json:"progress"`
	Status       string     `json:"status"`
	EnrolledAt   time.Time  `json:"enrolled_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// NewRosterEntry converts an enrollment with its student preloaded.
func NewRosterEntry(enrollment models.Enrollment) RosterEntry {
	student := NewUserLite(enrollment.Student)
	if student.ID == 0 {
		student.ID = enrollment.StudentID
	}
	return RosterEntry{
		EnrollmentID: enrollment.ID,
		Student:      student,
		Progress:     enrollment.Progress,
		Status:       enrollment.Status,
		EnrolledAt:   enrollment.EnrolledAt,
		CompletedAt:  enrollment.CompletedAt,
	}
}
