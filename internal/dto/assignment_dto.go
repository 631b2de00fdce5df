package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// AssignmentCreateRequest marks a lesson as an assignment.
type AssignmentCreateRequest struct {
	LessonID    uint     `json:"lesson_id" validate:"required,gt=0"`
	DueDate     string   `json:"due_date" validate:"required"`
	MaxGrade    *float64 `json:"max_grade" validate:"omitempty,gt=0"`
	Description string   `json:"description" validate:"max=5000"`
}

// AssignmentUpdateRequest edits the grading settings of an assignment.
type AssignmentUpdateRequest struct {
	DueDate     *string  `json:"due_date" validate:"omitempty"`
	MaxGrade    *float64 `json:"max_grade" validate:"omitempty,gt=0"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID           uint                 `json:"id"`
	LessonID     uint                 `json:"lesson_id"`
	CourseID     uint                 `json:"course_id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	DueDate      time.Time            `json:"due_date"`
	MaxGrade     float64              `json:"max_grade"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	MySubmission *SubmissionResponse  `json:"my_submission,omitempty"`
	Submissions  []SubmissionResponse `json:"submissions,omitempty"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		LessonID:    model.LessonID,
		CourseID:    model.CourseID,
		Title:       model.Title,
		Description: model.Description,
		DueDate:     model.DueDate,
		MaxGrade:    model.MaxGrade,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}

// AssignmentOverview summarizes submission state for one assignment.
type AssignmentOverview struct {
	Assignment     AssignmentResponse `json:"assignment"`
	EnrolledCount  int                `json:"enrolled_count"`
	SubmittedCount int                `json:"submitted_count"`
	GradedCount    int                `json:"graded_count"`
	PendingCount   int                `json:"pending_count"`
	MissingCount   int                `json:"missing_count"`
	AverageGrade   *float64           `json:"average_grade"`
}
