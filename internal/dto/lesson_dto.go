package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// AssignmentFields carries the graded-work settings of a lesson.
type AssignmentFields struct {
	DueDate     *string  `json:"due_date" validate:"omitempty"`
	MaxGrade    *float64 `json:"max_grade" validate:"omitempty,gt=0"`
	Description *string  `json:"assignment_description" validate:"omitempty,max=5000"`
}

// LessonCreateRequest is the payload for creating a lesson.
type LessonCreateRequest struct {
	CourseID     uint     `json:"course_id" validate:"required,gt=0"`
	Title        string   `json:"title" validate:"required,min=1,max=255"`
	Content      string   `json:"content"`
	Order        int      `json:"order" validate:"gte=0"`
	IsPublished  *bool    `json:"is_published"`
	Links        []string `json:"links" validate:"omitempty,dive,url"`
	IsAssignment bool     `json:"is_assignment"`
	AssignmentFields
}

// LessonUpdateRequest is the partial payload for updating a lesson.
type LessonUpdateRequest struct {
	Title        *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Content      *string   `json:"content"`
	Order        *int      `json:"order" validate:"omitempty,gte=0"`
	IsPublished  *bool     `json:"is_published"`
	Links        *[]string `json:"links" validate:"omitempty,dive,url"`
	IsAssignment *bool     `json:"is_assignment"`
	AssignmentFields
}

// LessonResponse is the serialized representation of a lesson.
type LessonResponse struct {
	ID           uint                      `json:"id"`
	CourseID     uint                      `json:"course_id"`
	Title        string                    `json:"title"`
	Content      string                    `json:"content"`
	Order        int                       `json:"order"`
	IsPublished  bool                      `json:"is_published"`
	Links        []string                  `json:"links"`
	Attachments  []models.LessonAttachment `json:"attachments"`
	IsAssignment bool                      `json:"is_assignment"`
	AssignmentID *uint                     `json:"assignment_id,omitempty"`
	DueDate      *time.Time                `json:"due_date,omitempty"`
	MaxGrade     *float64                  `json:"max_grade,omitempty"`
	Completed    *bool                     `json:"completed,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// NewLessonResponse converts a model, with its assignment preloaded, into a DTO.
func NewLessonResponse(lesson models.Lesson) LessonResponse {
	response := LessonResponse{
		ID:           lesson.ID,
		CourseID:     lesson.CourseID,
		Title:        lesson.Title,
		Content:      lesson.Content,
		Order:        lesson.Position,
		IsPublished:  lesson.IsPublished,
		Links:        lesson.LinkList(),
		Attachments:  lesson.AttachmentList(),
		IsAssignment: lesson.IsAssignment(),
		CreatedAt:    lesson.CreatedAt,
		UpdatedAt:    lesson.UpdatedAt,
	}

	if lesson.IsAssignment() {
		id := lesson.Assignment.ID
		due := lesson.Assignment.DueDate
		maxGrade := lesson.Assignment.MaxGrade
		response.AssignmentID = &id
		response.DueDate = &due
		response.MaxGrade = &maxGrade
	}

	return response
}

// NewLessonResponseSlice converts lessons into DTOs.
func NewLessonResponseSlice(lessons []models.Lesson) []LessonResponse {
	responses := make([]LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, NewLessonResponse(lesson))
	}
	return responses
}
