package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// SubmissionCreateRequest carries a student's text answer and/or a file URL
// obtained from the upload endpoint.
type SubmissionCreateRequest struct {
	Content string `json:"content" form:"content" validate:"max=20000"`
	FileURL string `json:"file_url" form:"file_url" validate:"omitempty,max=512"`
}

// GradeRequest assigns a grade to a student's submission.
type GradeRequest struct {
	StudentID uint     `json:"student_id" validate:"required,gt=0"`
	Grade     *float64 `json:"grade" validate:"required"`
	Feedback  *string  `json:"feedback" validate:"omitempty,max=5000"`
}

// CommentRequest appends a comment to a submission. StudentID selects the
// submission for teachers and admins; students always comment on their own.
type CommentRequest struct {
	StudentID uint   `json:"student_id"`
	Content   string `json:"content" validate:"required,min=1,max=1000"`
}

// CommentResponse is the serialized representation of a comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	Author    UserLite  `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint              `json:"id"`
	AssignmentID uint              `json:"assignment_id"`
	Student      UserLite          `json:"student"`
	Content      string            `json:"content"`
	FileURL      string            `json:"file_url"`
	Status       string            `json:"status"`
	Grade        *float64          `json:"grade"`
	Feedback     string            `json:"feedback"`
	GradedBy     *uint             `json:"graded_by"`
	SubmittedAt  time.Time         `json:"submitted_at"`
	GradedAt     *time.Time        `json:"graded_at"`
	Comments     []CommentResponse `json:"comments"`
	Assignment   *AssignmentLite   `json:"assignment,omitempty"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID       uint      `json:"id"`
	CourseID uint      `json:"course_id"`
	Title    string    `json:"title"`
	DueDate  time.Time `json:"due_date"`
	MaxGrade float64   `json:"max_grade"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	student := NewUserLite(model.Student)
	if student.ID == 0 {
		student.ID = model.StudentID
	}

	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		Student:      student,
		Content:      model.Content,
		FileURL:      model.FileURL,
		Status:       model.Status(),
		Grade:        model.Grade,
		Feedback:     model.Feedback,
		GradedBy:     model.GradedBy,
		SubmittedAt:  model.SubmittedAt,
		GradedAt:     model.GradedAt,
		Comments:     make([]CommentResponse, 0, len(model.Comments)),
	}

	for _, comment := range model.Comments {
		author := NewUserLite(comment.Author)
		if author.ID == 0 {
			author.ID = comment.AuthorID
		}
		response.Comments = append(response.Comments, CommentResponse{
			ID:        comment.ID,
			Author:    author,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		})
	}

	if model.Assignment.ID != 0 {
		response.Assignment = &AssignmentLite{
			ID:       model.Assignment.ID,
			CourseID: model.Assignment.CourseID,
			Title:    model.Assignment.Title,
			DueDate:  model.Assignment.DueDate,
			MaxGrade: model.Assignment.MaxGrade,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, submission := range items {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
