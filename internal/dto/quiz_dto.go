package dto

import (
	"time"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// QuestionRequest describes one multiple-choice question.
type QuestionRequest struct {
	Text               string   `json:"text" validate:"required,min=1"`
	Options            []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOptionIndex int      `json:"correct_option_index" validate:"gte=0"`
	Points             *int     `json:"points" validate:"omitempty,gte=1"`
}

// QuizCreateRequest is the payload for creating a quiz.
type QuizCreateRequest struct {
	CourseID        uint              `json:"course_id" validate:"required,gt=0"`
	Title           string            `json:"title" validate:"required,min=1,max=255"`
	Description     string            `json:"description" validate:"max=5000"`
	TimeLimit       int               `json:"time_limit" validate:"gte=0"`
	PassingScore    *float64          `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	AttemptsAllowed *int              `json:"attempts_allowed" validate:"omitempty,gte=1"`
	IsPublished     bool              `json:"is_published"`
	Questions       []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuizUpdateRequest edits quiz settings. Questions are fixed once created.
type QuizUpdateRequest struct {
	Title           *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	TimeLimit       *int     `json:"time_limit" validate:"omitempty,gte=0"`
	PassingScore    *float64 `json:"passing_score" validate:"omitempty,gte=0,lte=100"`
	AttemptsAllowed *int     `json:"attempts_allowed" validate:"omitempty,gte=1"`
	IsPublished     *bool    `json:"is_published"`
}

// QuizSubmitRequest carries the chosen option index per question.
type QuizSubmitRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

// QuestionResponse is a question as shown to a client. The correct index is
// omitted for students.
type QuestionResponse struct {
	ID                 uint     `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	Points             int      `json:"points"`
	CorrectOptionIndex *int     `json:"correct_option_index,omitempty"`
}

// QuizResponse is the serialized representation of a quiz.
type QuizResponse struct {
	ID              uint               `json:"id"`
	CourseID        uint               `json:"course_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	TimeLimit       int                `json:"time_limit"`
	PassingScore    float64            `json:"passing_score"`
	AttemptsAllowed int                `json:"attempts_allowed"`
	IsPublished     bool               `json:"is_published"`
	TotalPoints     int                `json:"total_points"`
	Questions       []QuestionResponse `json:"questions"`
	AttemptsUsed    *int64             `json:"attempts_used,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// NewQuizResponse converts a quiz. revealAnswers controls whether correct
// option indexes are included.
func NewQuizResponse(quiz models.Quiz, revealAnswers bool) QuizResponse {
	response := QuizResponse{
		ID:              quiz.ID,
		CourseID:        quiz.CourseID,
		Title:           quiz.Title,
		Description:     quiz.Description,
		TimeLimit:       quiz.TimeLimit,
		PassingScore:    quiz.PassingScore,
		AttemptsAllowed: quiz.AttemptsAllowed,
		IsPublished:     quiz.IsPublished,
		TotalPoints:     quiz.TotalPoints(),
		Questions:       make([]QuestionResponse, 0, len(quiz.Questions)),
		CreatedAt:       quiz.CreatedAt,
	}

	for _, question := range quiz.Questions {
		item := QuestionResponse{
			ID:      question.ID,
			Text:    question.Text,
			Options: question.OptionList(),
			Points:  question.Points,
		}
		if revealAnswers {
			correct := question.CorrectOptionIndex
			item.CorrectOptionIndex = &correct
		}
		response.Questions = append(response.Questions, item)
	}

	return response
}

// QuizResultResponse is one recorded attempt.
type QuizResultResponse struct {
	ID            uint      `json:"id"`
	QuizID        uint      `json:"quiz_id"`
	Student       UserLite  `json:"student"`
	AttemptNumber int       `json:"attempt_number"`
	Score         int       `json:"score"`
	TotalPoints   int       `json:"total_points"`
	Percentage    float64   `json:"percentage"`
	Passed        bool      `json:"passed"`
	Answers       []int     `json:"answers"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// NewQuizResultResponse converts a result model into a DTO.
func NewQuizResultResponse(result models.QuizResult) QuizResultResponse {
	student := NewUserLite(result.Student)
	if student.ID == 0 {
		student.ID = result.StudentID
	}
	answers := result.Answers.Data()
	if answers == nil {
		answers = []int{}
	}
	return QuizResultResponse{
		ID:            result.ID,
		QuizID:        result.QuizID,
		Student:       student,
		AttemptNumber: result.AttemptNumber,
		Score:         result.Score,
		TotalPoints:   result.TotalPoints,
		Percentage:    result.Percentage,
		Passed:        result.Passed,
		Answers:       answers,
		SubmittedAt:   result.SubmittedAt,
	}
}
