package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// Quiz defaults.
const (
	DefaultPassingScore    = 50.0
	DefaultAttemptsAllowed = 1
	DefaultQuestionPoints  = 1
)

// Quiz is a scored multiple-choice assessment attached to a course.
type Quiz struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CourseID        uint       `gorm:"index;not null" json:"course_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	TimeLimit       int        `gorm:"not null;default:0" json:"time_limit"`
	PassingScore    float64    `gorm:"not null" json:"passing_score"`
	AttemptsAllowed int        `gorm:"not null" json:"attempts_allowed"`
	IsPublished     bool       `gorm:"index;not null" json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Questions       []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}

// Question is one multiple-choice item of a quiz.
type Question struct {
	ID                 uint                         `gorm:"primaryKey" json:"id"`
	QuizID             uint                         `gorm:"index;not null" json:"quiz_id"`
	Position           int                          `gorm:"not null" json:"position"`
	Text               string                       `gorm:"type:text;not null" json:"text"`
	Options            datatypes.JSONType[[]string] `json:"options"`
	CorrectOptionIndex int                          `gorm:"not null" json:"correct_option_index"`
	Points             int                          `gorm:"not null" json:"points"`
}

// QuizResult records one graded attempt. Results are never rescored.
type QuizResult struct {
	ID            uint                      `gorm:"primaryKey" json:"id"`
	QuizID        uint                      `gorm:"uniqueIndex:idx_quiz_result_attempt;not null" json:"quiz_id"`
	StudentID     uint                      `gorm:"uniqueIndex:idx_quiz_result_attempt;index;not null" json:"student_id"`
	AttemptNumber int                       `gorm:"uniqueIndex:idx_quiz_result_attempt;not null" json:"attempt_number"`
	Score         int                       `gorm:"not null" json:"score"`
	TotalPoints   int                       `gorm:"not null" json:"total_points"`
	Percentage    float64                   `gorm:"not null" json:"percentage"`
	Passed        bool                      `gorm:"not null" json:"passed"`
	Answers       datatypes.JSONType[[]int] `json:"answers"`
	SubmittedAt   time.Time                 `gorm:"not null" json:"submitted_at"`
	Student       User                      `gorm:"foreignKey:StudentID" json:"-"`
}

// OptionList returns the question's answer options.
func (q Question) OptionList() []string {
	options := q.Options.Data()
	if options == nil {
		return []string{}
	}
	return options
}

// TotalPoints sums the points of every question.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// QuizScore is the outcome of grading a set of answers.
type QuizScore struct {
	Score       int
	TotalPoints int
	Percentage  float64
	Passed      bool
}

// Grade scores answers positionally against the questions. Missing answers
// score nothing.
func (q Quiz) Grade(answers []int) QuizScore {
	score := 0
	for i, question := range q.Questions {
		if i < len(answers) && answers[i] == question.CorrectOptionIndex {
			score += question.Points
		}
	}

	total := q.TotalPoints()
	exact := 0.0
	if total > 0 {
		exact = float64(score) / float64(total) * 100
	}

	// Pass or fail is decided on the exact ratio; only the reported value is rounded.
	return QuizScore{
		Score:       score,
		TotalPoints: total,
		Percentage:  math.Round(exact*100) / 100,
		Passed:      exact >= q.PassingScore,
	}
}
