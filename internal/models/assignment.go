package models

import "time"

// DefaultMaxGrade applies when an assignment does not specify one.
const DefaultMaxGrade = 100.0

// Assignment holds the grading facts of a lesson marked as an assignment.
// It is keyed by LessonID and is the only record of due date and max grade.
type Assignment struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	LessonID    uint         `gorm:"uniqueIndex;not null" json:"lesson_id"`
	CourseID    uint         `gorm:"index;not null" json:"course_id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	DueDate     time.Time    `gorm:"not null" json:"due_date"`
	MaxGrade    float64      `gorm:"not null" json:"max_grade"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Submissions []Submission `json:"-"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// AcceptsGrade reports whether grade lies within [0, MaxGrade].
func (a Assignment) AcceptsGrade(grade float64) bool {
	return grade >= 0 && grade <= a.MaxGrade
}
