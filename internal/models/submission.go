package models

import "time"

// Grade projection statuses.
const (
	GradeStatusNotSubmitted = "not_submitted"
	GradeStatusPending      = "pending"
	GradeStatusGraded       = "graded"
)

// Submission is a student's single attempt at an assignment.
type Submission struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	AssignmentID uint                `gorm:"uniqueIndex:idx_submission_assignment_student;not null" json:"assignment_id"`
	StudentID    uint                `gorm:"uniqueIndex:idx_submission_assignment_student;index;not null" json:"student_id"`
	Content      string              `gorm:"type:text" json:"content"`
	FileURL      string              `gorm:"size:512" json:"file_url"`
	Grade        *float64            `json:"grade"`
	Feedback     string              `gorm:"type:text" json:"feedback"`
	GradedBy     *uint               `json:"graded_by"`
	SubmittedAt  time.Time           `gorm:"not null" json:"submitted_at"`
	GradedAt     *time.Time          `json:"graded_at"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Comments     []SubmissionComment `gorm:"constraint:OnDelete:CASCADE" json:"comments"`
	Assignment   Assignment          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student      User                `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// SubmissionComment is an append-only remark on a submission.
type SubmissionComment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"index;not null" json:"submission_id"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	Content      string    `gorm:"size:1000;not null" json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	Author       User      `gorm:"foreignKey:AuthorID" json:"-"`
}

// IsGraded reports whether the submission has a grade.
func (s Submission) IsGraded() bool {
	return s.Grade != nil
}

// Status returns the grade projection status for an existing submission.
func (s Submission) Status() string {
	if s.IsGraded() {
		return GradeStatusGraded
	}
	return GradeStatusPending
}

// IsLate reports whether the submission arrived after dueDate.
func (s Submission) IsLate(dueDate time.Time) bool {
	return !dueDate.IsZero() && s.SubmittedAt.After(dueDate)
}
