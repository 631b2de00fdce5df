package dto

import "time"

// GradeEntry is the derived grade state of one student on one assignment.
type GradeEntry struct {
	AssignmentID uint       `json:"assignment_id"`
	LessonID     uint       `json:"lesson_id"`
	CourseID     uint       `json:"course_id"`
	Title        string     `json:"title"`
	DueDate      time.Time  `json:"due_date"`
	MaxGrade     float64    `json:"max_grade"`
	Status       string     `json:"status"`
	Grade        *float64   `json:"grade"`
	Feedback     string     `json:"feedback,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at"`
	IsLate       bool       `json:"is_late"`
}

// CourseGradebook lists a student's grades within one course.
type CourseGradebook struct {
	Course     CourseResponse `json:"course"`
	Progress   int            `json:"progress"`
	Status     string         `json:"status"`
	EnrolledAt time.Time      `json:"enrolled_at"`
	Grades     []GradeEntry   `json:"grades"`
}

// StudentGrades groups a student's grades in a course view.
type StudentGrades struct {
	Student  UserLite     `json:"student"`
	Progress int          `json:"progress"`
	Grades   []GradeEntry `json:"grades"`
}

// CourseGradesResponse lists every enrolled student's grades in a course.
type CourseGradesResponse struct {
	CourseID    uint                 `json:"course_id"`
	Assignments []AssignmentResponse `json:"assignments"`
	Students    []StudentGrades      `json:"students"`
}
