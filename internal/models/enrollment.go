package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// Enrollment links one student to one course and tracks lesson completion.
type Enrollment struct {
	ID               uint                       `gorm:"primaryKey" json:"id"`
	StudentID        uint                       `gorm:"uniqueIndex:idx_enrollment_student_course;not null" json:"student_id"`
	CourseID         uint                       `gorm:"uniqueIndex:idx_enrollment_student_course;index;not null" json:"course_id"`
	Progress         int                        `gorm:"not null;default:0" json:"progress"`
	Status           string                     `gorm:"size:16;index;not null" json:"status"`
	CompletedLessons datatypes.JSONType[[]uint] `json:"completed_lessons"`
	EnrolledAt       time.Time                  `gorm:"not null" json:"enrolled_at"`
	CompletedAt      *time.Time                 `json:"completed_at"`
	CreatedAt        time.Time                  `json:"created_at"`
	UpdatedAt        time.Time                  `json:"updated_at"`
	Student          User                       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course           Course                     `gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// NewEnrollment creates an active enrollment at zero progress.
func NewEnrollment(studentID, courseID uint, now time.Time) Enrollment {
	return Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		Status:           EnrollmentActive,
		CompletedLessons: datatypes.NewJSONType([]uint{}),
		EnrolledAt:       now,
	}
}

// IsOpen reports whether the student may still record progress.
func (e Enrollment) IsOpen() bool {
	return e.Status != EnrollmentDropped
}

// CompletedLessonIDs returns the completion set.
func (e Enrollment) CompletedLessonIDs() []uint {
	ids := e.CompletedLessons.Data()
	if ids == nil {
		return []uint{}
	}
	return ids
}

// HasCompleted reports whether lessonID is in the completion set.
func (e Enrollment) HasCompleted(lessonID uint) bool {
	for _, id := range e.CompletedLessonIDs() {
		if id == lessonID {
			return true
		}
	}
	return false
}

// ToggleLesson flips membership of lessonID in the completion set and
// reports whether the lesson is now completed.
func (e *Enrollment) ToggleLesson(lessonID uint) bool {
	current := e.CompletedLessonIDs()
	next := make([]uint, 0, len(current)+1)
	removed := false
	for _, id := range current {
		if id == lessonID {
			removed = true
			continue
		}
		next = append(next, id)
	}
	if !removed {
		next = append(next, lessonID)
	}
	e.CompletedLessons = datatypes.NewJSONType(next)
	return !removed
}

// Recalculate derives progress from the published lesson ids of the course
// and moves the status between active and completed accordingly.
func (e *Enrollment) Recalculate(published []uint, now time.Time) {
	e.Progress = CalculateProgress(e.CompletedLessonIDs(), published)

	if e.Status == EnrollmentDropped {
		return
	}

	if e.Progress == 100 {
		if e.Status != EnrollmentCompleted || e.CompletedAt == nil {
			completedAt := now
			e.CompletedAt = &completedAt
		}
		e.Status = EnrollmentCompleted
		return
	}

	e.Status = EnrollmentActive
	e.CompletedAt = nil
}

// CalculateProgress returns round(100 * |completed ∩ published| / |published|),
// or 0 when nothing is published.
func CalculateProgress(completed, published []uint) int {
	if len(published) == 0 {
		return 0
	}

	done := make(map[uint]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}

	count := 0
	seen := make(map[uint]struct{}, len(published))
	for _, id := range published {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := done[id]; ok {
			count++
		}
	}

	return int(math.Round(100 * float64(count) / float64(len(seen))))
}
