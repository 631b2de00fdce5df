package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// courseAccess resolves what an actor may do inside a course. Admins and
// the owning teacher manage it; enrolled students may view it.
type courseAccess struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
}

func (a courseAccess) load(ctx context.Context, courseID uint) (models.Course, error) {
	course, err := a.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

// manage loads the course and requires owner or admin rights.
func (a courseAccess) manage(ctx context.Context, actor Actor, courseID uint) (models.Course, error) {
	course, err := a.load(ctx, courseID)
	if err != nil {
		return models.Course{}, err
	}
	if !actor.CanManage(course) {
		return models.Course{}, ErrForbidden
	}
	return course, nil
}

// view loads the course and reports whether the actor manages it. Students
// must be enrolled.
func (a courseAccess) view(ctx context.Context, actor Actor, courseID uint) (models.Course, bool, error) {
	course, err := a.load(ctx, courseID)
	if err != nil {
		return models.Course{}, false, err
	}
	managing, err := a.authorize(ctx, actor, course)
	if err != nil {
		return models.Course{}, false, err
	}
	return course, managing, nil
}

func (a courseAccess) authorize(ctx context.Context, actor Actor, course models.Course) (bool, error) {
	if actor.CanManage(course) {
		return true, nil
	}
	if !actor.IsStudent() {
		return false, ErrForbidden
	}

	enrolled, err := a.enrollments.Exists(ctx, actor.ID, course.ID)
	if err != nil {
		return false, err
	}
	if !enrolled {
		return false, ErrForbidden
	}
	return false, nil
}

// openEnrollment returns the student's enrollment in courseID, failing with
// ErrNotEnrolled when it is absent or dropped.
func (a courseAccess) openEnrollment(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	enrollment, err := a.enrollments.Get(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Enrollment{}, ErrNotEnrolled
		}
		return models.Enrollment{}, err
	}
	if !enrollment.IsOpen() {
		return models.Enrollment{}, ErrNotEnrolled
	}
	return enrollment, nil
}
