package service

import "errors"

// Domain errors returned by services. Handlers translate them into HTTP statuses.
var (
	// ErrInvalidInput wraps request values that pass struct validation but are still unusable.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden indicates the caller may not act on the resource.
	ErrForbidden = errors.New("insufficient permissions")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	ErrCourseNotFound       = errors.New("course not found")
	ErrLessonNotFound       = errors.New("lesson not found")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrAlreadyEnrolled      = errors.New("already enrolled in this course")
	ErrInvalidEnrollmentKey = errors.New("invalid enrollment key")
	ErrNotEnrolled          = errors.New("not enrolled in this course")

	ErrAssignmentNotFound       = errors.New("assignment not found")
	ErrAssignmentHasSubmissions = errors.New("assignment already has submissions")
	ErrDueDateRequired          = errors.New("due date is required for assignments")
	ErrMaxGradeBelowGrades      = errors.New("max grade is lower than an existing grade")
	ErrSubmissionNotFound       = errors.New("submission not found")
	ErrAlreadySubmitted         = errors.New("assignment already submitted")
	ErrDeadlinePassed           = errors.New("assignment deadline has passed")
	ErrEmptySubmission          = errors.New("submission requires content or a file")
	ErrGradeOutOfRange          = errors.New("grade is outside the allowed range")

	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizHasResults     = errors.New("quiz already has results")
	ErrAttemptsExhausted  = errors.New("max attempts reached")
	ErrAttemptConflict    = errors.New("attempt already recorded")
	ErrInvalidQuizAnswers = errors.New("answers do not match the quiz questions")
)
