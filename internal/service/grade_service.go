package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/dto"
	"github.com/noah-isme/gema-lms-api/internal/models"
	"github.com/noah-isme/gema-lms-api/internal/repository"
)

// GradeService derives grade projections from assignments and submissions at
// read time. No grade is stored outside the submission.
type GradeService interface {
	Gradebook(ctx context.Context, actor Actor) ([]dto.CourseGradebook, error)
	StudentCourse(ctx context.Context, actor Actor, studentID, courseID uint) (dto.CourseGradebook, error)
	Course(ctx context.Context, actor Actor, courseID uint) (dto.CourseGradesResponse, error)
}

type gradeService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	enrollments repository.EnrollmentRepository
	access      courseAccess
	logger      zerolog.Logger
}

// NewGradeService constructs the grade projection service.
func NewGradeService(
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	logger zerolog.Logger,
) GradeService {
	return &gradeService{
		assignments: assignments,
		submissions: submissions,
		enrollments: enrollments,
		access:      courseAccess{courses: courses, enrollments: enrollments},
		logger:      logger.With().Str("component", "grade_service").Logger(),
	}
}

func (s *gradeService) Gradebook(ctx context.Context, actor Actor) ([]dto.CourseGradebook, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return []dto.CourseGradebook{}, nil
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courseIDs = append(courseIDs, enrollment.CourseID)
	}
	assignments, err := s.assignments.ListByCourses(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	submitted, err := s.studentSubmissions(ctx, actor.ID, assignments)
	if err != nil {
		return nil, err
	}

	byCourse := map[uint][]models.Assignment{}
	for _, assignment := range assignments {
		byCourse[assignment.CourseID] = append(byCourse[assignment.CourseID], assignment)
	}

	gradebook := make([]dto.CourseGradebook, 0, len(enrollments))
	for _, enrollment := range enrollments {
		gradebook = append(gradebook, dto.CourseGradebook{
			Course:     dto.NewCourseResponse(enrollment.Course, false),
			Progress:   enrollment.Progress,
			Status:     enrollment.Status,
			EnrolledAt: enrollment.EnrolledAt,
			Grades:     projectGrades(byCourse[enrollment.CourseID], submitted),
		})
	}
	return gradebook, nil
}

func (s *gradeService) StudentCourse(ctx context.Context, actor Actor, studentID, courseID uint) (dto.CourseGradebook, error) {
	if actor.IsStudent() && actor.ID != studentID {
		return dto.CourseGradebook{}, ErrForbidden
	}

	course, err := s.access.load(ctx, courseID)
	if err != nil {
		return dto.CourseGradebook{}, err
	}
	if !actor.IsStudent() && !actor.CanManage(course) {
		return dto.CourseGradebook{}, ErrForbidden
	}

	enrollment, err := s.enrollments.Get(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseGradebook{}, ErrEnrollmentNotFound
		}
		return dto.CourseGradebook{}, err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseGradebook{}, err
	}
	submitted, err := s.studentSubmissions(ctx, studentID, assignments)
	if err != nil {
		return dto.CourseGradebook{}, err
	}

	return dto.CourseGradebook{
		Course:     dto.NewCourseResponse(course, actor.CanManage(course)),
		Progress:   enrollment.Progress,
		Status:     enrollment.Status,
		EnrolledAt: enrollment.EnrolledAt,
		Grades:     projectGrades(assignments, submitted),
	}, nil
}

func (s *gradeService) Course(ctx context.Context, actor Actor, courseID uint) (dto.CourseGradesResponse, error) {
	if _, err := s.access.manage(ctx, actor, courseID); err != nil {
		return dto.CourseGradesResponse{}, err
	}

	assignments, err := s.assignments.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseGradesResponse{}, err
	}
	enrollments, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return dto.CourseGradesResponse{}, err
	}

	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}
	submissions, err := s.submissions.ListByAssignments(ctx, ids)
	if err != nil {
		return dto.CourseGradesResponse{}, err
	}

	byStudent := map[uint]map[uint]models.Submission{}
	for _, submission := range submissions {
		if byStudent[submission.StudentID] == nil {
			byStudent[submission.StudentID] = map[uint]models.Submission{}
		}
		byStudent[submission.StudentID][submission.AssignmentID] = submission
	}

	students := make([]dto.StudentGrades, 0, len(enrollments))
	for _, enrollment := range enrollments {
		student := dto.NewUserLite(enrollment.Student)
		if student.ID == 0 {
			student.ID = enrollment.StudentID
		}
		students = append(students, dto.StudentGrades{
			Student:  student,
			Progress: enrollment.Progress,
			Grades:   projectGrades(assignments, byStudent[enrollment.StudentID]),
		})
	}

	return dto.CourseGradesResponse{
		CourseID:    courseID,
		Assignments: dto.NewAssignmentResponseSlice(assignments),
		Students:    students,
	}, nil
}

func (s *gradeService) studentSubmissions(ctx context.Context, studentID uint, assignments []models.Assignment) (map[uint]models.Submission, error) {
	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}
	submissions, err := s.submissions.ListForStudent(ctx, studentID, ids)
	if err != nil {
		return nil, err
	}

	byAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}
	return byAssignment, nil
}

func projectGrades(assignments []models.Assignment, submitted map[uint]models.Submission) []dto.GradeEntry {
	entries := make([]dto.GradeEntry, 0, len(assignments))
	for _, assignment := range assignments {
		entry := dto.GradeEntry{
			AssignmentID: assignment.ID,
			LessonID:     assignment.LessonID,
			CourseID:     assignment.CourseID,
			Title:        assignment.Title,
			DueDate:      assignment.DueDate,
			MaxGrade:     assignment.MaxGrade,
			Status:       models.GradeStatusNotSubmitted,
		}

		if submission, ok := submitted[assignment.ID]; ok {
			submittedAt := submission.SubmittedAt
			entry.Status = submission.Status()
			entry.Grade = submission.Grade
			entry.Feedback = submission.Feedback
			entry.SubmittedAt = &submittedAt
			entry.GradedAt = submission.GradedAt
			entry.IsLate = submission.IsLate(assignment.DueDate)
		}

		entries = append(entries, entry)
	}
	return entries
}
