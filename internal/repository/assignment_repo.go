package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// AssignmentRepository persists assignment rows keyed by lesson.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	GetByLessonID(ctx context.Context, lessonID uint) (models.Assignment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error)
	ListByCourses(ctx context.Context, courseIDs []uint) ([]models.Assignment, error)
	Save(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
	CountSubmissions(ctx context.Context, id uint) (int64, error)
	HighestGrade(ctx context.Context, id uint) (*float64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) GetByLessonID(ctx context.Context, lessonID uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	return r.ListByCourses(ctx, []uint{courseID})
}

func (r *assignmentRepository) ListByCourses(ctx context.Context, courseIDs []uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if len(courseIDs) == 0 {
		return assignments, nil
	}
	err := r.db.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("due_date ASC, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Save inserts or updates the assignment row for its lesson.
func (r *assignmentRepository) Save(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) CountSubmissions(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("assignment_id = ?", id).Count(&count).Error
	return count, err
}

func (r *assignmentRepository) HighestGrade(ctx context.Context, id uint) (*float64, error) {
	var highest sql.NullFloat64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("MAX(grade)").
		Where("assignment_id = ? AND grade IS NOT NULL", id).
		Row().
		Scan(&highest)
	if err != nil {
		return nil, err
	}
	if !highest.Valid {
		return nil, nil
	}
	return &highest.Float64, nil
}
