package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// RoleCount is the number of accounts holding one role.
type RoleCount struct {
	Role  string
	Total int64
}

// AdminAnalyticsRepository exposes read-only aggregates for admin dashboards.
type AdminAnalyticsRepository interface {
	CountUsersByRole(ctx context.Context) ([]RoleCount, error)
	CountCourses(ctx context.Context) (int64, error)
	CountEnrollments(ctx context.Context) (int64, error)
	AverageProgress(ctx context.Context) (float64, error)
	ListCoursesWithEnrollments(ctx context.Context) ([]models.Course, []models.Enrollment, error)
}

type adminAnalyticsRepository struct {
	db *gorm.DB
}

// NewAdminAnalyticsRepository constructs the repository.
func NewAdminAnalyticsRepository(db *gorm.DB) AdminAnalyticsRepository {
	return &adminAnalyticsRepository{db: db}
}

func (r *adminAnalyticsRepository) CountUsersByRole(ctx context.Context) ([]RoleCount, error) {
	var counts []RoleCount
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *adminAnalyticsRepository) CountCourses(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error
	return count, err
}

func (r *adminAnalyticsRepository) CountEnrollments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Count(&count).Error
	return count, err
}

// AverageProgress returns the arithmetic mean progress over all
// enrollments, or 0 when there are none.
func (r *adminAnalyticsRepository) AverageProgress(ctx context.Context) (float64, error) {
	var average float64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("COALESCE(AVG(progress), 0)").
		Row().
		Scan(&average)
	if err != nil {
		return 0, err
	}
	return average, nil
}

func (r *adminAnalyticsRepository) ListCoursesWithEnrollments(ctx context.Context) ([]models.Course, []models.Enrollment, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Preload("Teacher").Order("created_at DESC, id DESC").Find(&courses).Error; err != nil {
		return nil, nil, err
	}

	var enrollments []models.Enrollment
	if err := r.db.WithContext(ctx).Preload("Student").Order("enrolled_at ASC, id ASC").Find(&enrollments).Error; err != nil {
		return nil, nil, err
	}

	return courses, enrollments, nil
}
