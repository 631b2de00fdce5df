package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-lms-api/internal/models"
)

// SubmissionRepository persists submissions and their comments.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	Get(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error)
	ListForStudent(ctx context.Context, studentID uint, assignmentIDs []uint) ([]models.Submission, error)
	AddComment(ctx context.Context, comment *models.SubmissionComment) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository constructs a GORM-backed submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(submission).Error
}

func (r *submissionRepository) Get(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Comments.Author").
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Comments.Author").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC, id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if len(assignmentIDs) == 0 {
		return submissions, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assignment_id IN ?", assignmentIDs).
		Order("submitted_at ASC, id ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListForStudent(ctx context.Context, studentID uint, assignmentIDs []uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if len(assignmentIDs) == 0 {
		return submissions, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND assignment_id IN ?", studentID, assignmentIDs).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) AddComment(ctx context.Context, comment *models.SubmissionComment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error
}
