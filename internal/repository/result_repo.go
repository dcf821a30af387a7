package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

// ResultRepository persists graded attempts and their revision trail.
type ResultRepository interface {
	Create(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id uint) (models.Result, error)
	GetByIDForUpdate(ctx context.Context, id uint) (models.Result, error)
	Exists(ctx context.Context, assessmentID, studentID uint) (bool, error)
	CountByAssessment(ctx context.Context, assessmentID uint) (int64, error)
	MaxMarksByAssessment(ctx context.Context, assessmentID uint) (float64, error)
	StudentIDsByAssessment(ctx context.Context, assessmentID uint) ([]uint, error)
	UpdateGrade(ctx context.Context, result *models.Result) error
	CreateRevision(ctx context.Context, revision *models.ResultRevision) error
	ListByAssessment(ctx context.Context, assessmentID uint) ([]models.Result, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Result, error)
	Delete(ctx context.Context, id uint) error
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository builds a grading-aware result repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(result).Error
}

func (r *resultRepository) GetByID(ctx context.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Preload("Revisions", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("graded_at ASC").Order("id ASC")
		}).
		First(&result, id).Error; err != nil {
		return models.Result{}, err
	}

	return result, nil
}

// GetByIDForUpdate loads the result and locks its row until the surrounding transaction ends.
func (r *resultRepository) GetByIDForUpdate(ctx context.Context, id uint) (models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&result, id).Error; err != nil {
		return models.Result{}, err
	}

	return result, nil
}

func (r *resultRepository) Exists(ctx context.Context, assessmentID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("assessment_id = ? AND student_id = ?", assessmentID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *resultRepository) CountByAssessment(ctx context.Context, assessmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// MaxMarksByAssessment returns the highest recorded marks for the assessment, 0 when it has no results.
func (r *resultRepository) MaxMarksByAssessment(ctx context.Context, assessmentID uint) (float64, error) {
	var highest sql.NullFloat64
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("assessment_id = ?", assessmentID).
		Select("MAX(marks_obtained)").
		Row().
		Scan(&highest); err != nil {
		return 0, err
	}

	return highest.Float64, nil
}

func (r *resultRepository) StudentIDsByAssessment(ctx context.Context, assessmentID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Result{}).
		Where("assessment_id = ?", assessmentID).
		Distinct().
		Order("student_id").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *resultRepository) UpdateGrade(ctx context.Context, result *models.Result) error {
	update := r.db.WithContext(ctx).
		Model(&models.Result{ID: result.ID}).
		Updates(map[string]interface{}{
			"marks_obtained": result.MarksObtained,
			"status":         result.Status,
			"feedback":       result.Feedback,
			"graded_at":      result.GradedAt,
			"graded_by":      result.GradedBy,
		})
	if update.Error != nil {
		return update.Error
	}
	if update.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resultRepository) CreateRevision(ctx context.Context, revision *models.ResultRevision) error {
	return r.db.WithContext(ctx).Create(revision).Error
}

func (r *resultRepository) ListByAssessment(ctx context.Context, assessmentID uint) ([]models.Result, error) {
	var results []models.Result
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("assessment_id = ?", assessmentID).
		Order("submission_date DESC").
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *resultRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Result, error) {
	var results []models.Result
	if err := r.db.WithContext(ctx).
		Preload("Assessment").
		Preload("Assessment.Course").
		Where("student_id = ?", studentID).
		Order("submission_date DESC").
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

func (r *resultRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("result_id = ?", id).
		Delete(&models.ResultRevision{}).Error; err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&models.Result{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
