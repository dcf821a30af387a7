package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

// AssessmentRepository defines persistence operations for assessments and their questions.
type AssessmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assessment, error)
	GetByID(ctx context.Context, id uint) (models.Assessment, error)
	GetByIDForUpdate(ctx context.Context, id uint) (models.Assessment, error)
	Create(ctx context.Context, assessment *models.Assessment) error
	Update(ctx context.Context, assessment *models.Assessment) error
	ReplaceQuestions(ctx context.Context, assessmentID uint, questions []models.Question) error
	Delete(ctx context.Context, id uint) error
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates a GORM-backed repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func orderedQuestions(tx *gorm.DB) *gorm.DB {
	return tx.Order("id ASC")
}

func (r *assessmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("course_id = ?", courseID).
		Order("due_date ASC").
		Order("id ASC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) GetByID(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

// GetByIDForUpdate loads the assessment and locks its row until the surrounding transaction ends.
func (r *assessmentRepository) GetByIDForUpdate(ctx context.Context, id uint) (models.Assessment, error) {
	var assessment models.Assessment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&assessment, id).Error; err != nil {
		return models.Assessment{}, err
	}

	if err := r.db.WithContext(ctx).
		Where("assessment_id = ?", id).
		Order("id ASC").
		Find(&assessment.Questions).Error; err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	return r.db.WithContext(ctx).Omit("Course").Create(assessment).Error
}

// Update writes the scalar columns only; questions are replaced through ReplaceQuestions.
func (r *assessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assessment{ID: assessment.ID}).
		Updates(map[string]interface{}{
			"title":        assessment.Title,
			"description":  assessment.Description,
			"due_date":     assessment.DueDate,
			"total_marks":  assessment.TotalMarks,
			"type":         assessment.Type,
			"is_published": assessment.IsPublished,
			"published_at": assessment.PublishedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assessmentRepository) ReplaceQuestions(ctx context.Context, assessmentID uint, questions []models.Question) error {
	if err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Delete(&models.Question{}).Error; err != nil {
		return err
	}

	if len(questions) == 0 {
		return nil
	}

	for i := range questions {
		questions[i].ID = 0
		questions[i].AssessmentID = assessmentID
	}

	return r.db.WithContext(ctx).Create(&questions).Error
}

func (r *assessmentRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("assessment_id = ?", id).
		Delete(&models.Question{}).Error; err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&models.Assessment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
