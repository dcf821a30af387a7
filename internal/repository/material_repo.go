package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

// MaterialRepository stores metadata for course materials kept in the blob store.
type MaterialRepository interface {
	Create(ctx context.Context, material *models.CourseMaterial) error
	ListByCourse(ctx context.Context, courseID uint) ([]models.CourseMaterial, error)
	GetByID(ctx context.Context, id uint) (models.CourseMaterial, error)
	Delete(ctx context.Context, id uint) error
}

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository constructs a material repository.
func NewMaterialRepository(db *gorm.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *models.CourseMaterial) error {
	return r.db.WithContext(ctx).Omit("Course").Create(material).Error
}

func (r *materialRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.CourseMaterial, error) {
	var materials []models.CourseMaterial
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&materials).Error; err != nil {
		return nil, err
	}

	return materials, nil
}

func (r *materialRepository) GetByID(ctx context.Context, id uint) (models.CourseMaterial, error) {
	var material models.CourseMaterial
	if err := r.db.WithContext(ctx).Preload("Course").First(&material, id).Error; err != nil {
		return models.CourseMaterial{}, err
	}

	return material, nil
}

func (r *materialRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.CourseMaterial{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
