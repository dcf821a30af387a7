package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

// checkEligibility runs the submission preconditions in order and returns the
// assessment with its questions when the student may submit.
func checkEligibility(ctx context.Context, store repository.Store, assessmentID, studentID uint, now time.Time) (models.Assessment, error) {
	assessment, err := store.Assessments().GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}

	if !assessment.IsPublished {
		return models.Assessment{}, ErrNotPublished
	}

	if assessment.IsPastDue(now) {
		return models.Assessment{}, ErrDeadlinePassed
	}

	if _, err := store.Users().FindByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrUnknownStudent
		}
		return models.Assessment{}, err
	}

	return assessment, nil
}
