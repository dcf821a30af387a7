package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

// EnrollmentService keeps track of which students follow which courses.
type EnrollmentService interface {
	Enroll(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error)
	ListCourses(ctx context.Context, studentID uint) ([]dto.CourseResponse, error)
	IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
	Unenroll(ctx context.Context, studentID, courseID uint) error
}

type enrollmentService struct {
	store  repository.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(store repository.Store, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		store:  store,
		logger: logger.With().Str("component", "enrollment_service").Logger(),
		now:    time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID, courseID uint) (dto.EnrollmentResponse, error) {
	var enrollment models.Enrollment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Courses().FindByID(ctx, courseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		if _, err := tx.Enrollments().Find(ctx, studentID, courseID); err == nil {
			return ErrAlreadyEnrolled
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		enrollment = models.Enrollment{
			StudentID:  studentID,
			CourseID:   courseID,
			EnrolledAt: s.now().UTC(),
			IsActive:   true,
			Status:     models.EnrollmentStatusActive,
		}
		if err := tx.Enrollments().Create(ctx, &enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("student enrolled")
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListCourses(ctx context.Context, studentID uint) ([]dto.CourseResponse, error) {
	courses, err := s.store.Enrollments().ListCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	enrollment, err := s.store.Enrollments().Find(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.IsActive, nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	if err := s.store.Enrollments().Delete(ctx, studentID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("course_id", courseID).Msg("student unenrolled")
	return nil
}
