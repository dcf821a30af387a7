package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

// CourseService exposes the course directory.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, actor Actor, req dto.CourseCreateRequest) (dto.CourseResponse, error)
}

type courseService struct {
	store     repository.Store
	validator *validator.Validate
	activity  ActivityRecorder
	policy    *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(store repository.Store, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) CourseService {
	return &courseService{
		store:     store,
		validator: validator,
		activity:  activity,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.store.Courses().List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.store.Courses().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, req dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:        s.policy.Sanitize(strings.TrimSpace(req.Title)),
		Description:  s.policy.Sanitize(strings.TrimSpace(req.Description)),
		InstructorID: actor.ID,
		Duration:     strings.TrimSpace(req.Duration),
		Level:        strings.TrimSpace(req.Level),
		IsActive:     true,
	}
	if err := s.store.Courses().Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	entityID := course.ID
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     "course.created",
		EntityType: "course",
		EntityID:   &entityID,
	})

	return s.Get(ctx, course.ID)
}
