package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/observability"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

const marksTolerance = 1e-9

// AssessmentService drives the assessment lifecycle: draft, published, expired.
type AssessmentService interface {
	ListByCourse(ctx context.Context, courseID uint, includeDrafts bool) ([]dto.AssessmentResponse, error)
	Get(ctx context.Context, id uint, includeDrafts bool) (dto.AssessmentResponse, error)
	Create(ctx context.Context, actor Actor, req dto.AssessmentCreateRequest) (dto.AssessmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, req dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Publish(ctx context.Context, actor Actor, id uint) (dto.AssessmentResponse, error)
	InstructorOf(ctx context.Context, id uint) (uint, error)
}

type assessmentService struct {
	store     repository.Store
	validator *validator.Validate
	activity  ActivityRecorder
	cache     transcriptCache
	policy    *bluemonday.Policy
	strict    *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssessmentService constructs the lifecycle service. cache may be nil; when set,
// updates drop the cached transcripts of students holding results for the assessment.
func NewAssessmentService(store repository.Store, validator *validator.Validate, cache *redis.Client, activity ActivityRecorder, logger zerolog.Logger) AssessmentService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("p", "strong", "em", "ul", "ol", "li", "br", "code", "pre")

	return &assessmentService{
		store:     store,
		validator: validator,
		activity:  activity,
		cache:     newTranscriptCache(cache, 0, logger.With().Str("component", "transcript_cache").Logger()),
		policy:    policy,
		strict:    bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/noah-isme/edusync-go-api/internal/service/assessment"),
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assessmentService) ListByCourse(ctx context.Context, courseID uint, includeDrafts bool) ([]dto.AssessmentResponse, error) {
	if _, err := s.store.Courses().FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	assessments, err := s.store.Assessments().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Assessment, 0, len(assessments))
	for _, assessment := range assessments {
		if assessment.IsPublished || includeDrafts {
			visible = append(visible, assessment)
		}
	}

	return dto.NewAssessmentResponseSlice(visible, s.now()), nil
}

func (s *assessmentService) Get(ctx context.Context, id uint, includeDrafts bool) (dto.AssessmentResponse, error) {
	assessment, err := s.load(ctx, s.store, id)
	if err != nil {
		return dto.AssessmentResponse{}, err
	}
	if !assessment.IsPublished && !includeDrafts {
		return dto.AssessmentResponse{}, ErrAssessmentNotFound
	}

	return dto.NewAssessmentResponse(assessment, s.now()), nil
}

func (s *assessmentService) Create(ctx context.Context, actor Actor, req dto.AssessmentCreateRequest) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("assessment.course_id", int64(req.CourseID)),
		attribute.Int64("assessment.actor_id", int64(actor.ID)),
	)

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssessmentResponse{}, err
	}

	assessment := models.Assessment{
		CourseID:    req.CourseID,
		Title:       s.strict.Sanitize(strings.TrimSpace(req.Title)),
		Description: s.policy.Sanitize(strings.TrimSpace(req.Description)),
		DueDate:     req.DueDate.UTC(),
		TotalMarks:  req.TotalMarks,
		Type:        strings.TrimSpace(req.Type),
		Questions:   s.buildQuestions(req.Questions),
	}

	if exceedsTotal(assessment.QuestionMarks(), assessment.TotalMarks) {
		span.SetStatus(codes.Error, "invalid_marks")
		return dto.AssessmentResponse{}, ErrInvalidMarks
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Courses().FindByID(ctx, req.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		return tx.Assessments().Create(ctx, &assessment)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return dto.AssessmentResponse{}, err
	}

	observability.AssessmentLifecycle().WithLabelValues("created").Inc()
	s.audit(ctx, actor, ActionAssessmentCreated, assessment.ID, map[string]interface{}{
		"course_id":   assessment.CourseID,
		"questions":   len(assessment.Questions),
		"total_marks": assessment.TotalMarks,
	})

	return s.Get(ctx, assessment.ID, true)
}

func (s *assessmentService) Update(ctx context.Context, actor Actor, id uint, req dto.AssessmentUpdateRequest) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.update")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("assessment.id", int64(id)),
		attribute.Bool("assessment.replaces_questions", req.ReplacesQuestions()),
	)

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.AssessmentResponse{}, err
	}

	var graded []uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		assessment, err := tx.Assessments().GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssessmentNotFound
			}
			return err
		}

		if req.Title != nil {
			assessment.Title = s.strict.Sanitize(strings.TrimSpace(*req.Title))
		}
		if req.Description != nil {
			assessment.Description = s.policy.Sanitize(strings.TrimSpace(*req.Description))
		}
		if req.DueDate != nil {
			assessment.DueDate = req.DueDate.UTC()
		}
		if req.TotalMarks != nil {
			assessment.TotalMarks = *req.TotalMarks
		}
		if req.Type != nil {
			assessment.Type = strings.TrimSpace(*req.Type)
		}

		if req.ReplacesQuestions() {
			submitted, err := tx.Results().CountByAssessment(ctx, id)
			if err != nil {
				return err
			}
			if submitted > 0 {
				return ErrConflictingState
			}
			assessment.Questions = s.buildQuestions(req.Questions)
		}

		if exceedsTotal(assessment.QuestionMarks(), assessment.TotalMarks) {
			return ErrInvalidMarks
		}
		if req.TotalMarks != nil {
			highest, err := tx.Results().MaxMarksByAssessment(ctx, id)
			if err != nil {
				return err
			}
			if exceedsTotal(highest, assessment.TotalMarks) {
				return ErrInvalidMarks
			}
		}

		if err := tx.Assessments().Update(ctx, &assessment); err != nil {
			return err
		}
		if req.ReplacesQuestions() {
			if err := tx.Assessments().ReplaceQuestions(ctx, id, assessment.Questions); err != nil {
				return err
			}
		}

		graded, err = tx.Results().StudentIDsByAssessment(ctx, id)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update_failed")
		return dto.AssessmentResponse{}, err
	}

	observability.AssessmentLifecycle().WithLabelValues("updated").Inc()
	s.cache.invalidate(ctx, graded...)
	s.audit(ctx, actor, ActionAssessmentUpdated, id, map[string]interface{}{
		"replaced_questions": req.ReplacesQuestions(),
	})

	return s.Get(ctx, id, true)
}

func (s *assessmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	ctx, span := s.tracer.Start(ctx, "assessment.delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("assessment.id", int64(id)))

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Assessments().GetByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssessmentNotFound
			}
			return err
		}

		submitted, err := tx.Results().CountByAssessment(ctx, id)
		if err != nil {
			return err
		}
		if submitted > 0 {
			return ErrConflictingState
		}

		return tx.Assessments().Delete(ctx, id)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete_failed")
		return err
	}

	observability.AssessmentLifecycle().WithLabelValues("deleted").Inc()
	s.audit(ctx, actor, ActionAssessmentDeleted, id, nil)
	return nil
}

func (s *assessmentService) Publish(ctx context.Context, actor Actor, id uint) (dto.AssessmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.publish")
	defer span.End()
	span.SetAttributes(attribute.Int64("assessment.id", int64(id)))

	var changed bool
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		assessment, err := tx.Assessments().GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssessmentNotFound
			}
			return err
		}

		changed = assessment.Publish(s.now().UTC())
		if !changed {
			return nil
		}
		return tx.Assessments().Update(ctx, &assessment)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish_failed")
		return dto.AssessmentResponse{}, err
	}

	span.SetAttributes(attribute.Bool("assessment.state_changed", changed))
	if changed {
		observability.AssessmentLifecycle().WithLabelValues("published").Inc()
		s.audit(ctx, actor, ActionAssessmentPublished, id, nil)
	}

	return s.Get(ctx, id, true)
}

// InstructorOf returns the instructor owning the course of the assessment.
func (s *assessmentService) InstructorOf(ctx context.Context, id uint) (uint, error) {
	assessment, err := s.store.Assessments().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAssessmentNotFound
		}
		return 0, err
	}

	course, err := s.store.Courses().FindByID(ctx, assessment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCourseNotFound
		}
		return 0, err
	}

	return course.InstructorID, nil
}

func (s *assessmentService) load(ctx context.Context, store repository.Store, id uint) (models.Assessment, error) {
	assessment, err := store.Assessments().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}
	return assessment, nil
}

func (s *assessmentService) buildQuestions(requests []dto.QuestionRequest) []models.Question {
	questions := make([]models.Question, 0, len(requests))
	for _, req := range requests {
		key, _ := models.NormalizeChoice(req.CorrectAnswer)
		questions = append(questions, models.Question{
			QuestionText:  s.strict.Sanitize(strings.TrimSpace(req.QuestionText)),
			OptionA:       s.strict.Sanitize(strings.TrimSpace(req.OptionA)),
			OptionB:       s.strict.Sanitize(strings.TrimSpace(req.OptionB)),
			OptionC:       s.strict.Sanitize(strings.TrimSpace(req.OptionC)),
			OptionD:       s.strict.Sanitize(strings.TrimSpace(req.OptionD)),
			CorrectAnswer: key,
			Marks:         req.Marks,
		})
	}
	return questions
}

func (s *assessmentService) audit(ctx context.Context, actor Actor, action string, id uint, metadata map[string]interface{}) {
	entityID := id
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "assessment",
		EntityID:   &entityID,
		Metadata:   metadata,
	})
}

func exceedsTotal(marks, total float64) bool {
	return marks > total+marksTolerance
}

// clampToTotal caps marks accepted within the tolerance so stored values never exceed the total.
func clampToTotal(marks, total float64) float64 {
	if marks > total {
		return total
	}
	return marks
}
