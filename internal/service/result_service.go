package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/observability"
	"github.com/noah-isme/edusync-go-api/internal/repository"
)

// ResultService is the grading engine: it accepts submissions, scores them and
// keeps the ledger of results and instructor overrides.
type ResultService interface {
	Submit(ctx context.Context, actor Actor, assessmentID uint, req dto.SubmitAssessmentRequest) (dto.ResultResponse, error)
	OverrideGrade(ctx context.Context, actor Actor, resultID uint, req dto.GradeResultRequest) (dto.ResultResponse, error)
	ListByAssessment(ctx context.Context, assessmentID uint) ([]dto.ResultResponse, error)
	ListByStudent(ctx context.Context, studentID uint) ([]dto.ResultResponse, error)
	Get(ctx context.Context, resultID uint) (dto.ResultResponse, error)
	Delete(ctx context.Context, actor Actor, resultID uint) error
}

type resultService struct {
	store     repository.Store
	validator *validator.Validate
	cache     transcriptCache
	events    ResultEventPublisher
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewResultService wires the grading engine. cache, events and activity may be nil.
func NewResultService(store repository.Store, validator *validator.Validate, cache *redis.Client, cacheTTL time.Duration, events ResultEventPublisher, activity ActivityRecorder, logger zerolog.Logger) ResultService {
	if events == nil {
		events = noopResultPublisher{}
	}

	return &resultService{
		store:     store,
		validator: validator,
		cache:     newTranscriptCache(cache, cacheTTL, logger.With().Str("component", "transcript_cache").Logger()),
		events:    events,
		activity:  activity,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/noah-isme/edusync-go-api/internal/service/result"),
		logger:    logger.With().Str("component", "result_service").Logger(),
		now:       time.Now,
	}
}

func (s *resultService) Submit(ctx context.Context, actor Actor, assessmentID uint, req dto.SubmitAssessmentRequest) (dto.ResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("grading.assessment_id", int64(assessmentID)),
		attribute.Int64("grading.student_id", int64(actor.ID)),
		attribute.Int("grading.answers", len(req.Answers)),
	)

	if err := s.validator.Struct(req); err != nil {
		observability.Submissions().WithLabelValues("invalid").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ResultResponse{}, err
	}

	now := s.now().UTC()
	var (
		result     models.Result
		totalMarks float64
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		assessment, err := checkEligibility(ctx, tx, assessmentID, actor.ID, now)
		if err != nil {
			return err
		}

		exists, err := tx.Results().Exists(ctx, assessmentID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadySubmitted
		}

		score, err := GradeAnswers(assessment.Questions, req.Answers)
		if err != nil {
			return err
		}

		normalized, err := NormalizeAnswers(assessment.Questions, req.Answers)
		if err != nil {
			return err
		}
		answers, err := json.Marshal(normalized)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}

		gradedAt := now
		result = models.Result{
			AssessmentID:   assessmentID,
			StudentID:      actor.ID,
			MarksObtained:  clampToTotal(score, assessment.TotalMarks),
			Status:         models.ResultStatusGraded,
			Answers:        datatypes.JSON(answers),
			SubmissionDate: now,
			GradedAt:       &gradedAt,
		}
		if err := tx.Results().Create(ctx, &result); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySubmitted
			}
			return err
		}

		totalMarks = assessment.TotalMarks
		return nil
	})
	if err != nil {
		outcome := submissionOutcome(err)
		observability.Submissions().WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == "error" {
			s.logger.Error().Err(err).Uint("assessment_id", assessmentID).Uint("student_id", actor.ID).Msg("submission failed")
		}
		return dto.ResultResponse{}, err
	}

	observability.Submissions().WithLabelValues("graded").Inc()
	if totalMarks > 0 {
		observability.SubmissionScore().Observe(result.MarksObtained / totalMarks)
	}
	span.SetAttributes(attribute.Float64("grading.score", result.MarksObtained))

	s.cache.invalidate(ctx, result.StudentID)
	s.publish(ctx, EventResultGraded, actor, result)
	s.audit(ctx, actor, ActionResultSubmitted, result.ID, map[string]interface{}{
		"assessment_id":  result.AssessmentID,
		"marks_obtained": result.MarksObtained,
	})

	return dto.NewResultResponse(result), nil
}

func (s *resultService) OverrideGrade(ctx context.Context, actor Actor, resultID uint, req dto.GradeResultRequest) (dto.ResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.override")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("grading.result_id", int64(resultID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)

	if err := s.validator.Struct(req); err != nil {
		observability.GradeOverrides().WithLabelValues("invalid").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ResultResponse{}, err
	}

	marks := *req.Marks
	var (
		result   models.Result
		previous float64
	)

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		result, err = tx.Results().GetByIDForUpdate(ctx, resultID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResultNotFound
			}
			return err
		}

		assessment, err := tx.Assessments().GetByID(ctx, result.AssessmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssessmentNotFound
			}
			return err
		}

		if marks < 0 || exceedsTotal(marks, assessment.TotalMarks) {
			return ErrInvalidMarks
		}
		marks = clampToTotal(marks, assessment.TotalMarks)

		gradedAt := s.now().UTC()
		gradedBy := actor.ID
		previous = result.MarksObtained
		result.MarksObtained = marks
		result.Status = models.ResultStatusGraded
		result.GradedAt = &gradedAt
		result.GradedBy = &gradedBy
		if req.Feedback != nil {
			result.Feedback = s.sanitizer.Sanitize(strings.TrimSpace(*req.Feedback))
		}

		if err := tx.Results().UpdateGrade(ctx, &result); err != nil {
			return err
		}

		return tx.Results().CreateRevision(ctx, &models.ResultRevision{
			ResultID:      result.ID,
			PreviousMarks: previous,
			Marks:         marks,
			Feedback:      result.Feedback,
			GradedBy:      gradedBy,
			GradedAt:      gradedAt,
		})
	})
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, ErrResultNotFound), errors.Is(err, ErrAssessmentNotFound):
			outcome = "not_found"
		case errors.Is(err, ErrInvalidMarks):
			outcome = "invalid_marks"
		default:
			s.logger.Error().Err(err).Uint("result_id", resultID).Msg("grade override failed")
		}
		observability.GradeOverrides().WithLabelValues(outcome).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return dto.ResultResponse{}, err
	}

	observability.GradeOverrides().WithLabelValues("applied").Inc()
	span.SetAttributes(
		attribute.Float64("grading.previous_marks", previous),
		attribute.Float64("grading.marks", marks),
	)

	s.cache.invalidate(ctx, result.StudentID)
	s.publish(ctx, EventResultOverridden, actor, result)
	s.audit(ctx, actor, ActionResultGraded, result.ID, map[string]interface{}{
		"assessment_id":  result.AssessmentID,
		"student_id":     result.StudentID,
		"previous_marks": previous,
		"marks":          marks,
	})

	return s.Get(ctx, result.ID)
}

func (s *resultService) ListByAssessment(ctx context.Context, assessmentID uint) ([]dto.ResultResponse, error) {
	if _, err := s.store.Assessments().GetByID(ctx, assessmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}

	results, err := s.store.Results().ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewReviewResultResponseSlice(results), nil
}

func (s *resultService) ListByStudent(ctx context.Context, studentID uint) ([]dto.ResultResponse, error) {
	if cached, ok := s.cache.load(ctx, studentID); ok {
		return cached, nil
	}

	results, err := s.store.Results().ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	response := dto.NewTranscriptResultResponseSlice(results)
	s.cache.store(ctx, studentID, response)

	return response, nil
}

func (s *resultService) Get(ctx context.Context, resultID uint) (dto.ResultResponse, error) {
	result, err := s.store.Results().GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResultResponse{}, ErrResultNotFound
		}
		return dto.ResultResponse{}, err
	}

	return dto.NewResultResponse(result), nil
}

func (s *resultService) Delete(ctx context.Context, actor Actor, resultID uint) error {
	ctx, span := s.tracer.Start(ctx, "grading.delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("grading.result_id", int64(resultID)))

	var result models.Result
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		result, err = tx.Results().GetByIDForUpdate(ctx, resultID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResultNotFound
			}
			return err
		}
		if err := tx.Results().Delete(ctx, resultID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResultNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete_failed")
		return err
	}

	s.cache.invalidate(ctx, result.StudentID)
	s.publish(ctx, EventResultDeleted, actor, result)
	s.audit(ctx, actor, ActionResultDeleted, result.ID, map[string]interface{}{
		"assessment_id": result.AssessmentID,
		"student_id":    result.StudentID,
	})

	return nil
}

func (s *resultService) publish(ctx context.Context, eventType string, actor Actor, result models.Result) {
	event := ResultEvent{
		Type:         eventType,
		ResultID:     result.ID,
		AssessmentID: result.AssessmentID,
		StudentID:    result.StudentID,
		Marks:        result.MarksObtained,
		Status:       result.Status,
		ActorID:      actor.ID,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Uint("result_id", result.ID).Msg("failed to publish result event")
	}
}

func (s *resultService) audit(ctx context.Context, actor Actor, action string, id uint, metadata map[string]interface{}) {
	entityID := id
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "result",
		EntityID:   &entityID,
		Metadata:   metadata,
	})
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, ErrAssessmentNotFound):
		return "not_found"
	case errors.Is(err, ErrNotPublished):
		return "not_published"
	case errors.Is(err, ErrDeadlinePassed):
		return "deadline_passed"
	case errors.Is(err, ErrUnknownStudent):
		return "unknown_student"
	case errors.Is(err, ErrUnknownQuestion):
		return "unknown_question"
	case errors.Is(err, ErrAlreadySubmitted):
		return "already_submitted"
	default:
		return "error"
	}
}
