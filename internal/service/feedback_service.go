package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
	"github.com/noah-isme/edusync-go-api/internal/repository"
	"github.com/noah-isme/edusync-go-api/pkg/ai"
)

// FeedbackService drafts feedback for a graded result. Drafts are returned, never stored.
type FeedbackService interface {
	Suggest(ctx context.Context, resultID uint) (dto.FeedbackSuggestionResponse, error)
}

type feedbackService struct {
	store     repository.Store
	generator ai.FeedbackGenerator
	logger    zerolog.Logger
}

// NewFeedbackService constructs the feedback assistant. generator may be nil.
func NewFeedbackService(store repository.Store, generator ai.FeedbackGenerator, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		store:     store,
		generator: generator,
		logger:    logger.With().Str("component", "feedback_service").Logger(),
	}
}

func (s *feedbackService) Suggest(ctx context.Context, resultID uint) (dto.FeedbackSuggestionResponse, error) {
	if s.generator == nil {
		return dto.FeedbackSuggestionResponse{}, ErrFeedbackUnavailable
	}

	result, err := s.store.Results().GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackSuggestionResponse{}, ErrResultNotFound
		}
		return dto.FeedbackSuggestionResponse{}, err
	}

	assessment, err := s.store.Assessments().GetByID(ctx, result.AssessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackSuggestionResponse{}, ErrAssessmentNotFound
		}
		return dto.FeedbackSuggestionResponse{}, err
	}

	input := buildFeedbackInput(assessment, result, s.decodeAnswers(result))
	suggestion, err := s.generator.SuggestFeedback(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Uint("result_id", resultID).Msg("feedback generation failed")
		return dto.FeedbackSuggestionResponse{}, err
	}

	return dto.FeedbackSuggestionResponse{
		ResultID: result.ID,
		Feedback: suggestion.Feedback,
		Model:    suggestion.Model,
	}, nil
}

func (s *feedbackService) decodeAnswers(result models.Result) map[uint]string {
	selected := map[uint]string{}
	if len(result.Answers) == 0 {
		return selected
	}

	var answers []dto.AnswerSubmission
	if err := json.Unmarshal(result.Answers, &answers); err != nil {
		s.logger.Warn().Err(err).Uint("result_id", result.ID).Msg("stored answers are unreadable")
		return selected
	}
	for _, answer := range answers {
		selected[answer.QuestionID] = answer.SelectedAnswer
	}
	return selected
}

func buildFeedbackInput(assessment models.Assessment, result models.Result, selected map[uint]string) ai.FeedbackInput {
	items := make([]ai.FeedbackItem, 0, len(assessment.Questions))
	for _, question := range assessment.Questions {
		choice := selected[question.ID]
		items = append(items, ai.FeedbackItem{
			Question: question.QuestionText,
			Options: map[string]string{
				models.ChoiceA: question.OptionA,
				models.ChoiceB: question.OptionB,
				models.ChoiceC: question.OptionC,
				models.ChoiceD: question.OptionD,
			},
			CorrectAnswer:  question.CorrectAnswer,
			SelectedAnswer: choice,
			Marks:          question.Marks,
			Correct:        question.Accepts(choice),
		})
	}

	return ai.FeedbackInput{
		AssessmentTitle: assessment.Title,
		AssessmentType:  assessment.Type,
		Description:     assessment.Description,
		TotalMarks:      assessment.TotalMarks,
		MarksObtained:   result.MarksObtained,
		Items:           items,
	}
}
