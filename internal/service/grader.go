package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/edusync-go-api/internal/dto"
	"github.com/noah-isme/edusync-go-api/internal/models"
)

// GradeAnswers scores answers against the question set of an assessment.
//
// Every answer must reference one of the given questions, otherwise the whole
// submission is rejected with ErrUnknownQuestion. When a question is answered
// more than once the last answer counts. Unanswered questions and choices outside
// A-D contribute nothing.
func GradeAnswers(questions []models.Question, answers []dto.AnswerSubmission) (float64, error) {
	latest, err := latestAnswers(questions, answers)
	if err != nil {
		return 0, err
	}

	var score float64
	for _, question := range questions {
		choice, answered := latest[question.ID]
		if answered && question.Accepts(choice) {
			score += question.Marks
		}
	}

	return score, nil
}

// NormalizeAnswers returns one answer per question, ordered by question id, with
// the choice upper-cased. Invalid choices are kept verbatim for the audit trail.
func NormalizeAnswers(questions []models.Question, answers []dto.AnswerSubmission) ([]dto.AnswerSubmission, error) {
	latest, err := latestAnswers(questions, answers)
	if err != nil {
		return nil, err
	}

	normalized := make([]dto.AnswerSubmission, 0, len(latest))
	for questionID, choice := range latest {
		if upper, ok := models.NormalizeChoice(choice); ok {
			choice = upper
		}
		normalized = append(normalized, dto.AnswerSubmission{QuestionID: questionID, SelectedAnswer: choice})
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].QuestionID < normalized[j].QuestionID
	})

	return normalized, nil
}

func latestAnswers(questions []models.Question, answers []dto.AnswerSubmission) (map[uint]string, error) {
	known := make(map[uint]struct{}, len(questions))
	for _, question := range questions {
		known[question.ID] = struct{}{}
	}

	latest := make(map[uint]string, len(answers))
	for _, answer := range answers {
		if _, ok := known[answer.QuestionID]; !ok {
			return nil, fmt.Errorf("%w: question %d", ErrUnknownQuestion, answer.QuestionID)
		}
		latest[answer.QuestionID] = answer.SelectedAnswer
	}

	return latest, nil
}
