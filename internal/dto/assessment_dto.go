package dto

import (
	"time"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

// QuestionRequest carries a question, including its answer key, on create and update.
type QuestionRequest struct {
	QuestionText  string  `json:"question_text" validate:"required"`
	OptionA       string  `json:"option_a" validate:"required"`
	OptionB       string  `json:"option_b" validate:"required"`
	OptionC       string  `json:"option_c" validate:"required"`
	OptionD       string  `json:"option_d" validate:"required"`
	CorrectAnswer string  `json:"correct_answer" validate:"required,oneof=A B C D a b c d"`
	Marks         float64 `json:"marks" validate:"gte=0"`
}

// AssessmentCreateRequest describes the payload for creating a new assessment.
type AssessmentCreateRequest struct {
	Title       string            `json:"title" validate:"required,min=3,max=255"`
	Description string            `json:"description" validate:"required"`
	CourseID    uint              `json:"course_id" validate:"required,gt=0"`
	DueDate     time.Time         `json:"due_date" validate:"required"`
	TotalMarks  float64           `json:"total_marks" validate:"gt=0"`
	Type        string            `json:"type" validate:"required,max=64"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// AssessmentUpdateRequest describes a partial update. A non-nil Questions slice replaces the question set.
type AssessmentUpdateRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string           `json:"description" validate:"omitempty,min=1"`
	DueDate     *time.Time        `json:"due_date"`
	TotalMarks  *float64          `json:"total_marks" validate:"omitempty,gt=0"`
	Type        *string           `json:"type" validate:"omitempty,min=1,max=64"`
	Questions   []QuestionRequest `json:"questions" validate:"omitnil,min=1,dive"`
}

// ReplacesQuestions reports whether the update swaps the question set.
func (r AssessmentUpdateRequest) ReplacesQuestions() bool {
	return r.Questions != nil
}

// QuestionResponse is the read shape of a question. It never carries the answer key.
type QuestionResponse struct {
	ID           uint    `json:"id"`
	QuestionText string  `json:"question_text"`
	OptionA      string  `json:"option_a"`
	OptionB      string  `json:"option_b"`
	OptionC      string  `json:"option_c"`
	OptionD      string  `json:"option_d"`
	Marks        float64 `json:"marks"`
}

// AssessmentResponse is the serialized representation returned to API clients.
type AssessmentResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CourseID    uint               `json:"course_id"`
	DueDate     time.Time          `json:"due_date"`
	TotalMarks  float64            `json:"total_marks"`
	Type        string             `json:"type"`
	IsPublished bool               `json:"is_published"`
	State       string             `json:"state"`
	PublishedAt *time.Time         `json:"published_at"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Questions   []QuestionResponse `json:"questions"`
}

// NewAssessmentResponse converts a model into a DTO, deriving the state at the reference instant.
func NewAssessmentResponse(model models.Assessment, reference time.Time) AssessmentResponse {
	questions := make([]QuestionResponse, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, QuestionResponse{
			ID:           question.ID,
			QuestionText: question.QuestionText,
			OptionA:      question.OptionA,
			OptionB:      question.OptionB,
			OptionC:      question.OptionC,
			OptionD:      question.OptionD,
			Marks:        question.Marks,
		})
	}

	return AssessmentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		CourseID:    model.CourseID,
		DueDate:     model.DueDate,
		TotalMarks:  model.TotalMarks,
		Type:        model.Type,
		IsPublished: model.IsPublished,
		State:       string(model.State(reference)),
		PublishedAt: model.PublishedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Questions:   questions,
	}
}

// NewAssessmentResponseSlice converts a slice of models into DTOs.
func NewAssessmentResponseSlice(assessments []models.Assessment, reference time.Time) []AssessmentResponse {
	responses := make([]AssessmentResponse, 0, len(assessments))
	for _, assessment := range assessments {
		responses = append(responses, NewAssessmentResponse(assessment, reference))
	}

	return responses
}
