package dto

import (
	"time"

	"github.com/noah-isme/edusync-go-api/internal/models"
)

// AnswerSubmission is one selected choice for one question.
type AnswerSubmission struct {
	QuestionID     uint   `json:"question_id" validate:"required,gt=0"`
	SelectedAnswer string `json:"selected_answer"`
}

// SubmitAssessmentRequest is the body of a student submission.
type SubmitAssessmentRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"dive"`
}

// GradeResultRequest overrides the score of a result.
type GradeResultRequest struct {
	Marks    *float64 `json:"marks" validate:"required"`
	Feedback *string  `json:"feedback" validate:"omitempty,max=4000"`
}

// ResultRevisionResponse serializes one override entry.
type ResultRevisionResponse struct {
	PreviousMarks float64   `json:"previous_marks"`
	Marks         float64   `json:"marks"`
	Feedback      string    `json:"feedback"`
	GradedBy      uint      `json:"graded_by"`
	GradedAt      time.Time `json:"graded_at"`
}

// ResultResponse is the summary of a graded attempt. Enrichment fields depend on the query.
type ResultResponse struct {
	ID              uint                     `json:"id"`
	AssessmentID    uint                     `json:"assessment_id"`
	StudentID       uint                     `json:"student_id"`
	SubmissionDate  time.Time                `json:"submission_date"`
	MarksObtained   float64                  `json:"marks_obtained"`
	Status          string                   `json:"status"`
	Feedback        string                   `json:"feedback,omitempty"`
	GradedAt        *time.Time               `json:"graded_at"`
	GradedBy        *uint                    `json:"graded_by,omitempty"`
	AssessmentTitle string                   `json:"assessment_title,omitempty"`
	CourseTitle     string                   `json:"course_title,omitempty"`
	TotalMarks      *float64                 `json:"total_marks,omitempty"`
	StudentName     string                   `json:"student_name,omitempty"`
	Revisions       []ResultRevisionResponse `json:"revisions,omitempty"`
}

// NewResultResponse converts a Result model into its base DTO.
func NewResultResponse(model models.Result) ResultResponse {
	response := ResultResponse{
		ID:             model.ID,
		AssessmentID:   model.AssessmentID,
		StudentID:      model.StudentID,
		SubmissionDate: model.SubmissionDate,
		MarksObtained:  model.MarksObtained,
		Status:         model.Status,
		Feedback:       model.Feedback,
		GradedAt:       model.GradedAt,
		GradedBy:       model.GradedBy,
	}

	if len(model.Revisions) > 0 {
		revisions := make([]ResultRevisionResponse, 0, len(model.Revisions))
		for _, revision := range model.Revisions {
			revisions = append(revisions, ResultRevisionResponse{
				PreviousMarks: revision.PreviousMarks,
				Marks:         revision.Marks,
				Feedback:      revision.Feedback,
				GradedBy:      revision.GradedBy,
				GradedAt:      revision.GradedAt,
			})
		}
		response.Revisions = revisions
	}

	return response
}

// NewReviewResultResponse adds the student's display name for instructor review.
func NewReviewResultResponse(model models.Result) ResultResponse {
	response := NewResultResponse(model)
	if model.Student.ID != 0 {
		response.StudentName = model.Student.DisplayName()
	}
	return response
}

// NewTranscriptResultResponse adds assessment title, course title and total marks for the student view.
func NewTranscriptResultResponse(model models.Result) ResultResponse {
	response := NewResultResponse(model)
	if model.Assessment.ID != 0 {
		total := model.Assessment.TotalMarks
		response.AssessmentTitle = model.Assessment.Title
		response.TotalMarks = &total
		response.CourseTitle = model.Assessment.Course.Title
	}
	return response
}

// NewReviewResultResponseSlice converts results for the per-assessment listing.
func NewReviewResultResponseSlice(results []models.Result) []ResultResponse {
	responses := make([]ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, NewReviewResultResponse(result))
	}
	return responses
}

// NewTranscriptResultResponseSlice converts results for the per-student listing.
func NewTranscriptResultResponseSlice(results []models.Result) []ResultResponse {
	responses := make([]ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, NewTranscriptResultResponse(result))
	}
	return responses
}

// FeedbackSuggestionResponse carries AI drafted feedback for an instructor to review.
type FeedbackSuggestionResponse struct {
	ResultID uint   `json:"result_id"`
	Feedback string `json:"feedback"`
	Model    string `json:"model"`
}
