package ai

import "context"

// FeedbackItem is one question of a graded attempt as seen by the model.
type FeedbackItem struct {
	Question       string
	Options        map[string]string
	CorrectAnswer  string
	SelectedAnswer string
	Marks          float64
	Correct        bool
}

// FeedbackInput contains what the model needs to comment on a graded attempt.
type FeedbackInput struct {
	AssessmentTitle string
	AssessmentType  string
	Description     string
	TotalMarks      float64
	MarksObtained   float64
	Items           []FeedbackItem
}

// FeedbackSuggestion is the drafted feedback returned by the generator.
type FeedbackSuggestion struct {
	Feedback string
	Model    string
}

// FeedbackGenerator drafts constructive feedback for a graded attempt.
type FeedbackGenerator interface {
	SuggestFeedback(ctx context.Context, input FeedbackInput) (FeedbackSuggestion, error)
}
