package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBuildFeedbackPromptListsAnswers(t *testing.T) {
	prompt := BuildFeedbackPrompt(FeedbackInput{
		AssessmentTitle: "Quiz 1",
		AssessmentType:  "Quiz",
		TotalMarks:      5,
		MarksObtained:   3,
		Items: []FeedbackItem{
			{Question: "2+2?", Options: map[string]string{"B": "5", "A": "4"}, CorrectAnswer: "A", SelectedAnswer: "A", Marks: 3, Correct: true},
			{Question: "Capital of France?", Options: map[string]string{"A": "Rome", "B": "Paris"}, CorrectAnswer: "B", Marks: 2},
		},
	})

	require.Contains(t, prompt, "Quiz 1 (Quiz)")
	require.Contains(t, prompt, "3.00 / 5.00")
	require.Contains(t, prompt, "A) 4\nB) 5")
	require.Contains(t, prompt, "Student answer: (no answer)")
	require.Contains(t, prompt, "expected B")
}

func TestNewOpenAIFeedbackGeneratorRequiresKey(t *testing.T) {
	_, err := NewOpenAIFeedbackGenerator(OpenAIConfig{})
	require.Error(t, err)
}

func TestSuggestFeedbackUsesChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "  Review fractions.  "}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13},
		})
	}))
	defer server.Close()

	generator, err := NewOpenAIFeedbackGenerator(OpenAIConfig{APIKey: "test", BaseURL: server.URL, Logger: zerolog.Nop()})
	require.NoError(t, err)

	suggestion, err := generator.SuggestFeedback(context.Background(), FeedbackInput{AssessmentTitle: "Quiz"})
	require.NoError(t, err)
	require.Equal(t, "Review fractions.", suggestion.Feedback)
	require.Equal(t, "gpt-4o-mini", suggestion.Model)
}
