package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edusync",
		Subsystem: "ai",
		Name:      "feedback_duration_seconds",
		Help:      "Duration of AI feedback requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edusync",
		Subsystem: "ai",
		Name:      "feedback_failures_total",
		Help:      "Number of AI feedback failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI feedback generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIFeedbackGenerator implements FeedbackGenerator against the chat completion API.
type OpenAIFeedbackGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIFeedbackGenerator builds a generator using the provided configuration.
func NewOpenAIFeedbackGenerator(cfg OpenAIConfig) (*OpenAIFeedbackGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 600
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIFeedbackGenerator{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/edusync-go-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_feedback").Logger(),
	}, nil
}

// Model reports the configured model name.
func (g *OpenAIFeedbackGenerator) Model() string {
	return g.cfg.Model
}

// SuggestFeedback asks the model for constructive feedback on a graded attempt.
func (g *OpenAIFeedbackGenerator) SuggestFeedback(parent context.Context, input FeedbackInput) (FeedbackSuggestion, error) {
	ctx, span := g.tracer.Start(parent, "openai.suggest_feedback", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("feedback.items", len(input.Items)),
	))
	defer span.End()

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: feedbackSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: BuildFeedbackPrompt(input)},
		},
	})
	aiDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FeedbackSuggestion{}, fmt.Errorf("openai feedback: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FeedbackSuggestion{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		err := fmt.Errorf("empty feedback returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FeedbackSuggestion{}, err
	}

	g.logger.Debug().Int("total_tokens", resp.Usage.TotalTokens).Msg("feedback generated")

	return FeedbackSuggestion{Feedback: content, Model: resp.Model}, nil
}

func feedbackSystemPrompt() string {
	return "You are a supportive teaching assistant. Given an assessment and a student's graded answers, " +
		"write short constructive feedback addressed to the student. Point out the topics to revisit " +
		"without revealing answer keys verbatim. Reply in plain text."
}

// BuildFeedbackPrompt renders the user prompt for a graded attempt.
func BuildFeedbackPrompt(input FeedbackInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Assessment\n")
	builder.WriteString(input.AssessmentTitle)
	if input.AssessmentType != "" {
		builder.WriteString(" (")
		builder.WriteString(input.AssessmentType)
		builder.WriteString(")")
	}
	if input.Description != "" {
		builder.WriteString("\n\n")
		builder.WriteString(input.Description)
	}
	builder.WriteString(fmt.Sprintf("\n\n## Score\n%.2f / %.2f\n", input.MarksObtained, input.TotalMarks))

	for i, item := range input.Items {
		builder.WriteString(fmt.Sprintf("\n## Question %d (%.2f marks)\n", i+1, item.Marks))
		builder.WriteString(item.Question)
		builder.WriteString("\n")

		letters := make([]string, 0, len(item.Options))
		for letter := range item.Options {
			letters = append(letters, letter)
		}
		sort.Strings(letters)
		for _, letter := range letters {
			builder.WriteString(fmt.Sprintf("%s) %s\n", letter, item.Options[letter]))
		}

		selected := item.SelectedAnswer
		if selected == "" {
			selected = "(no answer)"
		}
		builder.WriteString(fmt.Sprintf("Student answer: %s\n", selected))
		if item.Correct {
			builder.WriteString("Result: correct\n")
		} else {
			builder.WriteString(fmt.Sprintf("Result: incorrect, expected %s\n", item.CorrectAnswer))
		}
	}

	return builder.String()
}
