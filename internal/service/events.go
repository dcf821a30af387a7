package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Result event types broadcast after commit.
const (
	EventResultGraded     = "result.graded"
	EventResultOverridden = "result.overridden"
	EventResultDeleted    = "result.deleted"
)

// ResultEvent notifies downstream consumers that a result changed.
type ResultEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ResultID     uint      `json:"result_id"`
	AssessmentID uint      `json:"assessment_id"`
	StudentID    uint      `json:"student_id"`
	Marks        float64   `json:"marks"`
	Status       string    `json:"status,omitempty"`
	ActorID      uint      `json:"actor_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ResultEventPublisher delivers result events to a broker.
type ResultEventPublisher interface {
	Publish(ctx context.Context, event ResultEvent) error
}

type natsResultPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSResultPublisher publishes result events on "<subject>.<kind>", for example
// edusync.results.graded. A nil connection yields a publisher that drops events.
func NewNATSResultPublisher(conn *nats.Conn, subject string) ResultEventPublisher {
	if conn == nil {
		return noopResultPublisher{}
	}
	subject = strings.Trim(strings.TrimSpace(subject), ".")
	if subject == "" {
		subject = "edusync.results"
	}
	return &natsResultPublisher{conn: conn, subject: subject}
}

func (p *natsResultPublisher) Publish(ctx context.Context, event ResultEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish(eventSubject(p.subject, event.Type), payload)
}

func eventSubject(base, eventType string) string {
	kind := strings.TrimPrefix(eventType, "result.")
	if kind == "" {
		kind = "unknown"
	}
	return fmt.Sprintf("%s.%s", base, kind)
}

type noopResultPublisher struct{}

func (noopResultPublisher) Publish(context.Context, ResultEvent) error { return nil }
