package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Domain event names, published under the configured subject prefix.
const (
	EventEnrollmentCreated   = "enrollment.created"
	EventEnrollmentCompleted = "enrollment.completed"
	EventSubmissionCreated   = "submission.created"
	EventSubmissionGraded    = "submission.graded"
	EventQuizAttempted       = "quiz.attempted"
)

// EventPublisher emits fire-and-forget domain events. Publish never fails
// the calling request.
type EventPublisher interface {
	Publish(ctx context.Context, event string, data interface{})
}

// EventEnvelope is the JSON document sent for every event.
type EventEnvelope struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// NoopEventPublisher discards events. Used when no broker is configured.
type NoopEventPublisher struct{}

// Publish implements EventPublisher.
func (NoopEventPublisher) Publish(context.Context, string, interface{}) {}

type natsEventPublisher struct {
	publish func(subject string, payload []byte) error
	prefix  string
	logger  zerolog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// NewNATSEventPublisher publishes events on conn. A nil connection yields a
// publisher that drops events.
func NewNATSEventPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) EventPublisher {
	if conn == nil {
		return NoopEventPublisher{}
	}
	return newSubjectPublisher(conn.Publish, prefix, logger)
}

func newSubjectPublisher(publish func(string, []byte) error, prefix string, logger zerolog.Logger) *natsEventPublisher {
	return &natsEventPublisher{
		publish: publish,
		prefix:  strings.Trim(strings.ReplaceAll(prefix, ":", "."), "."),
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/gema-lms-api/internal/service/events"),
		now:     time.Now,
	}
}

func (p *natsEventPublisher) Publish(ctx context.Context, event string, data interface{}) {
	subject := event
	if p.prefix != "" {
		subject = p.prefix + "." + event
	}

	_, span := p.tracer.Start(ctx, "events.publish", trace.WithAttributes(attribute.String("event.subject", subject)))
	defer span.End()

	payload, err := json.Marshal(EventEnvelope{Event: event, OccurredAt: p.now().UTC(), Data: data})
	if err != nil {
		span.RecordError(err)
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := p.publish(subject, payload); err != nil {
		span.RecordError(err)
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
