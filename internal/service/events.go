package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EnrollmentEvent announces a grading-driven status change so the
// notification subsystem can inform the learner and course staff. Delivery
// is someone else's job; this engine only publishes.
type EnrollmentEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	EnrollmentID uint      `json:"enrollment_id"`
	CourseID     uint      `json:"course_id"`
	StudentID    uint      `json:"student_id"`
	Status       string    `json:"status"`
	FinalGrade   *float64  `json:"final_grade"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EnrollmentEventPublisher publishes enrollment status-change events.
type EnrollmentEventPublisher interface {
	Publish(ctx context.Context, event EnrollmentEvent)
}

type enrollmentEventPublisher struct {
	nats    *nats.Conn
	redis   *redis.Client
	subject string
	channel string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEnrollmentEventPublisher constructs a publisher over NATS with an
// optional Redis channel mirror. Either connection may be nil; publication
// is best effort and never fails the grading operation that triggered it.
func NewEnrollmentEventPublisher(natsConn *nats.Conn, redisClient *redis.Client, channelBase string, logger zerolog.Logger) EnrollmentEventPublisher {
	return &enrollmentEventPublisher{
		nats:    natsConn,
		redis:   redisClient,
		subject: channelBase + ".enrollments",
		channel: channelBase + ":enrollments",
		logger:  logger.With().Str("component", "enrollment_events").Logger(),
		now:     time.Now,
	}
}

func (p *enrollmentEventPublisher) Publish(ctx context.Context, event EnrollmentEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to marshal enrollment event")
		return
	}

	if p.nats != nil {
		if err := p.nats.Publish(p.subject, payload); err != nil {
			p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish enrollment event to nats")
		}
	}

	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("channel", p.channel).Msg("failed to publish enrollment event to redis")
		}
	}
}
