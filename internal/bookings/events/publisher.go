package events

import (
	"agendo/pkg/kafka"
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"context"
	"time"
)

const (
	EventCreated       = "booking.created"
	EventRescheduled   = "booking.rescheduled"
	EventUpdated       = "booking.updated"
	EventStatusChanged = "booking.status_changed"

	schemaVersion = "1"
)

type BookingEvent struct {
	Type           string              `json:"type"`
	TenantID       string              `json:"tenant_id"`
	Booking        *model.Booking      `json:"booking"`
	PreviousStatus model.BookingStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// Publisher emits booking events after commit. Publishing is best effort:
// failures are logged and never undo the booking write.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent)
}

type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessageProducer
	source   string
	log      *logger.Logger
}

func NewKafkaPublisher(producer MessageProducer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, source: source, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(event.TenantID).
		WithEventType(event.Type).
		WithTenantID(event.TenantID).
		WithSource(p.source).
		WithSchemaVersion(schemaVersion).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithValue(event).
		Build()
	if err != nil {
		p.log.Error("Failed to encode booking event", "event_type", event.Type, "error", err)
		return
	}

	if err := p.producer.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.log.Warn("Failed to publish booking event",
			"event_type", event.Type,
			"tenant_id", event.TenantID,
			"booking_id", event.Booking.ID,
			"error", err,
		)
	}
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, BookingEvent) {}
