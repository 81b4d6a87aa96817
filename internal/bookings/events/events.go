package events

import (
	"context"
	"time"

	"proconnect/pkg/kafka"
	"proconnect/pkg/logger"
	"proconnect/pkg/model"
)

const (
	SourceService = "bookings"

	TypeBookingCreated     = "booking.created"
	TypeBookingConfirmed   = "booking.confirmed"
	TypeBookingCompleted   = "booking.completed"
	TypeBookingCancelled   = "booking.cancelled"
	TypeBookingRescheduled = "booking.rescheduled"
)

// Publisher emits booking lifecycle facts for downstream consumers
// (reminders, analytics). Emission is best-effort: a publish failure is
// logged and never fails the booking operation that triggered it.
type Publisher interface {
	BookingChanged(ctx context.Context, eventType string, booking *model.Booking)
}

type bookingEvent struct {
	BookingID        string    `json:"booking_id"`
	ClientID         string    `json:"client_id"`
	ProfessionalID   string    `json:"professional_id"`
	Status           string    `json:"status"`
	AppointmentStart time.Time `json:"appointment_start"`
	DurationMinutes  int       `json:"duration_minutes"`
	OccurredAt       time.Time `json:"occurred_at"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) BookingChanged(ctx context.Context, eventType string, booking *model.Booking) {
	msg := kafka.NewMessage().
		WithKey(booking.ProfessionalID).
		WithEventType(eventType).
		WithSource(SourceService).
		WithValue(bookingEvent{
			BookingID:        booking.ID,
			ClientID:         booking.ClientID,
			ProfessionalID:   booking.ProfessionalID,
			Status:           booking.Status.String(),
			AppointmentStart: booking.AppointmentStart,
			DurationMinutes:  booking.DurationMinutes,
			OccurredAt:       time.Now().UTC(),
		}).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
