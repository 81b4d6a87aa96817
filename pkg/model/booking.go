package model

import (
	"math"
	"time"
)

// SystemActor is the sentinel cancelled_by value for system-initiated
// cancellations, which bypass the party check but not the lifecycle rules.
const SystemActor = "system"

type Booking struct {
	ID             string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid4"`
	ClientID       string           `json:"client_id" bson:"client_id" validate:"required"`
	ProfessionalID string           `json:"professional_id" bson:"professional_id" validate:"required"`
	// AppointmentStart is the canonical UTC instant. AppointmentEnd is derived
	// from the duration and persisted so overlap queries stay index-friendly.
	AppointmentStart time.Time        `json:"appointment_start" bson:"appointment_start" validate:"required"`
	AppointmentEnd   time.Time        `json:"appointment_end" bson:"appointment_end" validate:"required,gtfield=AppointmentStart"`
	DurationMinutes  int              `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=15,max=480"`
	ConsultationType ConsultationType `json:"consultation_type" bson:"consultation_type" validate:"required,oneof=in_person virtual phone"`
	Status           BookingStatus    `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled rescheduled"`
	TotalAmount      float64          `json:"total_amount" bson:"total_amount" validate:"gte=0"`

	Notes          string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	MeetingLink    string `json:"meeting_link,omitempty" bson:"meeting_link,omitempty" validate:"omitempty,url"`
	MeetingPhone   string `json:"meeting_phone,omitempty" bson:"meeting_phone,omitempty"`
	MeetingAddress string `json:"meeting_address,omitempty" bson:"meeting_address,omitempty" validate:"omitempty,max=300"`

	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledBy        string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty" validate:"omitempty,max=500"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Display names resolved from the party directory. Enrichment only,
	// never persisted.
	ClientName       string `json:"client_name,omitempty" bson:"-"`
	ProfessionalName string `json:"professional_name,omitempty" bson:"-"`
}

// IsParty reports whether the given user is one of the two booking parties.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (userID == b.ClientID || userID == b.ProfessionalID)
}

// EndFor computes the exclusive end instant of a slot.
func EndFor(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// TotalAmount prices an appointment: hourlyRate * minutes/60, rounded to two
// decimals (half away from zero). Deterministic for a given rate and duration.
func TotalAmount(hourlyRate float64, durationMinutes int) float64 {
	amount := hourlyRate * float64(durationMinutes) / 60
	return math.Round(amount*100) / 100
}

// BookingRequest is the create payload. AppointmentTime carries the caller's
// wall-clock instant; the service reinterprets it in the professional's
// declared timezone.
type BookingRequest struct {
	ProfessionalID   string    `json:"professional_id" validate:"required"`
	AppointmentTime  time.Time `json:"appointment_time" validate:"required"`
	DurationMinutes  int       `json:"duration_minutes" validate:"omitempty,min=15,max=480"`
	ConsultationType string    `json:"consultation_type" validate:"required"`
	Notes            string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
	MeetingLink      string    `json:"meeting_link,omitempty" validate:"omitempty,url"`
	MeetingPhone     string    `json:"meeting_phone,omitempty"`
	MeetingAddress   string    `json:"meeting_address,omitempty" validate:"omitempty,max=300"`
}

// BookingUpdate is the partial-update payload. Nil fields are left unchanged.
type BookingUpdate struct {
	AppointmentTime  *time.Time `json:"appointment_time,omitempty"`
	DurationMinutes  *int       `json:"duration_minutes,omitempty" validate:"omitempty,min=15,max=480"`
	ConsultationType string     `json:"consultation_type,omitempty"`
	Notes            *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
	MeetingLink      *string    `json:"meeting_link,omitempty" validate:"omitempty,url"`
	MeetingPhone     *string    `json:"meeting_phone,omitempty"`
	MeetingAddress   *string    `json:"meeting_address,omitempty" validate:"omitempty,max=300"`
	Status           string     `json:"status,omitempty"`

	// CancellationReason is only honoured when Status moves to cancelled.
	CancellationReason *string `json:"cancellation_reason,omitempty" validate:"omitempty,max=500"`
}

// BookingFilter narrows listing queries. Zero values are ignored.
type BookingFilter struct {
	Status         BookingStatus
	ProfessionalID string
	ClientID       string
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int64
}
