package model

import "time"

// ProfessionalStatus is the availability status of a service provider's
// profile. Only active professionals accept bookings.
type ProfessionalStatus string

const (
	ProfessionalActive    ProfessionalStatus = "active"
	ProfessionalInactive  ProfessionalStatus = "inactive"
	ProfessionalSuspended ProfessionalStatus = "suspended"
)

// Professional is the slice of the provider profile the booking engine
// consumes: rate for pricing, status for gating, timezone for normalization.
// Profile ownership lives in the profiles service.
type Professional struct {
	ID          string             `json:"id" bson:"_id"`
	DisplayName string             `json:"display_name" bson:"display_name"`
	HourlyRate  float64            `json:"hourly_rate" bson:"hourly_rate"`
	Status      ProfessionalStatus `json:"status" bson:"status"`
	Timezone    string             `json:"timezone" bson:"timezone"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

func (p *Professional) AcceptsBookings() bool {
	return p.Status == ProfessionalActive
}
