package validator

import (
	"strings"
	"testing"
	"time"

	"proconnect/pkg/logger"
	"proconnect/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	start := time.Now().Add(48 * time.Hour).UTC()
	return &model.Booking{
		ID:               "9f86d081-7f30-4c47-9a7e-bb1de1c2a44e",
		ClientID:         "client-1",
		ProfessionalID:   "prof-1",
		AppointmentStart: start,
		AppointmentEnd:   start.Add(time.Hour),
		DurationMinutes:  60,
		ConsultationType: model.ConsultationVirtual,
		Status:           model.StatusPending,
		TotalAmount:      50,
	}
}

func TestValidateBooking_Valid(t *testing.T) {
	v := newTestValidator()
	if err := v.ValidateBooking(validBooking()); err != nil {
		t.Errorf("unexpected error for valid booking: %v", err)
	}
}

func TestValidateBooking_DurationBounds(t *testing.T) {
	v := newTestValidator()

	b := validBooking()
	b.DurationMinutes = 10
	if err := v.ValidateBooking(b); err == nil {
		t.Error("expected error for duration below 15 minutes")
	}

	b = validBooking()
	b.DurationMinutes = 481
	if err := v.ValidateBooking(b); err == nil {
		t.Error("expected error for duration above 480 minutes")
	}
}

func TestValidateBooking_NotesTooLong(t *testing.T) {
	v := newTestValidator()

	b := validBooking()
	b.Notes = strings.Repeat("a", 1001)
	if err := v.ValidateBooking(b); err == nil {
		t.Error("expected error for notes over 1000 characters")
	}
}

func TestValidateBooking_EndBeforeStart(t *testing.T) {
	v := newTestValidator()

	b := validBooking()
	b.AppointmentEnd = b.AppointmentStart.Add(-time.Hour)
	if err := v.ValidateBooking(b); err == nil {
		t.Error("expected error when appointment_end precedes appointment_start")
	}
}

func TestValidateRequest_MissingFields(t *testing.T) {
	v := newTestValidator()

	err := v.ValidateRequest(&model.BookingRequest{})
	if err == nil {
		t.Fatal("expected errors for empty request")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 3 {
		t.Errorf("expected at least 3 field errors, got %d: %v", len(verrs), verrs)
	}
}

func TestValidateRequest_BadMeetingLink(t *testing.T) {
	v := newTestValidator()

	req := &model.BookingRequest{
		ProfessionalID:   "prof-1",
		AppointmentTime:  time.Now().Add(24 * time.Hour),
		DurationMinutes:  60,
		ConsultationType: "virtual",
		MeetingLink:      "not a url",
	}
	if err := v.ValidateRequest(req); err == nil {
		t.Error("expected error for malformed meeting link")
	}
}

func TestValidateUpdate_DurationBounds(t *testing.T) {
	v := newTestValidator()

	tooShort := 5
	if err := v.ValidateUpdate(&model.BookingUpdate{DurationMinutes: &tooShort}); err == nil {
		t.Error("expected error for duration below minimum")
	}

	ok := 45
	if err := v.ValidateUpdate(&model.BookingUpdate{DurationMinutes: &ok}); err != nil {
		t.Errorf("unexpected error for valid duration: %v", err)
	}
}

func TestValidationErrors_Message(t *testing.T) {
	errs := ValidationErrors{
		{Field: "DurationMinutes", Message: "DurationMinutes must be at least 15"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "DurationMinutes") {
		t.Errorf("error text should name the field, got %q", msg)
	}
}
