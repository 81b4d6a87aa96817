package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	bookingserrors "proconnect/internal/bookings/errors"
	"proconnect/internal/bookings/events"
	apperrors "proconnect/pkg/errors"
	"proconnect/pkg/model"
	"proconnect/pkg/sanitizer"
	"proconnect/pkg/timezone"
)

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate, requesterID string) (*model.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.IsParty(requesterID) {
		return nil, apperrors.Forbidden("only booking parties may modify this booking")
	}
	if !booking.Status.CanBeModified() {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("%s bookings cannot be modified", booking.Status))
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	merged := *booking

	dateChanged, err := s.applyReschedule(ctx, &merged, updates)
	if err != nil {
		return nil, err
	}

	durationChanged := updates.DurationMinutes != nil && *updates.DurationMinutes != booking.DurationMinutes
	if durationChanged {
		merged.DurationMinutes = *updates.DurationMinutes
		// The amount is recomputed from the professional's current rate so a
		// resized appointment never carries a stale price.
		professional, err := s.professionals.FindByID(ctx, merged.ProfessionalID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrProfessionalNotFound) {
				return nil, apperrors.NotFoundWithID("Professional", merged.ProfessionalID)
			}
			return nil, apperrors.Internal("Failed to resolve professional", err)
		}
		merged.TotalAmount = model.TotalAmount(professional.HourlyRate, merged.DurationMinutes)
	}
	merged.AppointmentEnd = model.EndFor(merged.AppointmentStart, merged.DurationMinutes)

	if err := s.applyFieldUpdates(&merged, updates); err != nil {
		return nil, err
	}

	statusChanged, err := s.applyStatusUpdate(&merged, booking, updates, requesterID, dateChanged)
	if err != nil {
		return nil, err
	}

	merged.UpdatedAt = time.Now().UTC()

	if err := s.validator.ValidateBooking(&merged); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if dateChanged || durationChanged {
		if err := s.persistWithSlotGuard(ctx, &merged); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Update(ctx, merged.ID, &merged); err != nil {
			s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to update booking", err)
		}
	}

	switch {
	case statusChanged:
		s.publish(ctx, eventForStatus(merged.Status), &merged)
	case dateChanged:
		s.publish(ctx, events.TypeBookingRescheduled, &merged)
	}

	s.enrich(ctx, &merged)

	s.cfg.Log.Info("Booking updated successfully", "id", merged.ID, "status", merged.Status)
	return &merged, nil
}

// applyReschedule moves the appointment when the update carries a new time.
// The new instant is re-anchored in the professional's timezone and the
// booking transitions to rescheduled. Reports whether the date changed.
func (s *bookingService) applyReschedule(ctx context.Context, merged *model.Booking, updates *model.BookingUpdate) (bool, error) {
	if updates.AppointmentTime == nil {
		return false, nil
	}

	if !updates.AppointmentTime.After(time.Now()) {
		return false, apperrors.InvalidOperation("appointment time must be in the future")
	}

	professional, err := s.professionals.FindByID(ctx, merged.ProfessionalID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrProfessionalNotFound) {
			return false, apperrors.NotFoundWithID("Professional", merged.ProfessionalID)
		}
		return false, apperrors.Internal("Failed to resolve professional", err)
	}

	start, known := timezone.Normalize(*updates.AppointmentTime, professional.Timezone)
	if !known {
		s.cfg.Log.Warn("Unknown professional timezone, treating appointment time as UTC",
			"professional_id", professional.ID,
			"timezone", professional.Timezone,
		)
	}

	if start.Equal(merged.AppointmentStart) {
		return false, nil
	}

	if !merged.Status.CanTransitionTo(model.StatusRescheduled) {
		return false, apperrors.InvalidOperation(fmt.Sprintf(
			"cannot transition booking from %s to %s", merged.Status, model.StatusRescheduled,
		))
	}

	merged.AppointmentStart = start
	merged.Status = model.StatusRescheduled
	return true, nil
}

func (s *bookingService) applyFieldUpdates(merged *model.Booking, updates *model.BookingUpdate) error {
	if updates.ConsultationType != "" {
		consultation, err := model.ParseConsultationType(updates.ConsultationType)
		if err != nil {
			return apperrors.InvalidOperation(fmt.Sprintf("unrecognized consultation type: %s", updates.ConsultationType))
		}
		merged.ConsultationType = consultation
	}
	if updates.Notes != nil {
		merged.Notes = sanitizer.SanitizeFreeText(*updates.Notes)
	}
	if updates.MeetingLink != nil {
		merged.MeetingLink = sanitizer.SanitizeURL(*updates.MeetingLink)
	}
	if updates.MeetingPhone != nil {
		merged.MeetingPhone = sanitizer.SanitizePhone(*updates.MeetingPhone)
	}
	if updates.MeetingAddress != nil {
		merged.MeetingAddress = sanitizer.SanitizeAddress(*updates.MeetingAddress)
	}
	return nil
}

// applyStatusUpdate routes an explicit status change through the transition
// table. A cancellation requested this way is subject to the same cutoff and
// metadata rules as the dedicated cancel operation.
func (s *bookingService) applyStatusUpdate(merged *model.Booking, original *model.Booking, updates *model.BookingUpdate, requesterID string, dateChanged bool) (bool, error) {
	if updates.Status == "" {
		return false, nil
	}

	target, err := model.ParseBookingStatus(updates.Status)
	if err != nil {
		return false, apperrors.InvalidOperation(fmt.Sprintf("unrecognized booking status: %s", updates.Status))
	}

	if target == merged.Status {
		return false, nil
	}
	if target == model.StatusRescheduled && !dateChanged {
		return false, apperrors.InvalidOperation("rescheduling requires a new appointment time")
	}

	if !original.Status.CanTransitionTo(target) {
		return false, apperrors.InvalidOperation(fmt.Sprintf(
			"cannot transition booking from %s to %s", original.Status, target,
		))
	}

	// Confirmation is a professional-only act no matter which route it
	// arrives by.
	if target == model.StatusConfirmed && requesterID != merged.ProfessionalID {
		return false, apperrors.Forbidden("only the assigned professional may confirm a booking")
	}

	if target == model.StatusCancelled {
		if err := s.checkCancellationCutoff(merged); err != nil {
			return false, err
		}
		now := time.Now().UTC()
		merged.CancelledAt = &now
		merged.CancelledBy = requesterID
		if updates.CancellationReason != nil {
			merged.CancellationReason = sanitizer.SanitizeFreeText(*updates.CancellationReason)
		}
	}

	merged.Status = target
	return true, nil
}

// persistWithSlotGuard re-checks the target slot under an advisory lock and a
// transaction before writing a booking whose slot footprint changed.
func (s *bookingService) persistWithSlotGuard(ctx context.Context, booking *model.Booking) error {
	lockID, err := s.acquireSlotLock(ctx, booking.ProfessionalID, booking.AppointmentStart)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		conflict, err := s.detector.HasConflict(txCtx, booking.ProfessionalID, booking.AppointmentStart, booking.DurationMinutes, booking.ID)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if conflict {
			return apperrors.Conflict("appointment time conflicts with an existing booking")
		}
		if err := s.repo.Update(txCtx, booking.ID, booking); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", booking.ID, "error", err)
	}
	return err
}

func (s *bookingService) Cancel(ctx context.Context, id string, actorID string, reason string) error {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}

	if actorID != model.SystemActor && !booking.IsParty(actorID) {
		return apperrors.Forbidden("only booking parties may cancel this booking")
	}
	if !booking.Status.CanBeCancelled() {
		return apperrors.InvalidOperation(fmt.Sprintf("%s bookings cannot be cancelled", booking.Status))
	}
	if err := s.checkCancellationCutoff(booking); err != nil {
		return err
	}

	reason = sanitizer.SanitizeFreeText(reason)
	if utf8.RuneCountInString(reason) > 500 {
		return apperrors.InvalidInput("Cancellation reason must not exceed 500 characters")
	}

	now := time.Now().UTC()
	booking.Status = model.StatusCancelled
	booking.CancelledAt = &now
	booking.CancelledBy = actorID
	booking.CancellationReason = reason
	booking.UpdatedAt = now

	if err := s.repo.Update(ctx, booking.ID, booking); err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.publish(ctx, events.TypeBookingCancelled, booking)

	s.cfg.Log.Info("Booking cancelled", "id", id, "cancelled_by", actorID)
	return nil
}

func (s *bookingService) Confirm(ctx context.Context, id string, professionalID string) error {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}

	if booking.ProfessionalID != professionalID {
		return apperrors.Forbidden("only the assigned professional may confirm a booking")
	}
	if booking.Status != model.StatusPending {
		return apperrors.InvalidOperation("only pending bookings can be confirmed")
	}

	booking.Status = model.StatusConfirmed
	booking.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, booking.ID, booking); err != nil {
		s.cfg.Log.Error("Failed to confirm booking", "id", id, "error", err)
		return apperrors.Internal("Failed to confirm booking", err)
	}

	s.publish(ctx, events.TypeBookingConfirmed, booking)

	s.cfg.Log.Info("Booking confirmed", "id", id, "professional_id", professionalID)
	return nil
}

func (s *bookingService) Complete(ctx context.Context, id string, requesterID string) error {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}

	if !booking.IsParty(requesterID) {
		return apperrors.Forbidden("only booking parties may complete this booking")
	}
	if booking.Status != model.StatusConfirmed {
		return apperrors.InvalidOperation("only confirmed bookings can be completed")
	}

	booking.Status = model.StatusCompleted
	booking.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, booking.ID, booking); err != nil {
		s.cfg.Log.Error("Failed to complete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to complete booking", err)
	}

	s.publish(ctx, events.TypeBookingCompleted, booking)

	s.cfg.Log.Info("Booking completed", "id", id)
	return nil
}

// eventForStatus maps a lifecycle state to the event emitted when a booking
// lands in it.
func eventForStatus(status model.BookingStatus) string {
	switch status {
	case model.StatusConfirmed:
		return events.TypeBookingConfirmed
	case model.StatusCompleted:
		return events.TypeBookingCompleted
	case model.StatusCancelled:
		return events.TypeBookingCancelled
	case model.StatusRescheduled:
		return events.TypeBookingRescheduled
	}
	return ""
}

// checkCancellationCutoff enforces the lead-time rule: cancellation is
// allowed only strictly before appointmentStart minus the configured cutoff.
func (s *bookingService) checkCancellationCutoff(booking *model.Booking) error {
	deadline := booking.AppointmentStart.Add(-s.cfg.CancellationCutoff)
	if !time.Now().Before(deadline) {
		return apperrors.InvalidOperation(fmt.Sprintf(
			"bookings must be cancelled at least %s before the appointment", s.cfg.CancellationCutoff,
		))
	}
	return nil
}
