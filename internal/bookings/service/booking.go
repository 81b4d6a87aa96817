package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "proconnect/internal/bookings/errors"
	"proconnect/internal/bookings/events"
	"proconnect/internal/bookings/repository"
	"proconnect/internal/bookings/schedule"
	"proconnect/internal/bookings/validator"
	"proconnect/pkg/config"
	apperrors "proconnect/pkg/errors"
	"proconnect/pkg/model"
	"proconnect/pkg/sanitizer"
	"proconnect/pkg/timezone"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest, clientID string) (*model.Booking, error)
	GetByID(ctx context.Context, id string, requesterID string) (*model.Booking, error)
	List(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate, requesterID string) (*model.Booking, error)
	Cancel(ctx context.Context, id string, actorID string, reason string) error
	Confirm(ctx context.Context, id string, professionalID string) error
	Complete(ctx context.Context, id string, requesterID string) error
	CheckConflict(ctx context.Context, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error)
	CountByStatus(ctx context.Context) (map[model.BookingStatus]int64, error)
}

// NameResolver looks up party display names for response enrichment.
// Failures are tolerated; bookings are returned without names.
type NameResolver interface {
	DisplayName(ctx context.Context, partyID string) (string, error)
}

type bookingService struct {
	repo          repository.BookingRepository
	lockRepo      repository.SlotLockRepository
	professionals repository.ProfessionalRepository
	detector      *schedule.Detector
	validator     *validator.BookingValidator
	resolver      NameResolver
	events        events.Publisher
	cfg           *config.Config
}

// NewBookingService wires the booking orchestrator. resolver and publisher
// may be nil; enrichment and event emission are then skipped.
func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	professionals repository.ProfessionalRepository,
	bookingValidator *validator.BookingValidator,
	resolver NameResolver,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:          repo,
		lockRepo:      lockRepo,
		professionals: professionals,
		detector:      schedule.NewDetector(repo),
		validator:     bookingValidator,
		resolver:      resolver,
		events:        publisher,
		cfg:           cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest, clientID string) (*model.Booking, error) {
	if clientID == "" {
		return nil, apperrors.Unauthorized("missing requesting client identity")
	}

	s.applyDefaults(req)
	s.sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	professional, err := s.professionals.FindByID(ctx, req.ProfessionalID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrProfessionalNotFound) {
			return nil, apperrors.NotFoundWithID("Professional", req.ProfessionalID)
		}
		return nil, apperrors.Internal("Failed to resolve professional", err)
	}
	if !professional.AcceptsBookings() {
		return nil, apperrors.InvalidOperation("professional is not accepting bookings")
	}

	// The raw submitted instant is checked before timezone resolution.
	if !req.AppointmentTime.After(time.Now()) {
		return nil, apperrors.InvalidOperation("appointment time must be in the future")
	}

	conflict, err := s.detector.HasConflict(ctx, req.ProfessionalID, req.AppointmentTime, req.DurationMinutes, "")
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}
	if conflict {
		return nil, apperrors.Conflict("appointment time conflicts with an existing booking")
	}

	consultation, err := model.ParseConsultationType(req.ConsultationType)
	if err != nil {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("unrecognized consultation type: %s", req.ConsultationType))
	}

	start, known := timezone.Normalize(req.AppointmentTime, professional.Timezone)
	if !known {
		// Non-fatal: an unresolvable zone degrades to treating the input as UTC.
		s.cfg.Log.Warn("Unknown professional timezone, treating appointment time as UTC",
			"professional_id", professional.ID,
			"timezone", professional.Timezone,
		)
	}

	booking := &model.Booking{
		ClientID:         clientID,
		ProfessionalID:   req.ProfessionalID,
		AppointmentStart: start,
		AppointmentEnd:   model.EndFor(start, req.DurationMinutes),
		DurationMinutes:  req.DurationMinutes,
		ConsultationType: consultation,
		Status:           model.StatusPending,
		TotalAmount:      model.TotalAmount(professional.HourlyRate, req.DurationMinutes),
		Notes:            req.Notes,
		MeetingLink:      req.MeetingLink,
		MeetingPhone:     req.MeetingPhone,
		MeetingAddress:   req.MeetingAddress,
	}

	if err := s.validator.ValidateBooking(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	// Advisory lock to prevent concurrent creation for the same slot
	lockID, err := s.acquireSlotLock(ctx, booking.ProfessionalID, booking.AppointmentStart)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// Re-check at the normalized instant inside the transaction: the
		// pre-check above raced against other writers, this one does not.
		conflict, err := s.detector.HasConflict(txCtx, booking.ProfessionalID, booking.AppointmentStart, booking.DurationMinutes, "")
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if conflict {
			return apperrors.Conflict("appointment time conflicts with an existing booking")
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TypeBookingCreated, booking)
	s.enrich(ctx, booking)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"client_id", booking.ClientID,
		"professional_id", booking.ProfessionalID,
		"appointment_start", booking.AppointmentStart,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string, requesterID string) (*model.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.IsParty(requesterID) {
		return nil, apperrors.Forbidden("only booking parties may view this booking")
	}

	s.enrich(ctx, booking)
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, int64, error) {
	if filter == nil {
		filter = &model.BookingFilter{}
	}
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByFilter(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByFilter(ctx, filter)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) CheckConflict(ctx context.Context, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	if professionalID == "" {
		return false, apperrors.InvalidInput("Professional ID cannot be empty")
	}
	if durationMinutes < s.cfg.MinDurationMin || durationMinutes > s.cfg.MaxDurationMin {
		return false, apperrors.InvalidOperation(fmt.Sprintf(
			"duration must be between %d and %d minutes", s.cfg.MinDurationMin, s.cfg.MaxDurationMin,
		))
	}

	conflict, err := s.detector.HasConflict(ctx, professionalID, start, durationMinutes, excludeID)
	if err != nil {
		return false, apperrors.Internal("Failed to check existing bookings", err)
	}
	return conflict, nil
}

func (s *bookingService) CountByStatus(ctx context.Context) (map[model.BookingStatus]int64, error) {
	raw, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings by status", "error", err)
		return nil, apperrors.Internal("Failed to count bookings by status", err)
	}

	counts := make(map[model.BookingStatus]int64, len(raw))
	for status, n := range raw {
		counts[model.BookingStatus(status)] = n
	}
	return counts, nil
}

// --- Helpers ---

func (s *bookingService) loadBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) applyDefaults(req *model.BookingRequest) {
	if req.DurationMinutes == 0 {
		req.DurationMinutes = s.cfg.DefaultDurationMin
	}
}

func (s *bookingService) sanitizeRequest(req *model.BookingRequest) {
	req.Notes = sanitizer.SanitizeFreeText(req.Notes)
	if req.MeetingLink != "" {
		req.MeetingLink = sanitizer.SanitizeURL(req.MeetingLink)
	}
	if req.MeetingPhone != "" {
		req.MeetingPhone = sanitizer.SanitizePhone(req.MeetingPhone)
	}
	if req.MeetingAddress != "" {
		req.MeetingAddress = sanitizer.SanitizeAddress(req.MeetingAddress)
	}
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}
	s.events.BookingChanged(ctx, eventType, booking)
}

// enrich resolves party display names. Lookup failures are logged and
// swallowed; the booking is served without names.
func (s *bookingService) enrich(ctx context.Context, booking *model.Booking) {
	if s.resolver == nil {
		return
	}

	if name, err := s.resolver.DisplayName(ctx, booking.ClientID); err != nil {
		s.cfg.Log.Warn("Failed to resolve client name", "client_id", booking.ClientID, "error", err)
	} else {
		booking.ClientName = name
	}

	if name, err := s.resolver.DisplayName(ctx, booking.ProfessionalID); err != nil {
		s.cfg.Log.Warn("Failed to resolve professional name", "professional_id", booking.ProfessionalID, "error", err)
	} else {
		booking.ProfessionalName = name
	}
}

// acquireSlotLock creates an advisory lock serializing writers for one slot.
// Returns the lock ID if successful, or conflict error if the lock is held.
func (s *bookingService) acquireSlotLock(ctx context.Context, professionalID string, start time.Time) (string, error) {
	lockID := model.SlotLockID(professionalID, start)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

// releaseSlotLock removes the advisory lock
func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
