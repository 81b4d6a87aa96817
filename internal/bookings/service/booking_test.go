package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "proconnect/internal/bookings/errors"
	"proconnect/internal/bookings/validator"
	"proconnect/pkg/config"
	mongotx "proconnect/pkg/db/mongo"
	apperrors "proconnect/pkg/errors"
	"proconnect/pkg/logger"
	"proconnect/pkg/model"
)

const testBookingID = "9f86d081-7f30-4c47-9a7e-bb1de1c2a44e"

type mockBookingRepository struct {
	createFunc             func(ctx context.Context, booking *model.Booking) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Booking, error)
	findByFilterFunc       func(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error)
	countByFilterFunc      func(ctx context.Context, filter *model.BookingFilter) (int64, error)
	findActiveInWindowFunc func(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Booking, error)
	updateFunc             func(ctx context.Context, id string, booking *model.Booking) error
	countByStatusFunc      func(ctx context.Context) (map[string]int64, error)

	createdBooking *model.Booking
	updatedBooking *model.Booking
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	m.createdBooking = booking
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	if booking.ID == "" {
		booking.ID = testBookingID
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByFilter(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error) {
	if m.findByFilterFunc != nil {
		return m.findByFilterFunc(ctx, filter)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByFilter(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	if m.countByFilterFunc != nil {
		return m.countByFilterFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindActiveInWindow(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Booking, error) {
	if m.findActiveInWindowFunc != nil {
		return m.findActiveInWindowFunc(ctx, professionalID, from, to)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	m.updatedBooking = booking
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return nil
}

func (m *mockBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return map[string]int64{}, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(ctx)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error

	createdLockID string
	deletedLockID string
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	m.createdLockID = lock.ID
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deletedLockID = lockID
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockProfessionalRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Professional, error)
}

func (m *mockProfessionalRepository) FindByID(ctx context.Context, id string) (*model.Professional, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return activeProfessional(), nil
}

func activeProfessional() *model.Professional {
	return &model.Professional{
		ID:          "prof-1",
		DisplayName: "Dr. Quinn",
		HourlyRate:  50,
		Status:      model.ProfessionalActive,
		Timezone:    "UTC",
	}
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		DefaultDurationMin: 60,
		MinDurationMin:     15,
		MaxDurationMin:     480,
		CancellationCutoff: 2 * time.Hour,
		SlotLockTTL:        10 * time.Second,
	}
}

func newTestService(repo *mockBookingRepository, locks *mockSlotLockRepository, professionals *mockProfessionalRepository) BookingService {
	cfg := newTestConfig()
	return NewBookingService(
		repo,
		locks,
		professionals,
		validator.NewBookingValidator(cfg.Log),
		nil,
		nil,
		cfg,
	)
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		ProfessionalID:   "prof-1",
		AppointmentTime:  time.Now().Add(48 * time.Hour).UTC().Truncate(time.Minute),
		DurationMinutes:  60,
		ConsultationType: "virtual",
	}
}

func assertAppCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with code %s, got %v", wantCode, err)
	}
	if appErr.Code != wantCode {
		t.Fatalf("expected code %s, got %s (%v)", wantCode, appErr.Code, err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo := &mockBookingRepository{}
	locks := &mockSlotLockRepository{}
	svc := newTestService(repo, locks, &mockProfessionalRepository{})

	req := validRequest()
	booking, err := svc.Create(context.Background(), req, "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("new booking should be pending, got %s", booking.Status)
	}
	if booking.TotalAmount != 50.00 {
		t.Errorf("expected total 50.00 for one hour at 50/h, got %v", booking.TotalAmount)
	}
	wantEnd := req.AppointmentTime.Add(60 * time.Minute)
	if !booking.AppointmentEnd.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, booking.AppointmentEnd)
	}
	if repo.createdBooking == nil {
		t.Error("expected booking to be persisted")
	}
	if locks.createdLockID == "" {
		t.Error("expected slot lock to be acquired")
	}
	if locks.deletedLockID != locks.createdLockID {
		t.Error("expected slot lock to be released")
	}
}

func TestCreate_DefaultDuration(t *testing.T) {
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	req := validRequest()
	req.DurationMinutes = 0

	booking, err := svc.Create(context.Background(), req, "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.DurationMinutes != 60 {
		t.Errorf("expected default duration 60, got %d", booking.DurationMinutes)
	}
}

func TestCreate_Conflict(t *testing.T) {
	req := validRequest()
	repo := &mockBookingRepository{
		findActiveInWindowFunc: func(ctx context.Context, professionalID string, from, to time.Time) ([]*model.Booking, error) {
			return []*model.Booking{{
				ID:               "other",
				AppointmentStart: req.AppointmentTime,
				AppointmentEnd:   req.AppointmentTime.Add(time.Hour),
			}}, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	_, err := svc.Create(context.Background(), req, "client-1")
	assertAppCode(t, err, apperrors.CodeConflict)

	if repo.createdBooking != nil {
		t.Error("conflicting booking must not be persisted")
	}
}

func TestCreate_PastAppointmentTime(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	req := validRequest()
	req.AppointmentTime = time.Now().Add(-time.Hour)

	_, err := svc.Create(context.Background(), req, "client-1")
	assertAppCode(t, err, apperrors.CodeInvalidOperation)
}

func TestCreate_ProfessionalNotFound(t *testing.T) {
	professionals := &mockProfessionalRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Professional, error) {
			return nil, bookingserrors.ErrProfessionalNotFound
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, professionals)

	_, err := svc.Create(context.Background(), validRequest(), "client-1")
	assertAppCode(t, err, apperrors.CodeNotFound)
}

func TestCreate_InactiveProfessional(t *testing.T) {
	professionals := &mockProfessionalRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Professional, error) {
			p := activeProfessional()
			p.Status = model.ProfessionalSuspended
			return p, nil
		},
	}
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, professionals)

	_, err := svc.Create(context.Background(), validRequest(), "client-1")
	assertAppCode(t, err, apperrors.CodeInvalidOperation)
}

func TestCreate_UnknownConsultationType(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	req := validRequest()
	req.ConsultationType = "carrier_pigeon"

	_, err := svc.Create(context.Background(), req, "client-1")
	assertAppCode(t, err, apperrors.CodeInvalidOperation)
}

func TestCreate_SlotLockContention(t *testing.T) {
	repo := &mockBookingRepository{}
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}
	svc := newTestService(repo, locks, &mockProfessionalRepository{})

	_, err := svc.Create(context.Background(), validRequest(), "client-1")
	assertAppCode(t, err, apperrors.CodeConflict)

	if repo.createdBooking != nil {
		t.Error("booking must not be persisted while the slot lock is held elsewhere")
	}
}

func TestCreate_NormalizesProfessionalTimezone(t *testing.T) {
	professionals := &mockProfessionalRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Professional, error) {
			p := activeProfessional()
			p.Timezone = "America/New_York"
			return p, nil
		},
	}
	repo := &mockBookingRepository{}
	svc := newTestService(repo, &mockSlotLockRepository{}, professionals)

	req := validRequest()
	// 14:00 wall clock in New York during daylight saving is 18:00 UTC.
	req.AppointmentTime = time.Date(2027, 7, 10, 14, 0, 0, 0, time.UTC)

	booking, err := svc.Create(context.Background(), req, "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2027, 7, 10, 18, 0, 0, 0, time.UTC)
	if !booking.AppointmentStart.Equal(want) {
		t.Errorf("expected normalized start %v, got %v", want, booking.AppointmentStart)
	}
}

func TestGetByID_PartyAccessOnly(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, ClientID: "client-1", ProfessionalID: "prof-1"}, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	if _, err := svc.GetByID(context.Background(), testBookingID, "client-1"); err != nil {
		t.Errorf("client should see their booking: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), testBookingID, "prof-1"); err != nil {
		t.Errorf("professional should see their booking: %v", err)
	}

	_, err := svc.GetByID(context.Background(), testBookingID, "stranger")
	assertAppCode(t, err, apperrors.CodeForbidden)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	_, err := svc.GetByID(context.Background(), testBookingID, "client-1")
	assertAppCode(t, err, apperrors.CodeNotFound)
}

func TestCheckConflict_DurationBounds(t *testing.T) {
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	start := time.Now().Add(24 * time.Hour)

	if _, err := svc.CheckConflict(context.Background(), "prof-1", start, 60, ""); err != nil {
		t.Errorf("unexpected error for valid duration: %v", err)
	}

	_, err := svc.CheckConflict(context.Background(), "prof-1", start, 10, "")
	assertAppCode(t, err, apperrors.CodeInvalidOperation)

	_, err = svc.CheckConflict(context.Background(), "prof-1", start, 500, "")
	assertAppCode(t, err, apperrors.CodeInvalidOperation)
}

func TestList_ReturnsCountAndPage(t *testing.T) {
	repo := &mockBookingRepository{
		findByFilterFunc: func(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error) {
			return []*model.Booking{{ID: testBookingID}}, nil
		},
		countByFilterFunc: func(ctx context.Context, filter *model.BookingFilter) (int64, error) {
			return 7, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	bookings, total, err := svc.List(context.Background(), &model.BookingFilter{ClientID: "client-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("expected total 7, got %d", total)
	}
	if len(bookings) != 1 {
		t.Errorf("expected one booking, got %d", len(bookings))
	}
}

func TestCountByStatus_MapsStatuses(t *testing.T) {
	repo := &mockBookingRepository{
		countByStatusFunc: func(ctx context.Context) (map[string]int64, error) {
			return map[string]int64{"pending": 3, "confirmed": 2}, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, &mockProfessionalRepository{})

	counts, err := svc.CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[model.StatusPending] != 3 || counts[model.StatusConfirmed] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
