package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	apperrors "proconnect/pkg/errors"
	"proconnect/pkg/logger"
	"proconnect/pkg/model"
)

type mockBookingService struct {
	createFunc        func(ctx context.Context, req *model.BookingRequest, clientID string) (*model.Booking, error)
	getByIDFunc       func(ctx context.Context, id string, requesterID string) (*model.Booking, error)
	listFunc          func(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, int64, error)
	updateFunc        func(ctx context.Context, id string, updates *model.BookingUpdate, requesterID string) (*model.Booking, error)
	cancelFunc        func(ctx context.Context, id string, actorID string, reason string) error
	confirmFunc       func(ctx context.Context, id string, professionalID string) error
	completeFunc      func(ctx context.Context, id string, requesterID string) error
	checkConflictFunc func(ctx context.Context, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error)
	countByStatusFunc func(ctx context.Context) (map[model.BookingStatus]int64, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest, clientID string) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req, clientID)
	}
	return &model.Booking{ID: "b1", ClientID: clientID}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string, requesterID string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id, requesterID)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) List(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate, requesterID string) (*model.Booking, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates, requesterID)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string, actorID string, reason string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, actorID, reason)
	}
	return nil
}

func (m *mockBookingService) Confirm(ctx context.Context, id string, professionalID string) error {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id, professionalID)
	}
	return nil
}

func (m *mockBookingService) Complete(ctx context.Context, id string, requesterID string) error {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, id, requesterID)
	}
	return nil
}

func (m *mockBookingService) CheckConflict(ctx context.Context, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
	if m.checkConflictFunc != nil {
		return m.checkConflictFunc(ctx, professionalID, start, durationMinutes, excludeID)
	}
	return false, nil
}

func (m *mockBookingService) CountByStatus(ctx context.Context) (map[model.BookingStatus]int64, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return map[model.BookingStatus]int64{}, nil
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreate_RequiresIdentityHeader(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without X-User-ID, got %d", rec.Code)
	}
}

func TestCreate_ReturnsCreated(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	body := `{"professional_id":"prof-1","appointment_time":"2027-07-10T14:00:00Z","duration_minutes":60,"consultation_type":"virtual"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreate_MapsConflictTo409(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, req *model.BookingRequest, clientID string) (*model.Booking, error) {
			return nil, apperrors.Conflict("appointment time conflicts with an existing booking")
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, resp.Code)
	}
}

func TestGetByID_MapsNotFoundTo404(t *testing.T) {
	svc := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string, requesterID string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b1", nil)
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestCancel_PassesReasonAndActor(t *testing.T) {
	var gotID, gotActor, gotReason string
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, id string, actorID string, reason string) error {
			gotID, gotActor, gotReason = id, actorID, reason
			return nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/cancel", strings.NewReader(`{"reason":"schedule change"}`))
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotID != "b1" || gotActor != "client-1" || gotReason != "schedule change" {
		t.Errorf("unexpected cancel args: id=%s actor=%s reason=%s", gotID, gotActor, gotReason)
	}
}

func TestCheckConflict_ParsesQuery(t *testing.T) {
	var gotStart time.Time
	var gotDuration int
	svc := &mockBookingService{
		checkConflictFunc: func(ctx context.Context, professionalID string, start time.Time, durationMinutes int, excludeID string) (bool, error) {
			gotStart, gotDuration = start, durationMinutes
			return true, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/conflict?professional_id=prof-1&start=2027-07-10T14:00:00Z&duration_minutes=60", nil)
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := time.Date(2027, 7, 10, 14, 0, 0, 0, time.UTC)
	if !gotStart.Equal(want) || gotDuration != 60 {
		t.Errorf("unexpected parsed query: start=%v duration=%d", gotStart, gotDuration)
	}

	var resp struct {
		Data struct {
			Conflict bool `json:"conflict"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !resp.Data.Conflict {
		t.Error("expected conflict=true in response")
	}
}

func TestCheckConflict_RejectsBadStart(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/conflict?professional_id=prof-1&start=tomorrow&duration_minutes=60", nil)
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed start, got %d", rec.Code)
	}
}

func TestList_RejectsUnknownStatusFilter(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=archived", nil)
	req.Header.Set("X-User-ID", "client-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rec.Code)
	}
}
