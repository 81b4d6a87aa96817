package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"proconnect/internal/bookings/service"
	apperrors "proconnect/pkg/errors"
	httputil "proconnect/pkg/http"
	"proconnect/pkg/logger"
	"proconnect/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	logger  *logger.Logger
}

func NewBookingHandler(svc service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: svc,
		logger:  log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/conflict", h.CheckConflict)
	router.GET("/api/v1/bookings/stats", h.Stats)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Update)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	clientID, err := httputil.RequesterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErr(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), &req, clientID)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.RequesterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), requesterID)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := h.parseListFilter(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	bookings, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, filter.Limit, filter.Offset); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.RequesterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeErr(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Update(r.Context(), ps.ByName("id"), &updates, requesterID)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.RequesterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	// Body is optional; an empty cancellation reason is allowed.
	var req cancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeErr(w, apperrors.InvalidInput("Invalid request body"))
			return
		}
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), requesterID, req.Reason); err != nil {
		h.writeErr(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.RequesterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := h.service.Confirm(r.Context(), ps.ByName("id"), requesterID); err != nil {
		h.writeErr(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.RequesterID(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := h.service.Complete(r.Context(), ps.ByName("id"), requesterID); err != nil {
		h.writeErr(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

type conflictResponse struct {
	Conflict bool `json:"conflict"`
}

func (h *BookingHandler) CheckConflict(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, err := httputil.RequesterID(r); err != nil {
		h.writeErr(w, err)
		return
	}

	query := r.URL.Query()

	professionalID := query.Get("professional_id")
	if professionalID == "" {
		h.writeErr(w, apperrors.InvalidInput("professional_id is required"))
		return
	}

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		h.writeErr(w, apperrors.InvalidInput("start must be a RFC3339 timestamp"))
		return
	}

	durationMinutes, err := strconv.Atoi(query.Get("duration_minutes"))
	if err != nil {
		h.writeErr(w, apperrors.InvalidInput("duration_minutes must be an integer"))
		return
	}

	conflict, err := h.service.CheckConflict(r.Context(), professionalID, start, durationMinutes, query.Get("exclude_id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, conflictResponse{Conflict: conflict}); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counts, err := h.service.CountByStatus(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}

	stats := make(map[string]int64, len(counts))
	for status, n := range counts {
		stats[status.String()] = n
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

func (h *BookingHandler) parseListFilter(r *http.Request) (*model.BookingFilter, error) {
	query := r.URL.Query()
	filter := &model.BookingFilter{
		ProfessionalID: query.Get("professional_id"),
		ClientID:       query.Get("client_id"),
	}

	if s := query.Get("status"); s != "" {
		status, err := model.ParseBookingStatus(s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid status filter: " + s)
		}
		filter.Status = status
	}

	if s := query.Get("from"); s != "" {
		from, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperrors.InvalidInput("from must be a RFC3339 timestamp")
		}
		filter.From = &from
	}
	if s := query.Get("to"); s != "" {
		to, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, apperrors.InvalidInput("to must be a RFC3339 timestamp")
		}
		filter.To = &to
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit
	filter.Offset = offset

	return filter, nil
}

func (h *BookingHandler) writeErr(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok && appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "code", appErr.Code, "error", appErr)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.logger.Error("Failed to write error response", "error", writeErr)
	}
}
