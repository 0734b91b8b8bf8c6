package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"adhub/internal/bookings/service"
	apperrors "adhub/pkg/errors"
	httputil "adhub/pkg/http"
	"adhub/pkg/logger"
	"adhub/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service  service.BookingService
	log      *logger.Logger
	location *time.Location
	now      func() time.Time
}

// NewBookingHandler resolves "today" in loc, the business timezone.
func NewBookingHandler(service service.BookingService, log *logger.Logger, loc *time.Location) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{
		service:  service,
		log:      log,
		location: loc,
		now:      time.Now,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode booking request", "handler", "Create", "error", err)
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body").WithDetails(map[string]any{
			"reason": err.Error(),
		}))
		return
	}

	today := model.Today(h.now(), h.location)
	booking, err := h.service.Create(r.Context(), &req, today)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var status *model.BookingStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		parsed, err := model.ParseBookingStatus(statusStr)
		if err != nil {
			h.writeError(w, "List", apperrors.InvalidInput("Invalid booking status: "+statusStr))
			return
		}
		status = &parsed
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, total, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Approve(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Approve", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.Reject(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Reject", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Reject", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/booking-requests", h.Create)
	router.GET("/api/v1/booking-requests", h.List)
	router.GET("/api/v1/booking-requests/id/:id", h.GetByID)
	router.PATCH("/api/v1/booking-requests/id/:id/approve", h.Approve)
	router.PATCH("/api/v1/booking-requests/id/:id/reject", h.Reject)
}
