package handler

import (
	"agendo/internal/bookings/service"
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	httputil "agendo/pkg/http"
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	cfg     *config.Config
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, cfg *config.Config) *BookingHandler {
	return &BookingHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), tenant.FromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), tenant.FromContext(r.Context()), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Search lists bookings of the caller's tenant. Supported query parameters:
// professional_id, user_id, status, from, to (RFC3339), limit and offset.
func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r, h.cfg)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		ProfessionalID: query.Get("professional_id"),
		UserID:         query.Get("user_id"),
		Status:         model.BookingStatus(query.Get("status")),
	}
	if filter.From, err = httputil.ParseOptionalTime(r, "from"); err != nil {
		h.writeError(w, "Search", err)
		return
	}
	if filter.To, err = httputil.ParseOptionalTime(r, "to"); err != nil {
		h.writeError(w, "Search", err)
		return
	}

	bookings, total, err := h.service.Search(r.Context(), tenant.FromContext(r.Context()), filter, limit, offset)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Search", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var changes model.BookingChanges
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Update(r.Context(), tenant.FromContext(r.Context()), ps.ByName("id"), &changes)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var change model.BookingStatusChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), tenant.FromContext(r.Context()), ps.ByName("id"), change.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.Search)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Update)
	router.PATCH("/api/v1/bookings/id/:id/status", h.UpdateStatus)
}
