package handler

import (
	"agendo/internal/catalog/service"
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

type createServiceRequest struct {
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Price       int64  `json:"price"`
	Active      *bool  `json:"active,omitempty"`
}

type ServiceHandler struct {
	service service.CatalogService
	cfg     *config.Config
	log     *logger.Logger
}

func NewServiceHandler(service service.CatalogService, cfg *config.Config) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scope, ok := h.scope(w, r, "Create")
	if !ok {
		return
	}

	var req createServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	svc := &model.Service{
		Name:        req.Name,
		DurationMin: req.DurationMin,
		Price:       req.Price,
		Active:      req.Active == nil || *req.Active,
	}
	if err := h.service.Create(r.Context(), scope, svc); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, svc); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ServiceHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	scope, ok := h.scope(w, r, "GetByID")
	if !ok {
		return
	}

	svc, err := h.service.GetByID(r.Context(), scope, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServiceHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	scope, ok := h.scope(w, r, "GetAll")
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r, h.cfg)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	services, total, err := h.service.GetAll(r.Context(), scope, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, services, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	scope, ok := h.scope(w, r, "Update")
	if !ok {
		return
	}

	var updates model.ServiceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	svc, err := h.service.Update(r.Context(), scope, ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServiceHandler) scope(w http.ResponseWriter, r *http.Request, handler string) (tenant.Scope, bool) {
	scope, err := tenant.NewScope(tenant.FromContext(r.Context()))
	if err != nil {
		h.writeError(w, handler, apperrors.TenantRequired(err))
		return tenant.Scope{}, false
	}
	return scope, true
}

func (h *ServiceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ServiceHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/services", h.Create)
	router.GET("/api/v1/services", h.GetAll)
	router.GET("/api/v1/services/id/:id", h.GetByID)
	router.PATCH("/api/v1/services/id/:id", h.Update)
}
