package handler

import (
	"agendo/pkg/config"
	apperrors "agendo/pkg/errors"
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalogService struct {
	created *model.Service
	scope   tenant.Scope
	updates *model.ServiceUpdate
}

func (m *mockCatalogService) Create(_ context.Context, scope tenant.Scope, svc *model.Service) error {
	m.scope = scope
	m.created = svc
	svc.ID = "507f1f77bcf86cd799439011"
	return scope.Stamp(svc)
}

func (m *mockCatalogService) GetByID(_ context.Context, scope tenant.Scope, id string) (*model.Service, error) {
	m.scope = scope
	if id == "missing" {
		return nil, apperrors.NotFoundWithID("Service", id)
	}
	return &model.Service{ID: id, TenantID: scope.TenantID()}, nil
}

func (m *mockCatalogService) GetAll(_ context.Context, scope tenant.Scope, limit int, offset int64) ([]*model.Service, int64, error) {
	m.scope = scope
	return []*model.Service{}, 0, nil
}

func (m *mockCatalogService) Update(_ context.Context, scope tenant.Scope, id string, updates *model.ServiceUpdate) (*model.Service, error) {
	m.scope = scope
	m.updates = updates
	return &model.Service{ID: id}, nil
}

func (m *mockCatalogService) GetActiveService(context.Context, tenant.Scope, string) (*model.Service, error) {
	return nil, nil
}

func serve(svc *mockCatalogService, method, target, body, tenantID string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewServiceHandler(svc, &config.Config{Log: logger.Discard(), PaginationLimit: 50}).RegisterRoutes(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if tenantID != "" {
		req = req.WithContext(tenant.NewContext(req.Context(), tenantID))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateService_DefaultsActive(t *testing.T) {
	svc := &mockCatalogService{}
	w := serve(svc, http.MethodPost, "/api/v1/services", `{"name":"Cut","duration_min":30,"price":1500}`, "1")

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.True(t, svc.created.Active)
	assert.Equal(t, int64(1500), svc.created.Price)
	assert.Equal(t, "1", svc.scope.TenantID())
}

func TestCreateService_ExplicitInactive(t *testing.T) {
	svc := &mockCatalogService{}
	w := serve(svc, http.MethodPost, "/api/v1/services", `{"name":"Cut","duration_min":30,"active":false}`, "1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, svc.created.Active)
}

func TestServiceRoutes_RequireTenant(t *testing.T) {
	routes := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/v1/services"},
		{http.MethodGet, "/api/v1/services"},
		{http.MethodGet, "/api/v1/services/id/abc"},
		{http.MethodPatch, "/api/v1/services/id/abc"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.target, func(t *testing.T) {
			svc := &mockCatalogService{}
			w := serve(svc, rt.method, rt.target, `{}`, "")
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), apperrors.CodeTenantRequired)
		})
	}
}

func TestGetService_NotFound(t *testing.T) {
	w := serve(&mockCatalogService{}, http.MethodGet, "/api/v1/services/id/missing", "", "1")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateService_DecodesBody(t *testing.T) {
	svc := &mockCatalogService{}
	w := serve(svc, http.MethodPatch, "/api/v1/services/id/abc", `{"price":900}`, "1")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.updates)
	require.NotNil(t, svc.updates.Price)
	assert.Equal(t, int64(900), *svc.updates.Price)
	assert.Nil(t, svc.updates.Active)
}

func TestUpdateService_InvalidBody(t *testing.T) {
	w := serve(&mockCatalogService{}, http.MethodPatch, "/api/v1/services/id/abc", `[`, "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
