package resolver

import (
	tenantserrors "agendo/internal/tenants/errors"
	apperrors "agendo/pkg/errors"
	httputil "agendo/pkg/http"
	"agendo/pkg/logger"
	"agendo/pkg/model"
	"agendo/pkg/tenant"
	"context"
	"errors"
	"net/http"
	"strings"
)

type TenantLookup interface {
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
}

// Resolver identifies the calling tenant from a request header and records
// it in the request context. Requests without a known, active tenant never
// reach the wrapped handler.
type Resolver struct {
	tenants TenantLookup
	header  string
	log     *logger.Logger
}

func New(tenants TenantLookup, header string, log *logger.Logger) *Resolver {
	return &Resolver{
		tenants: tenants,
		header:  header,
		log:     log,
	}
}

// Resolve returns the active tenant id named by the request.
func (res *Resolver) Resolve(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(res.header))
	if id == "" {
		return "", apperrors.TenantRequired(tenant.ErrUnauthorizedTenant)
	}

	t, err := res.tenants.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, tenantserrors.ErrNotFound) {
			return "", apperrors.TenantRequired(err)
		}
		return "", apperrors.Internal("Failed to resolve tenant", err)
	}
	if !t.Active {
		return "", apperrors.TenantRequired(tenantserrors.ErrInactive)
	}
	return t.ID, nil
}

func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := res.Resolve(r)
		if err != nil {
			res.log.Warn("Tenant resolution failed",
				"request_id", logger.RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
				"error", err,
			)
			if writeErr := httputil.WriteError(w, err); writeErr != nil {
				res.log.Error("failed to write error response", "handler", "TenantResolver", "operation", "WriteError", "error", writeErr)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(tenant.NewContext(r.Context(), tenantID)))
	})
}
