// Package tenant holds the tenant isolation primitives shared by every
// tenant-owned collection. A Scope can only be built from a resolved tenant
// id, and repositories accept nothing else, so a query cannot be issued
// without a tenant filter.
package tenant

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// FieldTenantID is the document field carrying the owning tenant.
const FieldTenantID = "tenant_id"

// ErrUnauthorizedTenant is returned whenever no tenant can be resolved.
var ErrUnauthorizedTenant = errors.New("no tenant resolved for caller")

// Owned is implemented by every entity that carries a tenant id.
type Owned interface {
	GetTenantID() string
	SetTenantID(id string)
}

// Scope pins operations to a single tenant. The zero value is invalid.
type Scope struct {
	id     string
	system bool
}

// NewScope builds a scope for an authenticated caller.
func NewScope(callerTenantID string) (Scope, error) {
	id := strings.TrimSpace(callerTenantID)
	if id == "" {
		return Scope{}, ErrUnauthorizedTenant
	}
	return Scope{id: id}, nil
}

// NewSystemScope is reserved for server-initiated work (migrations, seeding)
// where there is no authenticated caller and the tenant is named explicitly.
func NewSystemScope(explicitTenantID string) (Scope, error) {
	s, err := NewScope(explicitTenantID)
	if err != nil {
		return Scope{}, err
	}
	s.system = true
	return s, nil
}

// ResolveScope applies the stamping policy: an authenticated caller tenant
// always wins, an explicit id is honoured only for system flows.
func ResolveScope(callerTenantID, explicitTenantID string, system bool) (Scope, error) {
	if strings.TrimSpace(callerTenantID) != "" {
		return NewScope(callerTenantID)
	}
	if system {
		return NewSystemScope(explicitTenantID)
	}
	return Scope{}, ErrUnauthorizedTenant
}

func (s Scope) TenantID() string { return s.id }

func (s Scope) IsSystem() bool { return s.system }

// Valid is false for the zero Scope.
func (s Scope) Valid() bool { return s.id != "" }

// Check fails closed on the zero Scope.
func (s Scope) Check() error {
	if !s.Valid() {
		return ErrUnauthorizedTenant
	}
	return nil
}

// Filter returns a copy of filter with tenant_id forced to the scope tenant.
func (s Scope) Filter(filter bson.M) (bson.M, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}
	out := make(bson.M, len(filter)+1)
	for k, v := range filter {
		out[k] = v
	}
	out[FieldTenantID] = s.id
	return out, nil
}

// Stamp overwrites whatever tenant id the entity arrived with.
func (s Scope) Stamp(entity Owned) error {
	if err := s.Check(); err != nil {
		return err
	}
	entity.SetTenantID(s.id)
	return nil
}

// Owns reports whether the entity belongs to this scope.
func (s Scope) Owns(entity Owned) bool {
	return s.Valid() && entity.GetTenantID() == s.id
}
