package tenant

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

type ownedDoc struct {
	TenantID string
}

func (d *ownedDoc) GetTenantID() string   { return d.TenantID }
func (d *ownedDoc) SetTenantID(id string) { d.TenantID = id }

func TestNewScope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr bool
	}{
		{"plain id", "tenant-1", "tenant-1", false},
		{"trimmed", "  tenant-2 ", "tenant-2", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScope(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthorizedTenant) {
					t.Fatalf("expected ErrUnauthorizedTenant, got %v", err)
				}
				if s.Valid() {
					t.Errorf("failed scope must be invalid")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.TenantID() != tt.wantID {
				t.Errorf("TenantID() = %q, want %q", s.TenantID(), tt.wantID)
			}
			if s.IsSystem() {
				t.Errorf("caller scope must not be system")
			}
		})
	}
}

func TestResolveScope(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		explicit   string
		system     bool
		wantID     string
		wantSystem bool
		wantErr    bool
	}{
		{"caller wins over explicit", "t1", "t2", false, "t1", false, false},
		{"caller wins even for system flow", "t1", "t2", true, "t1", false, false},
		{"explicit accepted for system flow", "", "t2", true, "t2", true, false},
		{"explicit rejected without system flow", "", "t2", false, "", false, true},
		{"nothing resolvable", "", "", true, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ResolveScope(tt.caller, tt.explicit, tt.system)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthorizedTenant) {
					t.Fatalf("expected ErrUnauthorizedTenant, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.TenantID() != tt.wantID || s.IsSystem() != tt.wantSystem {
				t.Errorf("got (%q, system=%v), want (%q, system=%v)", s.TenantID(), s.IsSystem(), tt.wantID, tt.wantSystem)
			}
		})
	}
}

func TestScope_FilterOverridesTenant(t *testing.T) {
	s, _ := NewScope("t1")
	in := bson.M{"status": "pending", FieldTenantID: "t2"}

	out, err := s.Filter(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[FieldTenantID] != "t1" {
		t.Errorf("tenant_id = %v, want t1", out[FieldTenantID])
	}
	if out["status"] != "pending" {
		t.Errorf("other keys must survive, got %v", out)
	}
	if in[FieldTenantID] != "t2" {
		t.Errorf("input filter must not be mutated")
	}
}

func TestScope_ZeroValueFailsClosed(t *testing.T) {
	var s Scope

	if _, err := s.Filter(bson.M{}); !errors.Is(err, ErrUnauthorizedTenant) {
		t.Errorf("Filter on zero scope: expected ErrUnauthorizedTenant, got %v", err)
	}
	doc := &ownedDoc{TenantID: "t9"}
	if err := s.Stamp(doc); !errors.Is(err, ErrUnauthorizedTenant) {
		t.Errorf("Stamp on zero scope: expected ErrUnauthorizedTenant, got %v", err)
	}
	if doc.TenantID != "t9" {
		t.Errorf("failed stamp must not touch the entity")
	}
	if s.Owns(&ownedDoc{}) {
		t.Errorf("zero scope must not own the empty tenant")
	}
}

func TestScope_StampOverwritesClientTenant(t *testing.T) {
	s, _ := NewScope("t1")
	doc := &ownedDoc{TenantID: "client-supplied"}

	if err := s.Stamp(doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.TenantID != "t1" {
		t.Errorf("TenantID = %q, want t1", doc.TenantID)
	}
	if !s.Owns(doc) {
		t.Errorf("scope should own stamped doc")
	}
}
