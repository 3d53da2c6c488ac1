package model

type ResourceKind string

const (
	ResourceNone         ResourceKind = ""
	ResourceProfessional ResourceKind = "professional"
	ResourceUser         ResourceKind = "user"
)

type ResourceSelector struct {
	ProfessionalID string
	UserID         string
}

// Resource identifies one calendar within a tenant.
type Resource struct {
	Kind ResourceKind
	ID   string
}

// Resolve applies the tie-break: a professional always wins over a user.
func (s ResourceSelector) Resolve() Resource {
	if s.ProfessionalID != "" {
		return Resource{Kind: ResourceProfessional, ID: s.ProfessionalID}
	}
	if s.UserID != "" {
		return Resource{Kind: ResourceUser, ID: s.UserID}
	}
	return Resource{}
}

// IsZero is true for bookings with no resource; those never conflict.
func (r Resource) IsZero() bool {
	return r.Kind == ResourceNone || r.ID == ""
}

// Field is the booking document field compared for this resource kind.
func (r Resource) Field() string {
	switch r.Kind {
	case ResourceProfessional:
		return "professional_id"
	case ResourceUser:
		return "user_id"
	}
	return ""
}

func (r Resource) String() string {
	if r.IsZero() {
		return "none"
	}
	return string(r.Kind) + ":" + r.ID
}
