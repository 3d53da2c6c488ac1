package model

import "time"

type Service struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID    string    `json:"tenant_id" bson:"tenant_id"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMin int       `json:"duration_min" bson:"duration_min" validate:"required,min=1,max=1440"`
	Price       int64     `json:"price" bson:"price" validate:"min=0"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func (s *Service) GetTenantID() string   { return s.TenantID }
func (s *Service) SetTenantID(id string) { s.TenantID = id }

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMin) * time.Minute
}

type ServiceUpdate struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Price  *int64 `json:"price,omitempty" validate:"omitempty,min=0"`
	Active *bool  `json:"active,omitempty"`
}
