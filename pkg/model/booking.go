package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal statuses accept no further transition or reschedule.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking.Price is in minor currency units, copied from the service at the
// time of booking.
type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TenantID       string        `json:"tenant_id" bson:"tenant_id"`
	CustomerID     string        `json:"customer_id" bson:"customer_id" validate:"required,max=64"`
	ServiceID      string        `json:"service_id" bson:"service_id" validate:"required,mongodb"`
	ProfessionalID string        `json:"professional_id,omitempty" bson:"professional_id,omitempty" validate:"omitempty,max=64"`
	UserID         string        `json:"user_id,omitempty" bson:"user_id,omitempty" validate:"omitempty,max=64"`
	StartTime      time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status         BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Price          int64         `json:"price" bson:"price" validate:"min=0"`
	Notes          string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=1000"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) GetTenantID() string   { return b.TenantID }
func (b *Booking) SetTenantID(id string) { b.TenantID = id }

// Resource is the calendar the booking occupies.
func (b *Booking) Resource() Resource {
	return ResourceSelector{ProfessionalID: b.ProfessionalID, UserID: b.UserID}.Resolve()
}

// BookingRequest is the create payload. It deliberately has no tenant or
// end time: both are derived server side.
type BookingRequest struct {
	CustomerID     string    `json:"customer_id" validate:"required,max=64"`
	ServiceID      string    `json:"service_id" validate:"required,max=64"`
	ProfessionalID string    `json:"professional_id,omitempty" validate:"omitempty,max=64"`
	UserID         string    `json:"user_id,omitempty" validate:"omitempty,max=64"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	Notes          string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// BookingChanges is the reschedule payload. Nil fields keep the stored value.
type BookingChanges struct {
	CustomerID     *string    `json:"customer_id,omitempty" validate:"omitempty,min=1,max=64"`
	ServiceID      *string    `json:"service_id,omitempty" validate:"omitnil,min=1,max=64"`
	ProfessionalID *string    `json:"professional_id,omitempty" validate:"omitempty,max=64"`
	UserID         *string    `json:"user_id,omitempty" validate:"omitempty,max=64"`
	StartTime      *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Reschedules reports whether the changes touch the occupied interval or
// resource.
func (c *BookingChanges) Reschedules() bool {
	return c.StartTime != nil || c.ServiceID != nil || c.ProfessionalID != nil || c.UserID != nil
}

type BookingStatusChange struct {
	Status BookingStatus `json:"status" validate:"required,oneof=pending confirmed cancelled completed"`
}

type BookingFilter struct {
	ProfessionalID string
	UserID         string
	Status         BookingStatus
	From           *time.Time
	To             *time.Time
}
