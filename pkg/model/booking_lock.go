package model

import "time"

// BookingLock is an advisory lock document guarding check-then-write for
// one tenant resource. Owner is unique per acquisition; only the owner may
// renew or release it.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	TenantID  string    `bson:"tenant_id" json:"tenant_id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (l *BookingLock) GetTenantID() string   { return l.TenantID }
func (l *BookingLock) SetTenantID(id string) { l.TenantID = id }
