package testutil

import "time"

type BookingBuilder struct {
	body map[string]any
}

func NewBookingBuilder(serviceID string, start time.Time) *BookingBuilder {
	return &BookingBuilder{
		body: map[string]any{
			"customer_id": "customer-1",
			"service_id":  serviceID,
			"start_time":  start.UTC().Format(time.RFC3339),
		},
	}
}

func (b *BookingBuilder) WithProfessional(id string) *BookingBuilder {
	b.body["professional_id"] = id
	return b
}

func (b *BookingBuilder) WithUser(id string) *BookingBuilder {
	b.body["user_id"] = id
	return b
}

func (b *BookingBuilder) WithField(key string, value any) *BookingBuilder {
	b.body[key] = value
	return b
}

func (b *BookingBuilder) Build() map[string]any {
	return b.body
}

func NewService(name string, durationMin int, price int64) map[string]any {
	return map[string]any{
		"name":         name,
		"duration_min": durationMin,
		"price":        price,
	}
}
