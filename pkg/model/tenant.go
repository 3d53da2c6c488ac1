package model

import "time"

type Tenant struct {
	ID        string    `json:"id" bson:"_id" validate:"required,min=1,max=64"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
