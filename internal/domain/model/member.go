// Package model contains domain models passed between layers.
package model

import "time"

// Member is a deduplicated identity. It records the city a person stated,
// never its coordinates; those are always derived through the city resolver.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant is a raw (name, city) pair as received from a caller.
type Participant struct {
	Name string `json:"name" validate:"required,max=200"`
	City string `json:"city" validate:"required,max=200"`
}
