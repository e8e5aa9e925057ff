package model

import (
	"time"
)

// Product represents a catalog product. ID is assigned by the store on creation.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InitMeta initializes the product creation timestamp if it is not set yet.
// Millisecond precision matches what MongoDB stores, so the value returned on
// creation equals the one listed later.
func (p *Product) InitMeta() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
}
