package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceOffering is something a provider sells: a fixed duration at a price.
type ServiceOffering struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ProviderID      uuid.UUID `json:"provider_id" db:"provider_id"`
	Name            string    `json:"name" db:"name"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Price           int64     `json:"price" db:"price"`
	Active          bool      `json:"active" db:"active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type Provider struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	SubscriptionTier string    `json:"subscription_tier" db:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
