package model

import (
	"time"

	"github.com/google/uuid"
)

type PromotionType string

const (
	PromotionPercentage  PromotionType = "percentage"
	PromotionFixedAmount PromotionType = "fixed_amount"
	PromotionFreeService PromotionType = "free_service"
)

func (t PromotionType) Valid() bool {
	switch t {
	case PromotionPercentage, PromotionFixedAmount, PromotionFreeService:
		return true
	}
	return false
}

type PromotionStatus string

const (
	PromotionActive  PromotionStatus = "active"
	PromotionPaused  PromotionStatus = "paused"
	PromotionExpired PromotionStatus = "expired"
)

func (s PromotionStatus) Valid() bool {
	switch s {
	case PromotionActive, PromotionPaused, PromotionExpired:
		return true
	}
	return false
}

type Promotion struct {
	ID         uuid.UUID     `json:"id"`
	ProviderID uuid.UUID     `json:"provider_id"`
	Code       string        `json:"code"`
	Type       PromotionType `json:"type"`
	// Value is a percentage (0..100) for percentage promotions and an amount
	// in minor units for fixed-amount ones. Ignored for free-service.
	Value             int64  `json:"value"`
	MinPurchaseAmount int64  `json:"min_purchase_amount"`
	MaxDiscountAmount *int64 `json:"max_discount_amount,omitempty"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	MaxUses        *int `json:"max_uses,omitempty"`
	MaxUsesPerUser *int `json:"max_uses_per_user,omitempty"`
	CurrentUses    int  `json:"current_uses"`

	NewClientsOnly       bool           `json:"new_clients_only"`
	FirstBookingOnly     bool           `json:"first_booking_only"`
	ValidDaysOfWeek      []time.Weekday `json:"valid_days_of_week,omitempty"`
	ApplicableServiceIDs []uuid.UUID    `json:"applicable_service_ids,omitempty"`

	Status    PromotionStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type PromotionUsage struct {
	ID              uuid.UUID `json:"id" db:"id"`
	PromotionID     uuid.UUID `json:"promotion_id" db:"promotion_id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	BookingID       uuid.UUID `json:"booking_id" db:"booking_id"`
	DiscountApplied int64     `json:"discount_applied" db:"discount_applied"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
