package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// ActiveStatuses are the statuses that occupy a slot.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Active() bool {
	return slices.Contains(ActiveStatuses, s)
}

type PaymentMode string

const (
	PaymentDeposit PaymentMode = "deposit"
	PaymentFull    PaymentMode = "full"
)

func (m PaymentMode) Valid() bool {
	return m == PaymentDeposit || m == PaymentFull
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// PaymentSplit is the money breakdown handed to the payment-capture side.
// All amounts are minor currency units.
type PaymentSplit struct {
	AmountNow      int64           `json:"amount_now" db:"amount_now"`
	AmountLater    int64           `json:"amount_later" db:"amount_later"`
	Commission     int64           `json:"commission" db:"commission"`
	ProviderPayout int64           `json:"provider_payout" db:"provider_payout"`
	CommissionRate decimal.Decimal `json:"commission_rate" db:"commission_rate"`
}

type Booking struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	ProviderID    uuid.UUID     `json:"provider_id" db:"provider_id"`
	ServiceID     uuid.UUID     `json:"service_id" db:"service_id"`
	ClientID      uuid.UUID     `json:"client_id" db:"client_id"`
	Date          Date          `json:"date" db:"booking_date"`
	Start         TimeOfDay     `json:"start" db:"start_minute"`
	End           TimeOfDay     `json:"end" db:"end_minute"`
	Status        BookingStatus `json:"status" db:"status"`
	PaymentMode   PaymentMode   `json:"payment_mode" db:"payment_mode"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`

	// OriginalPrice is the catalog price; TotalPrice is what the client owes
	// after any promotion.
	OriginalPrice int64      `json:"original_price" db:"original_price"`
	Discount      int64      `json:"discount" db:"discount"`
	TotalPrice    int64      `json:"total_price" db:"total_price"`
	PromotionID   *uuid.UUID `json:"promotion_id,omitempty" db:"promotion_id"`
	PaymentSplit  `json:"payment_split"`

	CancelledBy  string `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CancelReason string `json:"cancel_reason,omitempty" db:"cancel_reason"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}
