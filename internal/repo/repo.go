// Package repo declares the persistence contracts the booking engine reads
// from and writes to. Implementations live in the subpackages.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

// ScheduleSource is the read side of a provider's calendar.
type ScheduleSource interface {
	GetWeeklyHours(ctx context.Context, providerID uuid.UUID) (model.WeeklyHours, error)
	GetExceptions(ctx context.Context, providerID uuid.UUID, date model.Date) ([]model.ScheduleException, error)
}

type ScheduleStore interface {
	ScheduleSource
	SetWeeklyHours(ctx context.Context, providerID uuid.UUID, hours model.WeeklyHours) error
	ListExceptions(ctx context.Context, providerID uuid.UUID, from, to model.Date) ([]model.ScheduleException, error)
	InsertException(ctx context.Context, e *model.ScheduleException) error
	DeleteException(ctx context.Context, providerID, id uuid.UUID) error
}

// BookingSource returns the bookings occupying a provider's day.
type BookingSource interface {
	// GetActiveBookings returns pending and confirmed bookings only.
	GetActiveBookings(ctx context.Context, providerID uuid.UUID, date model.Date) ([]model.Booking, error)
}

type BookingFilter struct {
	ProviderID *uuid.UUID
	ClientID   *uuid.UUID
	From       *model.Date
	To         *model.Date
	Status     *model.BookingStatus
	Limit      int
	Offset     int
}

// StatusChange describes a guarded status transition. The update applies only
// when the booking's current status is one of From.
type StatusChange struct {
	From         []model.BookingStatus
	To           model.BookingStatus
	At           time.Time
	CancelledBy  string
	CancelReason string
}

type Ledger interface {
	BookingSource
	GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error)
	// CountCompletedBookings counts a client's completed bookings, optionally
	// restricted to one provider.
	CountCompletedBookings(ctx context.Context, clientID uuid.UUID, providerID *uuid.UUID) (int, error)
	// TransitionBooking returns ErrNotFound for an unknown id and
	// ErrPrecondition when the current status is not in change.From.
	TransitionBooking(ctx context.Context, id uuid.UUID, change StatusChange) (*model.Booking, error)
	// MarkPaid flips an active, unpaid booking to paid, else ErrPrecondition.
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*model.Booking, error)
	// ListPendingStartedBefore returns pending bookings whose start lies
	// before the given date and minute.
	ListPendingStartedBefore(ctx context.Context, date model.Date, minute model.TimeOfDay) ([]model.Booking, error)
}

type PromotionStore interface {
	GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	GetPromotionByCode(ctx context.Context, providerID uuid.UUID, code string) (*model.Promotion, error)
	CountUserUsages(ctx context.Context, promotionID, userID uuid.UUID) (int, error)
	ListPromotions(ctx context.Context, providerID uuid.UUID) ([]model.Promotion, error)
	InsertPromotion(ctx context.Context, p *model.Promotion) error
	SetPromotionStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus, at time.Time) (*model.Promotion, error)
	// ExpireEndedPromotions marks active promotions whose end date passed as
	// expired and returns how many changed.
	ExpireEndedPromotions(ctx context.Context, now time.Time) (int, error)
}

type Catalog interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.ServiceOffering, error)
	ListServices(ctx context.Context, providerID uuid.UUID) ([]model.ServiceOffering, error)
	InsertService(ctx context.Context, s *model.ServiceOffering) error
}

type Accounts interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	UpsertProvider(ctx context.Context, p *model.Provider) error
}

// Tx is the unit of work a booking submission or discard runs in. Nothing
// written through a Tx is visible until WithinTx returns nil.
type Tx interface {
	// InsertBooking returns ErrConflict when an active booking for the same
	// provider and date overlaps b.
	InsertBooking(ctx context.Context, b *model.Booking) error
	GetBookingForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error

	// IncrementUsageIfBelowMax atomically bumps currentUses when the
	// promotion is active and below maxUses. It reports whether it did.
	IncrementUsageIfBelowMax(ctx context.Context, promotionID uuid.UUID) (bool, error)
	CountUserUsages(ctx context.Context, promotionID, userID uuid.UUID) (int, error)
	InsertUsage(ctx context.Context, u *model.PromotionUsage) error
	// ReleaseUsages deletes the usages recorded for a booking and gives the
	// uses back to their promotions.
	ReleaseUsages(ctx context.Context, bookingID uuid.UUID) (int, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Store is everything the application needs from a backend.
type Store interface {
	ScheduleStore
	Ledger
	PromotionStore
	Catalog
	Accounts
	Transactor
	Ping(ctx context.Context) error
	Close() error
}
