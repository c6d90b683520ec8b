package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/internal/service/availability"
	"github.com/Alijeyrad/salonora_backend/internal/service/catalog"
	"github.com/Alijeyrad/salonora_backend/internal/service/payment"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/pkg/events"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type SubmitRequest struct {
	ProviderID    uuid.UUID
	ServiceID     uuid.UUID
	ClientID      uuid.UUID
	Date          model.Date
	Start         model.TimeOfDay
	PaymentMode   model.PaymentMode
	PromotionCode string
}

// Receipt is what a successful submission hands to the payment-capture side.
type Receipt struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	Status        model.BookingStatus `json:"status"`
	ProviderID    uuid.UUID           `json:"provider_id"`
	ServiceID     uuid.UUID           `json:"service_id"`
	ClientID      uuid.UUID           `json:"client_id"`
	Date          model.Date          `json:"date"`
	Slot          model.Slot          `json:"slot"`
	PaymentMode   model.PaymentMode   `json:"payment_mode"`
	OriginalPrice int64               `json:"original_price"`
	Discount      int64               `json:"discount"`
	TotalPrice    int64               `json:"total_price"`
	PromotionCode string              `json:"promotion_code,omitempty"`
	PaymentSplit  model.PaymentSplit  `json:"payment_split"`
}

type ListRequest struct {
	ProviderID *uuid.UUID
	ClientID   *uuid.UUID
	Status     *model.BookingStatus
	From       *model.Date
	To         *model.Date
	Page       int
	PerPage    int
}

type CancelRequest struct {
	RequestedBy string // "client" | "provider"
	Reason      string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	GetAvailableSlots(ctx context.Context, providerID uuid.UUID, date model.Date, serviceID uuid.UUID) ([]model.Slot, error)
	Submit(ctx context.Context, req SubmitRequest) (*Receipt, error)

	Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, req ListRequest) ([]model.Booking, error)

	Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID, req CancelRequest) (*model.Booking, error)
	Complete(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*model.Booking, error)

	// DiscardPending deletes a booking that was never confirmed and gives
	// back any promotion use it consumed.
	DiscardPending(ctx context.Context, id uuid.UUID) error
	// DiscardStalePending discards pending bookings whose start passed more
	// than the configured TTL ago.
	DiscardStalePending(ctx context.Context) (int, error)
}

// CommissionSource resolves a provider's platform commission rate.
type CommissionSource interface {
	GetCommissionRate(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error)
}

type Deps struct {
	Ledger       repo.Ledger
	Tx           repo.Transactor
	Catalog      catalog.Service
	Availability availability.Service
	Promotions   promotion.Service
	Commission   CommissionSource
	Payments     payment.Calculator
	Events       events.Publisher
}

type Config struct {
	Location   *time.Location
	PendingTTL time.Duration
	Now        func() time.Time
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type bookingService struct {
	Deps
	cfg     Config
	metrics *metrics
}

func New(d Deps, cfg Config) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	return &bookingService{Deps: d, cfg: cfg, metrics: newMetrics()}
}

func (s *bookingService) GetAvailableSlots(ctx context.Context, providerID uuid.UUID, date model.Date, serviceID uuid.UUID) ([]model.Slot, error) {
	offering, err := s.bookableOffering(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	return s.Availability.GenerateSlots(ctx, availability.Request{
		ProviderID:      providerID,
		Date:            date,
		DurationMinutes: offering.DurationMinutes,
	})
}

func (s *bookingService) bookableOffering(ctx context.Context, providerID, serviceID uuid.UUID) (*model.ServiceOffering, error) {
	offering, err := s.Catalog.Get(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}
	if !offering.Active {
		return nil, ErrServiceUnavailable
	}
	return offering, nil
}

func (s *bookingService) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.Ledger.GetBooking(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (s *bookingService) List(ctx context.Context, req ListRequest) ([]model.Booking, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, fmt.Errorf("%w: range ends before it starts", ErrInvalidInput)
	}

	out, err := s.Ledger.ListBookings(ctx, repo.BookingFilter{
		ProviderID: req.ProviderID,
		ClientID:   req.ClientID,
		From:       req.From,
		To:         req.To,
		Status:     req.Status,
		Limit:      req.PerPage,
		Offset:     (req.Page - 1) * req.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (s *bookingService) Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.transition(ctx, id, repo.StatusChange{To: model.BookingConfirmed})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingConfirmed, b)
	return b, nil
}

func (s *bookingService) Cancel(ctx context.Context, id uuid.UUID, req CancelRequest) (*model.Booking, error) {
	switch req.RequestedBy {
	case "client", "provider":
	default:
		return nil, fmt.Errorf("%w: requested_by must be client or provider", ErrInvalidInput)
	}

	b, err := s.transition(ctx, id, repo.StatusChange{
		To:           model.BookingCancelled,
		CancelledBy:  req.RequestedBy,
		CancelReason: req.Reason,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCancelled, b)

	if b.PaymentStatus == model.PaymentPaid && b.AmountNow > 0 {
		refund := events.RefundInstruction{
			BookingID:   b.ID,
			ProviderID:  b.ProviderID,
			ClientID:    b.ClientID,
			Amount:      b.AmountNow,
			Reason:      req.Reason,
			RequestedAt: s.cfg.Now(),
		}
		if err := s.Events.Publish(ctx, events.Subject(events.RefundRequested, b.ProviderID), refund); err != nil {
			slog.ErrorContext(ctx, "refund instruction not published",
				"booking_id", b.ID, "amount", b.AmountNow, "err", err)
		}
	}
	return b, nil
}

func (s *bookingService) Complete(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.transition(ctx, id, repo.StatusChange{To: model.BookingCompleted})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.BookingCompleted, b)
	return b, nil
}

func (s *bookingService) MarkPaid(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.Ledger.MarkPaid(ctx, id, s.cfg.Now())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repo.ErrPrecondition):
		return nil, fmt.Errorf("%w: booking is not awaiting payment", ErrInvalidTransition)
	case err != nil:
		return nil, fmt.Errorf("mark booking paid: %w", err)
	}
	return b, nil
}

func (s *bookingService) transition(ctx context.Context, id uuid.UUID, change repo.StatusChange) (*model.Booking, error) {
	change.From = lifecycleEdges[change.To]
	change.At = s.cfg.Now()

	b, err := s.Ledger.TransitionBooking(ctx, id, change)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, repo.ErrPrecondition):
		if cur, gerr := s.Ledger.GetBooking(ctx, id); gerr == nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, change.To)
		}
		return nil, ErrInvalidTransition
	case err != nil:
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Discard
// ---------------------------------------------------------------------------

func (s *bookingService) DiscardPending(ctx context.Context, id uuid.UUID) error {
	var discarded *model.Booking
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		b, err := tx.GetBookingForUpdate(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock booking: %w", err)
		}
		if b.Status != model.BookingPending {
			return fmt.Errorf("%w: only pending bookings can be discarded, this one is %s", ErrInvalidTransition, b.Status)
		}
		if _, err := tx.ReleaseUsages(ctx, id); err != nil {
			return fmt.Errorf("release promotion usages: %w", err)
		}
		if err := tx.DeleteBooking(ctx, id); err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		discarded = b
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.BookingDiscarded, discarded)
	return nil
}

func (s *bookingService) DiscardStalePending(ctx context.Context) (int, error) {
	cutoff := s.cfg.Now().In(s.cfg.Location).Add(-s.cfg.PendingTTL)
	date := model.DateOf(cutoff)
	minute := model.NewTimeOfDay(cutoff.Hour(), cutoff.Minute())

	stale, err := s.Ledger.ListPendingStartedBefore(ctx, date, minute)
	if err != nil {
		return 0, fmt.Errorf("list stale pending bookings: %w", err)
	}

	n := 0
	for _, b := range stale {
		err := s.DiscardPending(ctx, b.ID)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidTransition):
			// confirmed or removed since listing
		default:
			return n, err
		}
	}
	if n > 0 {
		slog.InfoContext(ctx, "discarded stale pending bookings", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// publish is fire-and-forget: the booking is already committed, so a broker
// failure is logged and not returned.
func (s *bookingService) publish(ctx context.Context, event string, b *model.Booking) {
	payload := events.BookingEvent{
		BookingID:  b.ID,
		ProviderID: b.ProviderID,
		ClientID:   b.ClientID,
		ServiceID:  b.ServiceID,
		Date:       b.Date.String(),
		Start:      b.Start.String(),
		End:        b.End.String(),
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice,
		AmountNow:  b.AmountNow,
		OccurredAt: s.cfg.Now(),
	}
	if err := s.Events.Publish(ctx, events.Subject(event, b.ProviderID), payload); err != nil {
		slog.WarnContext(ctx, "booking event not published", "event", event, "booking_id", b.ID, "err", err)
	}
}
