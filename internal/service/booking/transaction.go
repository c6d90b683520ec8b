package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/internal/service/availability"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/pkg/events"
)

var tracer = otel.Tracer("salonora/booking")

func (r SubmitRequest) validate() error {
	switch {
	case r.ProviderID == uuid.Nil:
		return errors.New("provider_id is required")
	case r.ServiceID == uuid.Nil:
		return errors.New("service_id is required")
	case r.ClientID == uuid.Nil:
		return errors.New("client_id is required")
	case r.Date.IsZero():
		return errors.New("date is required")
	case !r.Start.Valid() || r.Start == model.EndOfDay:
		return fmt.Errorf("start %s out of range", r.Start)
	case !r.PaymentMode.Valid():
		return fmt.Errorf("unknown payment mode %q", r.PaymentMode)
	}
	return nil
}

// Submit drives a request from Draft to Persisted. Any failure aborts the
// whole submission and leaves nothing behind.
func (s *bookingService) Submit(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "booking.Submit", trace.WithAttributes(
		attribute.String("provider_id", req.ProviderID.String()),
		attribute.String("date", req.Date.String()),
		attribute.String("start", req.Start.String()),
		attribute.Bool("promotion", req.PromotionCode != ""),
	))
	defer span.End()

	receipt, err := s.submit(ctx, req)
	s.metrics.recordSubmission(ctx, outcomeOf(err))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
	}
	return receipt, err
}

func (s *bookingService) submit(ctx context.Context, req SubmitRequest) (*Receipt, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.PromotionCode = strings.TrimSpace(req.PromotionCode)

	t := &transaction{stage: StageDraft, req: req}

	if err := s.reserveSlot(ctx, t); err != nil {
		return nil, err
	}
	if req.PromotionCode != "" {
		if err := s.applyPromotion(ctx, t); err != nil {
			return nil, err
		}
	}
	if err := s.finalizePrice(ctx, t); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, t); err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookingCreated, t.booking)
	slog.InfoContext(ctx, "booking persisted",
		"booking_id", t.booking.ID,
		"provider_id", t.booking.ProviderID,
		"date", t.booking.Date.String(),
		"slot", t.slot.String(),
		"total", t.booking.TotalPrice,
		"amount_now", t.booking.AmountNow,
	)
	return t.receipt(), nil
}

// reserveSlot regenerates availability and requires the chosen start to
// still be offered.
func (s *bookingService) reserveSlot(ctx context.Context, t *transaction) error {
	offering, err := s.bookableOffering(ctx, t.req.ProviderID, t.req.ServiceID)
	if err != nil {
		return err
	}
	t.offering = offering

	slots, err := s.Availability.GenerateSlots(ctx, availability.Request{
		ProviderID:      t.req.ProviderID,
		Date:            t.req.Date,
		DurationMinutes: offering.DurationMinutes,
	})
	if err != nil {
		return fmt.Errorf("regenerate slots: %w", err)
	}

	found := false
	for _, sl := range slots {
		if sl.Start == t.req.Start {
			t.slot, found = sl, true
			break
		}
	}
	if !found {
		return ErrSlotNoLongerAvailable
	}

	t.price = offering.Price
	return t.advance(StageSlotReserved)
}

// applyPromotion validates the code and stages a usage. Nothing is written.
func (s *bookingService) applyPromotion(ctx context.Context, t *transaction) error {
	promo, err := s.Promotions.Resolve(ctx, t.req.ProviderID, t.req.PromotionCode)
	if err != nil {
		return err
	}

	err = s.Promotions.Validate(ctx, promo, promotion.Candidate{
		UserID:    t.req.ClientID,
		ServiceID: t.req.ServiceID,
		Amount:    t.price,
		Date:      t.req.Date,
	})
	if err != nil {
		if reason, ok := promotion.ReasonOf(err); ok {
			slog.InfoContext(ctx, "promotion rejected", "code", promo.Code, "reason", reason)
		}
		return err
	}

	d, err := s.Promotions.CalculateDiscount(promo, t.price)
	if err != nil {
		return err
	}

	t.promo = promo
	t.discount = d
	t.price = d.FinalAmount
	t.usage = &model.PromotionUsage{
		PromotionID:     promo.ID,
		UserID:          t.req.ClientID,
		DiscountApplied: d.Amount,
	}
	return t.advance(StagePromotionApplied)
}

func (s *bookingService) finalizePrice(ctx context.Context, t *transaction) error {
	rate, err := s.Commission.GetCommissionRate(ctx, t.req.ProviderID)
	if err != nil {
		return fmt.Errorf("commission rate: %w", err)
	}
	split, err := s.Payments.Compute(t.price, t.req.PaymentMode, rate)
	if err != nil {
		return err
	}
	t.split = split

	t.booking = &model.Booking{
		ID:            uuid.New(),
		ProviderID:    t.req.ProviderID,
		ServiceID:     t.req.ServiceID,
		ClientID:      t.req.ClientID,
		Date:          t.req.Date,
		Start:         t.slot.Start,
		End:           t.slot.End,
		Status:        model.BookingPending,
		PaymentMode:   t.req.PaymentMode,
		PaymentStatus: model.PaymentUnpaid,
		OriginalPrice: t.offering.Price,
		Discount:      t.discount.Amount,
		TotalPrice:    t.price,
		PaymentSplit:  split,
	}
	if t.promo != nil {
		id := t.promo.ID
		t.booking.PromotionID = &id
	}
	return t.advance(StagePriceFinalized)
}

// persist writes the booking and, when a promotion was applied, consumes one
// use of it, all in one transaction.
func (s *bookingService) persist(ctx context.Context, t *transaction) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		if err := tx.InsertBooking(ctx, t.booking); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return ErrSlotNoLongerAvailable
			}
			return fmt.Errorf("insert booking: %w", err)
		}
		if t.usage == nil {
			return nil
		}

		ok, err := tx.IncrementUsageIfBelowMax(ctx, t.promo.ID)
		if err != nil {
			return fmt.Errorf("increment promotion usage: %w", err)
		}
		if !ok {
			return promotion.Invalid(promotion.ReasonMaxUsesReached)
		}

		// The increment holds the promotion row, so this count cannot race
		// with another redemption of the same promotion.
		used, err := tx.CountUserUsages(ctx, t.promo.ID, t.req.ClientID)
		if err != nil {
			return fmt.Errorf("count user usages: %w", err)
		}
		if used >= s.Promotions.MaxUsesPerUser(t.promo) {
			return promotion.Invalid(promotion.ReasonMaxUsesPerUserReached)
		}

		t.usage.BookingID = t.booking.ID
		if err := tx.InsertUsage(ctx, t.usage); err != nil {
			return fmt.Errorf("insert promotion usage: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotNoLongerAvailable) {
			slog.InfoContext(ctx, "slot lost to a concurrent booking",
				"provider_id", t.req.ProviderID, "date", t.req.Date.String(), "slot", t.slot.String())
		}
		return err
	}
	return t.advance(StagePersisted)
}

func (t *transaction) receipt() *Receipt {
	b := t.booking
	r := &Receipt{
		BookingID:     b.ID,
		Status:        b.Status,
		ProviderID:    b.ProviderID,
		ServiceID:     b.ServiceID,
		ClientID:      b.ClientID,
		Date:          b.Date,
		Slot:          t.slot,
		PaymentMode:   b.PaymentMode,
		OriginalPrice: b.OriginalPrice,
		Discount:      b.Discount,
		TotalPrice:    b.TotalPrice,
		PaymentSplit:  t.split,
	}
	if t.promo != nil {
		r.PromotionCode = t.promo.Code
	}
	return r
}
