package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

var bookingColumnList = []string{
	"id", "provider_id", "service_id", "client_id", "booking_date", "start_minute", "end_minute",
	"status", "payment_mode", "payment_status", "original_price", "discount", "total_price",
	"promotion_id", "amount_now", "amount_later", "commission", "provider_payout", "commission_rate",
	"cancelled_by", "cancel_reason", "created_at", "updated_at", "confirmed_at", "cancelled_at", "completed_at",
}

var bookingColumns = columns(bookingColumnList)

const activeStatuses = `('pending', 'confirmed')`

func (s *Store) GetActiveBookings(ctx context.Context, providerID uuid.UUID, date model.Date) ([]model.Booking, error) {
	out := []model.Booking{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE provider_id = $1 AND booking_date = $2 AND status IN `+activeStatuses+`
		ORDER BY start_minute`, providerID, date)
	return out, mapErr(err)
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return getBooking(ctx, s.db, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func getBooking(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*model.Booking, error) {
	var b model.Booking
	if err := sqlx.GetContext(ctx, q, &b, query, args...); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *Store) ListBookings(ctx context.Context, f repo.BookingFilter) ([]model.Booking, error) {
	query, args := listBookingsQuery(f)
	out := []model.Booking{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// listBookingsQuery builds the WHERE clause from whichever filters are set.
func listBookingsQuery(f repo.BookingFilter) (string, []any) {
	sel := entsql.Dialect(dialect.Postgres).
		Select(bookingColumnList...).
		From(entsql.Table("bookings"))

	if f.ProviderID != nil {
		sel.Where(entsql.EQ("provider_id", *f.ProviderID))
	}
	if f.ClientID != nil {
		sel.Where(entsql.EQ("client_id", *f.ClientID))
	}
	if f.From != nil {
		sel.Where(entsql.GTE("booking_date", f.From.String()))
	}
	if f.To != nil {
		sel.Where(entsql.LTE("booking_date", f.To.String()))
	}
	if f.Status != nil {
		sel.Where(entsql.EQ("status", string(*f.Status)))
	}
	sel.OrderBy("booking_date", "start_minute", "id")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sel.Offset(f.Offset)
	}
	return sel.Query()
}

func (s *Store) CountCompletedBookings(ctx context.Context, clientID uuid.UUID, providerID *uuid.UUID) (int, error) {
	var n int
	var err error
	if providerID == nil {
		err = s.db.GetContext(ctx, &n,
			`SELECT count(*) FROM bookings WHERE client_id = $1 AND status = 'completed'`, clientID)
	} else {
		err = s.db.GetContext(ctx, &n,
			`SELECT count(*) FROM bookings WHERE client_id = $1 AND provider_id = $2 AND status = 'completed'`,
			clientID, *providerID)
	}
	return n, mapErr(err)
}

func (s *Store) TransitionBooking(ctx context.Context, id uuid.UUID, change repo.StatusChange) (*model.Booking, error) {
	from := lo.Map(change.From, func(st model.BookingStatus, _ int) string { return string(st) })
	args := []any{id, string(change.To), change.At, pq.Array(from)}

	set := "status = $2, updated_at = $3"
	switch change.To {
	case model.BookingConfirmed:
		set += ", confirmed_at = $3"
	case model.BookingCompleted:
		set += ", completed_at = $3"
	case model.BookingCancelled:
		set += ", cancelled_at = $3, cancelled_by = $5, cancel_reason = $6"
		args = append(args, change.CancelledBy, change.CancelReason)
	}

	b, err := getBooking(ctx, s.db, `
		UPDATE bookings SET `+set+`
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+bookingColumns, args...)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, s.missOrPrecondition(ctx, id)
	}
	return b, err
}

func (s *Store) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*model.Booking, error) {
	b, err := getBooking(ctx, s.db, `
		UPDATE bookings SET payment_status = 'paid', updated_at = $2
		WHERE id = $1 AND status IN `+activeStatuses+` AND payment_status = 'unpaid'
		RETURNING `+bookingColumns, id, at)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, s.missOrPrecondition(ctx, id)
	}
	return b, err
}

// missOrPrecondition tells apart a conditional update that matched nothing
// because the row is gone from one whose guard failed.
func (s *Store) missOrPrecondition(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("check booking: %w", err)
	}
	if !exists {
		return repo.ErrNotFound
	}
	return repo.ErrPrecondition
}

func (s *Store) ListPendingStartedBefore(ctx context.Context, date model.Date, minute model.TimeOfDay) ([]model.Booking, error) {
	out := []model.Booking{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE status = 'pending'
		  AND (booking_date < $1 OR (booking_date = $1 AND start_minute < $2))
		ORDER BY booking_date, start_minute`, date, minute)
	return out, mapErr(err)
}
