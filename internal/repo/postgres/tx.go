package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, &pgTx{tx: tx, s: s}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

type pgTx struct {
	tx *sqlx.Tx
	s  *Store
}

func (t *pgTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := t.s.now()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (:id, :provider_id, :service_id, :client_id, :booking_date, :start_minute, :end_minute,
			:status, :payment_mode, :payment_status, :original_price, :discount, :total_price,
			:promotion_id, :amount_now, :amount_later, :commission, :provider_payout, :commission_rate,
			:cancelled_by, :cancel_reason, :created_at, :updated_at, :confirmed_at, :cancelled_at, :completed_at)`, b)
	return mapErr(err)
}

func (t *pgTx) GetBookingForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return getBooking(ctx, t.tx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

func (t *pgTx) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, t.tx, `DELETE FROM bookings WHERE id = $1`, id)
}

// IncrementUsageIfBelowMax holds the promotion row lock until the tx ends.
func (t *pgTx) IncrementUsageIfBelowMax(ctx context.Context, promotionID uuid.UUID) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE promotions SET current_uses = current_uses + 1
		WHERE id = $1 AND status = 'active' AND (max_uses IS NULL OR current_uses < max_uses)`, promotionID)
	if err != nil {
		return false, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	var exists bool
	if err := t.tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM promotions WHERE id = $1)`, promotionID); err != nil {
		return false, err
	}
	if !exists {
		return false, repo.ErrNotFound
	}
	return false, nil
}

func (t *pgTx) CountUserUsages(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	var n int
	err := t.tx.GetContext(ctx, &n,
		`SELECT count(*) FROM promotion_usages WHERE promotion_id = $1 AND user_id = $2`, promotionID, userID)
	return n, mapErr(err)
}

func (t *pgTx) InsertUsage(ctx context.Context, u *model.PromotionUsage) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = t.s.now()
	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO promotion_usages (id, promotion_id, user_id, booking_id, discount_applied, created_at)
		VALUES (:id, :promotion_id, :user_id, :booking_id, :discount_applied, :created_at)`, u)
	return mapErr(err)
}

func (t *pgTx) ReleaseUsages(ctx context.Context, bookingID uuid.UUID) (int, error) {
	var promotionIDs []uuid.UUID
	err := t.tx.SelectContext(ctx, &promotionIDs,
		`DELETE FROM promotion_usages WHERE booking_id = $1 RETURNING promotion_id`, bookingID)
	if err != nil {
		return 0, mapErr(err)
	}
	for _, id := range promotionIDs {
		_, err := t.tx.ExecContext(ctx, `
			UPDATE promotions SET current_uses = current_uses - 1
			WHERE id = $1 AND current_uses > 0`, id)
		if err != nil {
			return 0, fmt.Errorf("decrement promotion %s: %w", id, err)
		}
	}
	return len(promotionIDs), nil
}
