package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

// WithinTx holds the store lock for the whole unit of work and undoes every
// write if fn fails or ctx is done before commit.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &memTx{s: s}
	defer func() {
		if r := recover(); r != nil {
			t.rollback()
			panic(r)
		}
		if err != nil {
			t.rollback()
		}
	}()

	if err = fn(ctx, t); err != nil {
		return err
	}
	return ctx.Err()
}

type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	s := t.s
	for _, other := range s.bookings {
		if other.ProviderID == b.ProviderID &&
			other.Date == b.Date &&
			other.Status.Active() &&
			other.Interval().Overlaps(b.Interval()) {
			return repo.ErrConflict
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	s.bookings[b.ID] = *b

	id := b.ID
	t.undo = append(t.undo, func() { delete(s.bookings, id) })
	return nil
}

func (t *memTx) GetBookingForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &b, nil
}

func (t *memTx) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	s := t.s
	b, ok := s.bookings[id]
	if !ok {
		return repo.ErrNotFound
	}
	delete(s.bookings, id)
	t.undo = append(t.undo, func() { s.bookings[id] = b })
	return nil
}

func (t *memTx) IncrementUsageIfBelowMax(ctx context.Context, promotionID uuid.UUID) (bool, error) {
	s := t.s
	p, ok := s.promotions[promotionID]
	if !ok {
		return false, repo.ErrNotFound
	}
	if p.Status != model.PromotionActive || (p.MaxUses != nil && p.CurrentUses >= *p.MaxUses) {
		return false, nil
	}
	prev := p
	p.CurrentUses++
	s.promotions[promotionID] = p
	t.undo = append(t.undo, func() { s.promotions[promotionID] = prev })
	return true, nil
}

func (t *memTx) CountUserUsages(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	return t.s.countUserUsages(promotionID, userID), nil
}

func (t *memTx) InsertUsage(ctx context.Context, u *model.PromotionUsage) error {
	s := t.s
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = s.now()
	s.usages[u.ID] = *u

	id := u.ID
	t.undo = append(t.undo, func() { delete(s.usages, id) })
	return nil
}

func (t *memTx) ReleaseUsages(ctx context.Context, bookingID uuid.UUID) (int, error) {
	s := t.s
	released := lo.Filter(lo.Values(s.usages), func(u model.PromotionUsage, _ int) bool {
		return u.BookingID == bookingID
	})
	for _, u := range released {
		delete(s.usages, u.ID)
		t.undo = append(t.undo, func() { s.usages[u.ID] = u })

		if p, ok := s.promotions[u.PromotionID]; ok && p.CurrentUses > 0 {
			prev := p
			p.CurrentUses--
			s.promotions[p.ID] = p
			t.undo = append(t.undo, func() { s.promotions[prev.ID] = prev })
		}
	}
	return len(released), nil
}
