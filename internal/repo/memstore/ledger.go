package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

func compareBookings(a, b model.Booking) int {
	if a.Date != b.Date {
		if a.Date.Before(b.Date) {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Start, b.Start)
}

func (s *Store) GetActiveBookings(ctx context.Context, providerID uuid.UUID, date model.Date) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.bookings), func(b model.Booking, _ int) bool {
		return b.ProviderID == providerID && b.Date == date && b.Status.Active()
	})
	slices.SortFunc(out, compareBookings)
	return out, nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &b, nil
}

func (s *Store) ListBookings(ctx context.Context, f repo.BookingFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.bookings), func(b model.Booking, _ int) bool {
		switch {
		case f.ProviderID != nil && b.ProviderID != *f.ProviderID:
			return false
		case f.ClientID != nil && b.ClientID != *f.ClientID:
			return false
		case f.From != nil && b.Date.Before(*f.From):
			return false
		case f.To != nil && b.Date.After(*f.To):
			return false
		case f.Status != nil && b.Status != *f.Status:
			return false
		}
		return true
	})
	slices.SortFunc(out, compareBookings)

	if f.Offset > 0 {
		out = out[min(f.Offset, len(out)):]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) CountCompletedBookings(ctx context.Context, clientID uuid.UUID, providerID *uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.CountBy(lo.Values(s.bookings), func(b model.Booking) bool {
		return b.ClientID == clientID &&
			b.Status == model.BookingCompleted &&
			(providerID == nil || b.ProviderID == *providerID)
	}), nil
}

func (s *Store) TransitionBooking(ctx context.Context, id uuid.UUID, change repo.StatusChange) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if !slices.Contains(change.From, b.Status) {
		return nil, repo.ErrPrecondition
	}

	at := change.At
	b.Status = change.To
	b.UpdatedAt = at
	switch change.To {
	case model.BookingConfirmed:
		b.ConfirmedAt = &at
	case model.BookingCancelled:
		b.CancelledAt = &at
		b.CancelledBy = change.CancelledBy
		b.CancelReason = change.CancelReason
	case model.BookingCompleted:
		b.CompletedAt = &at
	}
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if !b.Status.Active() || b.PaymentStatus != model.PaymentUnpaid {
		return nil, repo.ErrPrecondition
	}
	b.PaymentStatus = model.PaymentPaid
	b.UpdatedAt = at
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) ListPendingStartedBefore(ctx context.Context, date model.Date, minute model.TimeOfDay) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.bookings), func(b model.Booking, _ int) bool {
		if b.Status != model.BookingPending {
			return false
		}
		return b.Date.Before(date) || (b.Date == date && b.Start < minute)
	})
	slices.SortFunc(out, compareBookings)
	return out, nil
}
