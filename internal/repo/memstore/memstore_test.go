package memstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

var testDate = model.Date{Year: 2026, Month: 11, Day: 2}

func newBooking(provider uuid.UUID, start, end model.TimeOfDay) *model.Booking {
	return &model.Booking{
		ProviderID:    provider,
		ServiceID:     uuid.New(),
		ClientID:      uuid.New(),
		Date:          testDate,
		Start:         start,
		End:           end,
		Status:        model.BookingPending,
		PaymentMode:   model.PaymentFull,
		PaymentStatus: model.PaymentUnpaid,
	}
}

func insert(t *testing.T, s *Store, b *model.Booking) error {
	t.Helper()
	return s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		return tx.InsertBooking(ctx, b)
	})
}

func TestInsertBookingExclusion(t *testing.T) {
	s := New()
	provider := uuid.New()

	if err := insert(t, s, newBooking(provider, model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0))); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	tests := []struct {
		name    string
		booking *model.Booking
		wantErr error
	}{
		{"overlapping", newBooking(provider, model.NewTimeOfDay(10, 30), model.NewTimeOfDay(11, 30)), repo.ErrConflict},
		{"adjacent", newBooking(provider, model.NewTimeOfDay(11, 0), model.NewTimeOfDay(12, 0)), nil},
		{"other provider", newBooking(uuid.New(), model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := insert(t, s, tt.booking); !errors.Is(err, tt.wantErr) {
				t.Errorf("InsertBooking() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCancelledBookingFreesInterval(t *testing.T) {
	s := New()
	provider := uuid.New()
	b := newBooking(provider, model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0))
	if err := insert(t, s, b); err != nil {
		t.Fatal(err)
	}

	_, err := s.TransitionBooking(context.Background(), b.ID, repo.StatusChange{
		From: model.ActiveStatuses,
		To:   model.BookingCancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	again := newBooking(provider, model.NewTimeOfDay(10, 0), model.NewTimeOfDay(11, 0))
	if err := insert(t, s, again); err != nil {
		t.Errorf("slot should be free after cancellation: %v", err)
	}

	_, err = s.TransitionBooking(context.Background(), b.ID, repo.StatusChange{
		From: []model.BookingStatus{model.BookingConfirmed},
		To:   model.BookingCompleted,
	})
	if !errors.Is(err, repo.ErrPrecondition) {
		t.Errorf("completing a cancelled booking: error = %v, want ErrPrecondition", err)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	s := New()
	maxUses := 5
	promo := &model.Promotion{ProviderID: uuid.New(), Code: "SPRING", Status: model.PromotionActive, MaxUses: &maxUses}
	if err := s.InsertPromotion(context.Background(), promo); err != nil {
		t.Fatal(err)
	}
	b := newBooking(promo.ProviderID, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0))

	boom := errors.New("boom")
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		if _, err := tx.IncrementUsageIfBelowMax(ctx, promo.ID); err != nil {
			return err
		}
		if err := tx.InsertUsage(ctx, &model.PromotionUsage{PromotionID: promo.ID, UserID: b.ClientID, BookingID: b.ID}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want boom", err)
	}

	if _, err := s.GetBooking(context.Background(), b.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("booking survived rollback: %v", err)
	}
	got, _ := s.GetPromotion(context.Background(), promo.ID)
	if got.CurrentUses != 0 {
		t.Errorf("current uses = %d after rollback, want 0", got.CurrentUses)
	}
	if n, _ := s.CountUserUsages(context.Background(), promo.ID, b.ClientID); n != 0 {
		t.Errorf("usage survived rollback: %d", n)
	}
}

func TestIncrementUsageIfBelowMaxConcurrent(t *testing.T) {
	s := New()
	maxUses := 3
	promo := &model.Promotion{ProviderID: uuid.New(), Code: "LIMITED", Status: model.PromotionActive, MaxUses: &maxUses}
	if err := s.InsertPromotion(context.Background(), promo); err != nil {
		t.Fatal(err)
	}

	var granted atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
				ok, err := tx.IncrementUsageIfBelowMax(ctx, promo.ID)
				if ok {
					granted.Add(1)
				}
				return err
			})
		}()
	}
	wg.Wait()

	if granted.Load() != int32(maxUses) {
		t.Errorf("granted %d increments, want %d", granted.Load(), maxUses)
	}
	got, _ := s.GetPromotion(context.Background(), promo.ID)
	if got.CurrentUses != maxUses {
		t.Errorf("current uses = %d, want %d", got.CurrentUses, maxUses)
	}
}

func TestReleaseUsages(t *testing.T) {
	s := New()
	promo := &model.Promotion{ProviderID: uuid.New(), Code: "WELCOME", Status: model.PromotionActive}
	if err := s.InsertPromotion(context.Background(), promo); err != nil {
		t.Fatal(err)
	}
	b := newBooking(promo.ProviderID, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0))

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		if _, err := tx.IncrementUsageIfBelowMax(ctx, promo.ID); err != nil {
			return err
		}
		return tx.InsertUsage(ctx, &model.PromotionUsage{PromotionID: promo.ID, UserID: b.ClientID, BookingID: b.ID})
	})
	if err != nil {
		t.Fatal(err)
	}

	var released int
	err = s.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		var err error
		released, err = tx.ReleaseUsages(ctx, b.ID)
		if err != nil {
			return err
		}
		return tx.DeleteBooking(ctx, b.ID)
	})
	if err != nil {
		t.Fatal(err)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}
	got, _ := s.GetPromotion(context.Background(), promo.ID)
	if got.CurrentUses != 0 {
		t.Errorf("current uses = %d, want 0", got.CurrentUses)
	}
}

func TestListPendingStartedBefore(t *testing.T) {
	s := New()
	provider := uuid.New()
	early := newBooking(provider, model.NewTimeOfDay(9, 0), model.NewTimeOfDay(10, 0))
	late := newBooking(provider, model.NewTimeOfDay(15, 0), model.NewTimeOfDay(16, 0))
	for _, b := range []*model.Booking{early, late} {
		if err := insert(t, s, b); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListPendingStartedBefore(context.Background(), testDate, model.NewTimeOfDay(12, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != early.ID {
		t.Errorf("ListPendingStartedBefore() = %v, want only the 09:00 booking", got)
	}
}
