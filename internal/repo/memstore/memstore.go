// Package memstore is an in-process repo.Store. It keeps the same guarantees
// as the PostgreSQL store (overlap exclusion, conditional usage increment,
// all-or-nothing transactions) by serializing every call on one mutex.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	providers  map[uuid.UUID]model.Provider
	services   map[uuid.UUID]model.ServiceOffering
	hours      map[uuid.UUID]model.WeeklyHours
	exceptions map[uuid.UUID]model.ScheduleException
	bookings   map[uuid.UUID]model.Booking
	promotions map[uuid.UUID]model.Promotion
	usages     map[uuid.UUID]model.PromotionUsage
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:        time.Now,
		providers:  make(map[uuid.UUID]model.Provider),
		services:   make(map[uuid.UUID]model.ServiceOffering),
		hours:      make(map[uuid.UUID]model.WeeklyHours),
		exceptions: make(map[uuid.UUID]model.ScheduleException),
		bookings:   make(map[uuid.UUID]model.Booking),
		promotions: make(map[uuid.UUID]model.Promotion),
		usages:     make(map[uuid.UUID]model.PromotionUsage),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

// ----- accounts

func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpsertProvider(ctx context.Context, p *model.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.providers[p.ID] = *p
	return nil
}

// ----- catalog

func (s *Store) GetService(ctx context.Context, id uuid.UUID) (*model.ServiceOffering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &svc, nil
}

func (s *Store) ListServices(ctx context.Context, providerID uuid.UUID) ([]model.ServiceOffering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.services), func(svc model.ServiceOffering, _ int) bool {
		return svc.ProviderID == providerID
	})
	slices.SortFunc(out, func(a, b model.ServiceOffering) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

func (s *Store) InsertService(ctx context.Context, svc *model.ServiceOffering) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	svc.CreatedAt = s.now()
	s.services[svc.ID] = *svc
	return nil
}

// ----- schedule

func (s *Store) GetWeeklyHours(ctx context.Context, providerID uuid.UUID) (model.WeeklyHours, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hours[providerID]
	if !ok {
		return model.WeeklyHours{}, nil
	}
	out := make(model.WeeklyHours, len(h))
	for d, v := range h {
		out[d] = v
	}
	return out, nil
}

func (s *Store) SetWeeklyHours(ctx context.Context, providerID uuid.UUID, hours model.WeeklyHours) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(model.WeeklyHours, len(hours))
	for d, v := range hours {
		cp[d] = v
	}
	s.hours[providerID] = cp
	return nil
}

func (s *Store) GetExceptions(ctx context.Context, providerID uuid.UUID, date model.Date) ([]model.ScheduleException, error) {
	return s.ListExceptions(ctx, providerID, date, date)
}

func (s *Store) ListExceptions(ctx context.Context, providerID uuid.UUID, from, to model.Date) ([]model.ScheduleException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Filter(lo.Values(s.exceptions), func(e model.ScheduleException, _ int) bool {
		return e.ProviderID == providerID && !e.Date.Before(from) && !e.Date.After(to)
	})
	slices.SortFunc(out, func(a, b model.ScheduleException) int {
		if a.Date != b.Date {
			if a.Date.Before(b.Date) {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Start, b.Start)
	})
	return out, nil
}

func (s *Store) InsertException(ctx context.Context, e *model.ScheduleException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = s.now()
	s.exceptions[e.ID] = *e
	return nil
}

func (s *Store) DeleteException(ctx context.Context, providerID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.exceptions[id]
	if !ok || e.ProviderID != providerID {
		return repo.ErrNotFound
	}
	delete(s.exceptions, id)
	return nil
}
