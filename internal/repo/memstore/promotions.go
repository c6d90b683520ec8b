package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

func clonePromotion(p model.Promotion) *model.Promotion {
	p.ValidDaysOfWeek = slices.Clone(p.ValidDaysOfWeek)
	p.ApplicableServiceIDs = slices.Clone(p.ApplicableServiceIDs)
	return &p
}

func (s *Store) GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promotions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clonePromotion(p), nil
}

func (s *Store) GetPromotionByCode(ctx context.Context, providerID uuid.UUID, code string) (*model.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := lo.Find(lo.Values(s.promotions), func(p model.Promotion) bool {
		return p.ProviderID == providerID && strings.EqualFold(p.Code, code)
	})
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clonePromotion(p), nil
}

func (s *Store) CountUserUsages(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.countUserUsages(promotionID, userID), nil
}

func (s *Store) countUserUsages(promotionID, userID uuid.UUID) int {
	return lo.CountBy(lo.Values(s.usages), func(u model.PromotionUsage) bool {
		return u.PromotionID == promotionID && u.UserID == userID
	})
}

func (s *Store) ListPromotions(ctx context.Context, providerID uuid.UUID) ([]model.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.FilterMap(lo.Values(s.promotions), func(p model.Promotion, _ int) (model.Promotion, bool) {
		return *clonePromotion(p), p.ProviderID == providerID
	})
	slices.SortFunc(out, func(a, b model.Promotion) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) InsertPromotion(ctx context.Context, p *model.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, taken := lo.Find(lo.Values(s.promotions), func(o model.Promotion) bool {
		return o.ProviderID == p.ProviderID && strings.EqualFold(o.Code, p.Code)
	})
	if taken {
		return repo.ErrConflict
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.promotions[p.ID] = *clonePromotion(*p)
	return nil
}

func (s *Store) SetPromotionStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus, at time.Time) (*model.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promotions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	s.promotions[id] = p
	return clonePromotion(p), nil
}

func (s *Store) ExpireEndedPromotions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, p := range s.promotions {
		if p.Status == model.PromotionActive && p.EndDate.Before(now) {
			p.Status = model.PromotionExpired
			p.UpdatedAt = now
			s.promotions[id] = p
			n++
		}
	}
	return n, nil
}
