package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

type Service interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error)
	RegisterProvider(ctx context.Context, p *model.Provider) error
	// GetCommissionRate resolves the provider's subscription tier to the
	// platform commission rate. Unknown tiers fall back to the default tier.
	GetCommissionRate(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error)
}

type accountService struct {
	store       repo.Accounts
	tiers       map[string]decimal.Decimal
	defaultTier string
}

// New parses the tier table once. Every rate must lie in (0, 1).
func New(store repo.Accounts, tiers map[string]string, defaultTier string) (Service, error) {
	parsed := make(map[string]decimal.Decimal, len(tiers))
	for tier, raw := range tiers {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("commission tier %q: %w", tier, err)
		}
		if !rate.IsPositive() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("commission tier %q: rate %s out of (0, 1)", tier, rate)
		}
		parsed[strings.ToLower(tier)] = rate
	}
	defaultTier = strings.ToLower(defaultTier)
	if _, ok := parsed[defaultTier]; !ok {
		return nil, fmt.Errorf("default commission tier %q not configured", defaultTier)
	}
	return &accountService{store: store, tiers: parsed, defaultTier: defaultTier}, nil
}

func (s *accountService) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	p, err := s.store.GetProvider(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

func (s *accountService) RegisterProvider(ctx context.Context, p *model.Provider) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProvider)
	}
	p.SubscriptionTier = strings.ToLower(strings.TrimSpace(p.SubscriptionTier))
	if p.SubscriptionTier == "" {
		p.SubscriptionTier = s.defaultTier
	}
	if _, ok := s.tiers[p.SubscriptionTier]; !ok {
		return fmt.Errorf("%w: unknown subscription tier %q", ErrInvalidProvider, p.SubscriptionTier)
	}
	if err := s.store.UpsertProvider(ctx, p); err != nil {
		return fmt.Errorf("upsert provider: %w", err)
	}
	return nil
}

func (s *accountService) GetCommissionRate(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error) {
	p, err := s.GetProvider(ctx, providerID)
	if err != nil {
		return decimal.Zero, err
	}
	if rate, ok := s.tiers[strings.ToLower(p.SubscriptionTier)]; ok {
		return rate, nil
	}
	slog.WarnContext(ctx, "unknown subscription tier, using default commission",
		"provider_id", providerID, "tier", p.SubscriptionTier, "default_tier", s.defaultTier)
	return s.tiers[s.defaultTier], nil
}
