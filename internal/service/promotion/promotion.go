package promotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Validate runs the promotion checks in a fixed order and returns an
	// *InvalidError for the first one that fails. It never writes.
	Validate(ctx context.Context, p *model.Promotion, c Candidate) error
	CalculateDiscount(p *model.Promotion, amount int64) (Discount, error)
	MaxUsesPerUser(p *model.Promotion) int

	Resolve(ctx context.Context, providerID uuid.UUID, code string) (*model.Promotion, error)
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)

	Create(ctx context.Context, providerID uuid.UUID, req CreateRequest) (*model.Promotion, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error)
	List(ctx context.Context, providerID uuid.UUID) ([]model.Promotion, error)
	SetStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (*model.Promotion, error)
	ExpireEnded(ctx context.Context) (int, error)
}

// Candidate is the booking a promotion is being checked against.
type Candidate struct {
	UserID    uuid.UUID
	ServiceID uuid.UUID
	Amount    int64
	Date      model.Date
}

type Discount struct {
	Amount      int64 `json:"discount"`
	FinalAmount int64 `json:"final_amount"`
}

type QuoteRequest struct {
	ProviderID uuid.UUID
	Code       string
	ClientID   uuid.UUID
	ServiceID  uuid.UUID
	Date       model.Date
}

type Quote struct {
	PromotionID   uuid.UUID `json:"promotion_id"`
	Code          string    `json:"code"`
	Valid         bool      `json:"valid"`
	Reason        Reason    `json:"reason,omitempty"`
	OriginalPrice int64     `json:"original_price"`
	Discount      int64     `json:"discount"`
	FinalAmount   int64     `json:"final_amount"`
}

// CompletedCounter is the slice of the ledger the client-history checks need.
type CompletedCounter interface {
	CountCompletedBookings(ctx context.Context, clientID uuid.UUID, providerID *uuid.UUID) (int, error)
}

type Config struct {
	DefaultMaxUsesPerUser int
	Now                   func() time.Time
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type promotionService struct {
	store   repo.PromotionStore
	history CompletedCounter
	catalog repo.Catalog
	cfg     Config
}

func New(store repo.PromotionStore, history CompletedCounter, catalog repo.Catalog, cfg Config) Service {
	if cfg.DefaultMaxUsesPerUser < 1 {
		cfg.DefaultMaxUsesPerUser = 1
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &promotionService{store: store, history: history, catalog: catalog, cfg: cfg}
}

func (s *promotionService) MaxUsesPerUser(p *model.Promotion) int {
	if p.MaxUsesPerUser != nil {
		return *p.MaxUsesPerUser
	}
	return s.cfg.DefaultMaxUsesPerUser
}

func (s *promotionService) Validate(ctx context.Context, p *model.Promotion, c Candidate) error {
	if p.Status != model.PromotionActive {
		return Invalid(ReasonInactive)
	}

	now := s.cfg.Now()
	if now.Before(p.StartDate) || now.After(p.EndDate) {
		return Invalid(ReasonOutOfWindow)
	}

	if c.Amount < p.MinPurchaseAmount {
		return Invalid(ReasonBelowMinPurchase)
	}

	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return Invalid(ReasonMaxUsesReached)
	}

	used, err := s.store.CountUserUsages(ctx, p.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("count user usages: %w", err)
	}
	if used >= s.MaxUsesPerUser(p) {
		return Invalid(ReasonMaxUsesPerUserReached)
	}

	if p.NewClientsOnly {
		n, err := s.history.CountCompletedBookings(ctx, c.UserID, &p.ProviderID)
		if err != nil {
			return fmt.Errorf("count completed bookings with provider: %w", err)
		}
		if n > 0 {
			return Invalid(ReasonNewClientsOnly)
		}
	}

	if p.FirstBookingOnly {
		n, err := s.history.CountCompletedBookings(ctx, c.UserID, nil)
		if err != nil {
			return fmt.Errorf("count completed bookings: %w", err)
		}
		if n > 0 {
			return Invalid(ReasonFirstBookingOnly)
		}
	}

	if len(p.ValidDaysOfWeek) > 0 && !lo.Contains(p.ValidDaysOfWeek, c.Date.Weekday()) {
		return Invalid(ReasonInvalidDayOfWeek)
	}

	if len(p.ApplicableServiceIDs) > 0 && !lo.Contains(p.ApplicableServiceIDs, c.ServiceID) {
		return Invalid(ReasonServiceNotApplicable)
	}

	return nil
}

func (s *promotionService) CalculateDiscount(p *model.Promotion, amount int64) (Discount, error) {
	if amount < 0 {
		return Discount{}, ErrInvalidAmount
	}

	var discount int64
	switch p.Type {
	case model.PromotionPercentage:
		discount = decimal.NewFromInt(amount).
			Mul(decimal.NewFromInt(p.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case model.PromotionFixedAmount:
		discount = p.Value
	case model.PromotionFreeService:
		discount = amount
	default:
		return Discount{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, p.Type)
	}

	if p.MaxDiscountAmount != nil {
		discount = min(discount, *p.MaxDiscountAmount)
	}
	discount = max(min(discount, amount), 0)

	return Discount{Amount: discount, FinalAmount: amount - discount}, nil
}

func (s *promotionService) Resolve(ctx context.Context, providerID uuid.UUID, code string) (*model.Promotion, error) {
	p, err := s.store.GetPromotionByCode(ctx, providerID, normalizeCode(code))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get promotion by code: %w", err)
	}
	return p, nil
}

// Quote validates a code against a prospective booking and prices it
// without staging a usage.
func (s *promotionService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	p, err := s.Resolve(ctx, req.ProviderID, req.Code)
	if err != nil {
		return nil, err
	}

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && svc.ProviderID != req.ProviderID) {
		return nil, ErrServiceGone
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}

	q := &Quote{PromotionID: p.ID, Code: p.Code, OriginalPrice: svc.Price, FinalAmount: svc.Price}
	err = s.Validate(ctx, p, Candidate{UserID: req.ClientID, ServiceID: svc.ID, Amount: svc.Price, Date: req.Date})
	if reason, ok := ReasonOf(err); ok {
		q.Reason = reason
		return q, nil
	}
	if err != nil {
		return nil, err
	}

	d, err := s.CalculateDiscount(p, svc.Price)
	if err != nil {
		return nil, err
	}
	q.Valid = true
	q.Discount = d.Amount
	q.FinalAmount = d.FinalAmount
	return q, nil
}

func (s *promotionService) Get(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	p, err := s.store.GetPromotion(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

func (s *promotionService) List(ctx context.Context, providerID uuid.UUID) ([]model.Promotion, error) {
	out, err := s.store.ListPromotions(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return out, nil
}

func (s *promotionService) SetStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus) (*model.Promotion, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	p, err := s.store.SetPromotionStatus(ctx, id, status, s.cfg.Now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set promotion status: %w", err)
	}
	return p, nil
}

func (s *promotionService) ExpireEnded(ctx context.Context) (int, error) {
	n, err := s.store.ExpireEndedPromotions(ctx, s.cfg.Now())
	if err != nil {
		return 0, fmt.Errorf("expire promotions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired ended promotions", "count", n)
	}
	return n, nil
}
