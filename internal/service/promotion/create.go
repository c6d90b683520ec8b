package promotion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/pkg/codes"
)

type CreateRequest struct {
	Code                 string
	Type                 model.PromotionType
	Value                int64
	MinPurchaseAmount    int64
	MaxDiscountAmount    *int64
	StartDate            time.Time
	EndDate              time.Time
	MaxUses              *int
	MaxUsesPerUser       *int
	NewClientsOnly       bool
	FirstBookingOnly     bool
	ValidDaysOfWeek      []time.Weekday
	ApplicableServiceIDs []uuid.UUID
}

const (
	maxCodeLength = 64
	// generated codes are retried this many times on collision
	maxCodeAttempts = 3
)

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r CreateRequest) validate() error {
	switch {
	case len(r.Code) > maxCodeLength:
		return fmt.Errorf("code longer than %d characters", maxCodeLength)
	case !r.Type.Valid():
		return fmt.Errorf("unknown type %q", r.Type)
	case r.Type == model.PromotionPercentage && (r.Value <= 0 || r.Value > 100):
		return errors.New("percentage value must be within 1..100")
	case r.Type == model.PromotionFixedAmount && r.Value <= 0:
		return errors.New("fixed amount must be positive")
	case r.MinPurchaseAmount < 0:
		return errors.New("min purchase amount must not be negative")
	case r.MaxDiscountAmount != nil && *r.MaxDiscountAmount < 0:
		return errors.New("max discount amount must not be negative")
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return errors.New("start and end dates are required")
	case r.EndDate.Before(r.StartDate):
		return errors.New("end date precedes start date")
	case r.MaxUses != nil && *r.MaxUses < 1:
		return errors.New("max uses must be at least 1")
	case r.MaxUsesPerUser != nil && *r.MaxUsesPerUser < 1:
		return errors.New("max uses per user must be at least 1")
	}
	for _, d := range r.ValidDaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("day of week %d out of range", d)
		}
	}
	return nil
}

func (s *promotionService) Create(ctx context.Context, providerID uuid.UUID, req CreateRequest) (*model.Promotion, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	days := lo.Uniq(req.ValidDaysOfWeek)
	slices.Sort(days)

	p := &model.Promotion{
		ProviderID:           providerID,
		Code:                 normalizeCode(req.Code),
		Type:                 req.Type,
		Value:                req.Value,
		MinPurchaseAmount:    req.MinPurchaseAmount,
		MaxDiscountAmount:    req.MaxDiscountAmount,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		MaxUses:              req.MaxUses,
		MaxUsesPerUser:       req.MaxUsesPerUser,
		NewClientsOnly:       req.NewClientsOnly,
		FirstBookingOnly:     req.FirstBookingOnly,
		ValidDaysOfWeek:      days,
		ApplicableServiceIDs: lo.Uniq(req.ApplicableServiceIDs),
		Status:               model.PromotionActive,
	}
	if p.Type == model.PromotionFreeService {
		p.Value = 0
	}

	// An empty code asks for a generated one.
	generate := p.Code == ""
	for attempt := 1; ; attempt++ {
		if generate {
			code, err := codes.PromoCode()
			if err != nil {
				return nil, fmt.Errorf("generate promotion code: %w", err)
			}
			p.Code = code
		}

		err := s.store.InsertPromotion(ctx, p)
		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, repo.ErrConflict) && generate && attempt < maxCodeAttempts:
			continue
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrCodeTaken
		default:
			return nil, fmt.Errorf("insert promotion: %w", err)
		}
	}
}
