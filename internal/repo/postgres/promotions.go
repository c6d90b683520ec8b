package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

// promotionRow is the storage shape of model.Promotion; the array columns
// need pq wrappers.
type promotionRow struct {
	ID                   uuid.UUID             `db:"id"`
	ProviderID           uuid.UUID             `db:"provider_id"`
	Code                 string                `db:"code"`
	Type                 model.PromotionType   `db:"type"`
	Value                int64                 `db:"value"`
	MinPurchaseAmount    int64                 `db:"min_purchase_amount"`
	MaxDiscountAmount    *int64                `db:"max_discount_amount"`
	StartDate            time.Time             `db:"start_date"`
	EndDate              time.Time             `db:"end_date"`
	MaxUses              *int                  `db:"max_uses"`
	MaxUsesPerUser       *int                  `db:"max_uses_per_user"`
	CurrentUses          int                   `db:"current_uses"`
	NewClientsOnly       bool                  `db:"new_clients_only"`
	FirstBookingOnly     bool                  `db:"first_booking_only"`
	ValidDaysOfWeek      pq.Int64Array         `db:"valid_days_of_week"`
	ApplicableServiceIDs pq.StringArray        `db:"applicable_service_ids"`
	Status               model.PromotionStatus `db:"status"`
	CreatedAt            time.Time             `db:"created_at"`
	UpdatedAt            time.Time             `db:"updated_at"`
}

const promotionColumns = `id, provider_id, code, type, value, min_purchase_amount, max_discount_amount,
	start_date, end_date, max_uses, max_uses_per_user, current_uses, new_clients_only, first_booking_only,
	valid_days_of_week, applicable_service_ids, status, created_at, updated_at`

func toPromotionRow(p *model.Promotion) promotionRow {
	return promotionRow{
		ID:                p.ID,
		ProviderID:        p.ProviderID,
		Code:              p.Code,
		Type:              p.Type,
		Value:             p.Value,
		MinPurchaseAmount: p.MinPurchaseAmount,
		MaxDiscountAmount: p.MaxDiscountAmount,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		MaxUses:           p.MaxUses,
		MaxUsesPerUser:    p.MaxUsesPerUser,
		CurrentUses:       p.CurrentUses,
		NewClientsOnly:    p.NewClientsOnly,
		FirstBookingOnly:  p.FirstBookingOnly,
		ValidDaysOfWeek: lo.Map(p.ValidDaysOfWeek, func(d time.Weekday, _ int) int64 {
			return int64(d)
		}),
		ApplicableServiceIDs: lo.Map(p.ApplicableServiceIDs, func(id uuid.UUID, _ int) string {
			return id.String()
		}),
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r promotionRow) toModel() (*model.Promotion, error) {
	ids := make([]uuid.UUID, 0, len(r.ApplicableServiceIDs))
	for _, s := range r.ApplicableServiceIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return &model.Promotion{
		ID:                r.ID,
		ProviderID:        r.ProviderID,
		Code:              r.Code,
		Type:              r.Type,
		Value:             r.Value,
		MinPurchaseAmount: r.MinPurchaseAmount,
		MaxDiscountAmount: r.MaxDiscountAmount,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		MaxUses:           r.MaxUses,
		MaxUsesPerUser:    r.MaxUsesPerUser,
		CurrentUses:       r.CurrentUses,
		NewClientsOnly:    r.NewClientsOnly,
		FirstBookingOnly:  r.FirstBookingOnly,
		ValidDaysOfWeek: lo.Map(r.ValidDaysOfWeek, func(d int64, _ int) time.Weekday {
			return time.Weekday(d)
		}),
		ApplicableServiceIDs: ids,
		Status:               r.Status,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}, nil
}

func (s *Store) getPromotion(ctx context.Context, query string, args ...any) (*model.Promotion, error) {
	var row promotionRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, mapErr(err)
	}
	return row.toModel()
}

func (s *Store) GetPromotion(ctx context.Context, id uuid.UUID) (*model.Promotion, error) {
	return s.getPromotion(ctx, `SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
}

func (s *Store) GetPromotionByCode(ctx context.Context, providerID uuid.UUID, code string) (*model.Promotion, error) {
	return s.getPromotion(ctx, `
		SELECT `+promotionColumns+` FROM promotions
		WHERE provider_id = $1 AND upper(code) = upper($2)`, providerID, code)
}

func (s *Store) CountUserUsages(ctx context.Context, promotionID, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT count(*) FROM promotion_usages WHERE promotion_id = $1 AND user_id = $2`, promotionID, userID)
	return n, mapErr(err)
}

func (s *Store) ListPromotions(ctx context.Context, providerID uuid.UUID) ([]model.Promotion, error) {
	var rows []promotionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+promotionColumns+` FROM promotions
		WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
	if err != nil {
		return nil, mapErr(err)
	}

	out := make([]model.Promotion, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *Store) InsertPromotion(ctx context.Context, p *model.Promotion) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO promotions (`+promotionColumns+`)
		VALUES (:id, :provider_id, :code, :type, :value, :min_purchase_amount, :max_discount_amount,
			:start_date, :end_date, :max_uses, :max_uses_per_user, :current_uses, :new_clients_only,
			:first_booking_only, :valid_days_of_week, :applicable_service_ids, :status, :created_at, :updated_at)`,
		toPromotionRow(p))
	return mapErr(err)
}

func (s *Store) SetPromotionStatus(ctx context.Context, id uuid.UUID, status model.PromotionStatus, at time.Time) (*model.Promotion, error) {
	return s.getPromotion(ctx, `
		UPDATE promotions SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+promotionColumns, id, string(status), at)
}

func (s *Store) ExpireEndedPromotions(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE promotions SET status = 'expired', updated_at = $1
		WHERE status = 'active' AND end_date < $1`, now)
	if err != nil {
		return 0, mapErr(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
