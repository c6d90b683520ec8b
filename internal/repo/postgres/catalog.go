package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

// ----- accounts

func (s *Store) GetProvider(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var p model.Provider
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, subscription_tier, created_at FROM providers WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *Store) UpsertProvider(ctx context.Context, p *model.Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO providers (id, name, subscription_tier, created_at)
		VALUES (:id, :name, :subscription_tier, :created_at)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, subscription_tier = EXCLUDED.subscription_tier`, p)
	return mapErr(err)
}

// ----- catalog

const serviceColumns = `id, provider_id, name, duration_minutes, price, active, created_at`

func (s *Store) GetService(ctx context.Context, id uuid.UUID) (*model.ServiceOffering, error) {
	var svc model.ServiceOffering
	err := s.db.GetContext(ctx, &svc, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return &svc, nil
}

func (s *Store) ListServices(ctx context.Context, providerID uuid.UUID) ([]model.ServiceOffering, error) {
	out := []model.ServiceOffering{}
	err := s.db.SelectContext(ctx, &out,
		`SELECT `+serviceColumns+` FROM services WHERE provider_id = $1 ORDER BY name, id`, providerID)
	return out, mapErr(err)
}

func (s *Store) InsertService(ctx context.Context, svc *model.ServiceOffering) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	svc.CreatedAt = s.now()
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES (:id, :provider_id, :name, :duration_minutes, :price, :active, :created_at)`, svc)
	return mapErr(err)
}
