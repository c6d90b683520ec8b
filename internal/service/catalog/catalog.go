package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

type CreateRequest struct {
	Name            string
	DurationMinutes int
	Price           int64
}

type Service interface {
	Create(ctx context.Context, providerID uuid.UUID, req CreateRequest) (*model.ServiceOffering, error)
	// Get returns an offering only if it belongs to providerID.
	Get(ctx context.Context, providerID, serviceID uuid.UUID) (*model.ServiceOffering, error)
	List(ctx context.Context, providerID uuid.UUID) ([]model.ServiceOffering, error)
}

type catalogService struct {
	store repo.Catalog
}

func New(store repo.Catalog) Service {
	return &catalogService{store: store}
}

func (s *catalogService) Create(ctx context.Context, providerID uuid.UUID, req CreateRequest) (*model.ServiceOffering, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidService)
	case req.DurationMinutes <= 0 || req.DurationMinutes > 24*60:
		return nil, fmt.Errorf("%w: duration must be within 1..1440 minutes", ErrInvalidService)
	case req.Price < 0:
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidService)
	}

	svc := &model.ServiceOffering{
		ProviderID:      providerID,
		Name:            name,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          true,
	}
	if err := s.store.InsertService(ctx, svc); err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}
	return svc, nil
}

func (s *catalogService) Get(ctx context.Context, providerID, serviceID uuid.UUID) (*model.ServiceOffering, error) {
	svc, err := s.store.GetService(ctx, serviceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc.ProviderID != providerID {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}

func (s *catalogService) List(ctx context.Context, providerID uuid.UUID) ([]model.ServiceOffering, error) {
	out, err := s.store.ListServices(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return out, nil
}
