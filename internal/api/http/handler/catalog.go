package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/service/account"
	"github.com/Alijeyrad/salonora_backend/internal/service/catalog"
)

type CatalogHandler struct {
	accounts account.Service
	catalog  catalog.Service
}

func NewCatalogHandler(accounts account.Service, catalog catalog.Service) *CatalogHandler {
	return &CatalogHandler{accounts: accounts, catalog: catalog}
}

func mapCatalogError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, account.ErrProviderNotFound),
		errors.Is(err, catalog.ErrServiceNotFound):
		return fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, account.ErrInvalidProvider),
		errors.Is(err, catalog.ErrInvalidService):
		return fail(c, fiber.StatusBadRequest, err)
	default:
		return mapDomainError(c, err)
	}
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

// POST /providers
func (h *CatalogHandler) RegisterProvider(c fiber.Ctx) error {
	var body struct {
		Name             string `json:"name" validate:"required,max=200"`
		SubscriptionTier string `json:"subscription_tier" validate:"omitempty,max=32"`
	}
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	p := &model.Provider{Name: body.Name, SubscriptionTier: body.SubscriptionTier}
	if err := h.accounts.RegisterProvider(c.Context(), p); err != nil {
		return mapCatalogError(c, err)
	}
	return created(c, p)
}

// GET /providers/:pid
func (h *CatalogHandler) GetProvider(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}
	p, err := h.accounts.GetProvider(c.Context(), providerID)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return ok(c, p)
}

// ---------------------------------------------------------------------------
// Services
// ---------------------------------------------------------------------------

// GET /providers/:pid/services
func (h *CatalogHandler) ListServices(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}
	list, err := h.catalog.List(c.Context(), providerID)
	if err != nil {
		return mapCatalogError(c, err)
	}
	return ok(c, list)
}

// POST /providers/:pid/services
func (h *CatalogHandler) CreateService(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body struct {
		Name            string `json:"name" validate:"required,max=200"`
		DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
		Price           int64  `json:"price" validate:"gte=0"`
	}
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	svc, err := h.catalog.Create(c.Context(), providerID, catalog.CreateRequest{
		Name:            body.Name,
		DurationMinutes: body.DurationMinutes,
		Price:           body.Price,
	})
	if err != nil {
		return mapCatalogError(c, err)
	}
	return created(c, svc)
}
