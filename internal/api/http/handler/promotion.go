package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
)

type PromotionHandler struct {
	svc promotion.Service
}

func NewPromotionHandler(svc promotion.Service) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

func mapPromotionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, promotion.ErrNotFound),
		errors.Is(err, promotion.ErrServiceGone):
		return fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, promotion.ErrCodeTaken):
		return fail(c, fiber.StatusConflict, err)
	case errors.Is(err, promotion.ErrInvalidInput),
		errors.Is(err, promotion.ErrInvalidAmount):
		return fail(c, fiber.StatusBadRequest, err)
	default:
		return mapDomainError(c, err)
	}
}

// GET /providers/:pid/promotions
func (h *PromotionHandler) List(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}
	list, err := h.svc.List(c.Context(), providerID)
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, list)
}

type createPromotionBody struct {
	Code                 string      `json:"code" validate:"omitempty,max=64"`
	Type                 string      `json:"type" validate:"required,oneof=percentage fixed_amount free_service"`
	Value                int64       `json:"value" validate:"gte=0"`
	MinPurchaseAmount    int64       `json:"min_purchase_amount" validate:"gte=0"`
	MaxDiscountAmount    *int64      `json:"max_discount_amount" validate:"omitempty,gte=0"`
	StartDate            time.Time   `json:"start_date" validate:"required"`
	EndDate              time.Time   `json:"end_date" validate:"required,gtefield=StartDate"`
	MaxUses              *int        `json:"max_uses" validate:"omitempty,gte=1"`
	MaxUsesPerUser       *int        `json:"max_uses_per_user" validate:"omitempty,gte=1"`
	NewClientsOnly       bool        `json:"new_clients_only"`
	FirstBookingOnly     bool        `json:"first_booking_only"`
	ValidDaysOfWeek      []int       `json:"valid_days_of_week" validate:"omitempty,dive,gte=0,lte=6"`
	ApplicableServiceIDs []uuid.UUID `json:"applicable_service_ids"`
}

// POST /providers/:pid/promotions
func (h *PromotionHandler) Create(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body createPromotionBody
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.svc.Create(c.Context(), providerID, promotion.CreateRequest{
		Code:                 body.Code,
		Type:                 model.PromotionType(body.Type),
		Value:                body.Value,
		MinPurchaseAmount:    body.MinPurchaseAmount,
		MaxDiscountAmount:    body.MaxDiscountAmount,
		StartDate:            body.StartDate,
		EndDate:              body.EndDate,
		MaxUses:              body.MaxUses,
		MaxUsesPerUser:       body.MaxUsesPerUser,
		NewClientsOnly:       body.NewClientsOnly,
		FirstBookingOnly:     body.FirstBookingOnly,
		ValidDaysOfWeek:      lo.Map(body.ValidDaysOfWeek, func(d int, _ int) time.Weekday { return time.Weekday(d) }),
		ApplicableServiceIDs: body.ApplicableServiceIDs,
	})
	if err != nil {
		return mapPromotionError(c, err)
	}
	return created(c, p)
}

// PATCH /promotions/:id/status
func (h *PromotionHandler) SetStatus(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body struct {
		Status string `json:"status" validate:"required,oneof=active paused expired"`
	}
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.svc.SetStatus(c.Context(), id, model.PromotionStatus(body.Status))
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, p)
}

// POST /promotions/quote
// A rejected code is still a 200: the quote carries valid=false and the reason.
func (h *PromotionHandler) Quote(c fiber.Ctx) error {
	var body struct {
		ProviderID string `json:"provider_id" validate:"required,uuid"`
		ServiceID  string `json:"service_id" validate:"required,uuid"`
		ClientID   string `json:"client_id" validate:"required,uuid"`
		Code       string `json:"code" validate:"required,max=64"`
		Date       string `json:"date" validate:"required"`
	}
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	date, err := model.ParseDate(body.Date)
	if err != nil {
		return badRequest(c, err.Error())
	}

	q, err := h.svc.Quote(c.Context(), promotion.QuoteRequest{
		ProviderID: uuid.MustParse(body.ProviderID),
		ServiceID:  uuid.MustParse(body.ServiceID),
		ClientID:   uuid.MustParse(body.ClientID),
		Code:       body.Code,
		Date:       date,
	})
	if err != nil {
		return mapPromotionError(c, err)
	}
	return ok(c, q)
}
