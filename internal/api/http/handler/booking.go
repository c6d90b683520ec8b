package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/service/booking"
	"github.com/Alijeyrad/salonora_backend/internal/service/catalog"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
)

type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func mapBookingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrSlotNoLongerAvailable):
		return fail(c, fiber.StatusConflict, err)
	case errors.Is(err, booking.ErrInvalidTransition):
		return fail(c, fiber.StatusConflict, err)
	case errors.Is(err, promotion.ErrInvalid):
		return fail(c, fiber.StatusUnprocessableEntity, err)
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, catalog.ErrServiceNotFound),
		errors.Is(err, promotion.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, booking.ErrServiceUnavailable):
		return fail(c, fiber.StatusBadRequest, err)
	default:
		return mapDomainError(c, err)
	}
}

// ---------------------------------------------------------------------------
// Slots
// ---------------------------------------------------------------------------

// GET /providers/:pid/slots?date=YYYY-MM-DD&service_id=
func (h *BookingHandler) ListSlots(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var q struct {
		Date      string `query:"date" validate:"required"`
		ServiceID string `query:"service_id" validate:"required,uuid"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	if err := validate.Struct(&q); err != nil {
		return badRequest(c, "date and service_id are required")
	}
	date, err := model.ParseDate(q.Date)
	if err != nil {
		return badRequest(c, err.Error())
	}

	slots, err := h.svc.GetAvailableSlots(c.Context(), providerID, date, uuid.MustParse(q.ServiceID))
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, fiber.Map{"date": date, "slots": slots})
}

// ---------------------------------------------------------------------------
// Submission
// ---------------------------------------------------------------------------

type submitBookingBody struct {
	ProviderID    string `json:"provider_id" validate:"required,uuid"`
	ServiceID     string `json:"service_id" validate:"required,uuid"`
	ClientID      string `json:"client_id" validate:"required,uuid"`
	Date          string `json:"date" validate:"required"`
	Start         string `json:"start" validate:"required"`
	PaymentMode   string `json:"payment_mode" validate:"required,oneof=deposit full"`
	PromotionCode string `json:"promotion_code" validate:"omitempty,max=64"`
}

func (b submitBookingBody) toRequest() (booking.SubmitRequest, error) {
	date, err := model.ParseDate(b.Date)
	if err != nil {
		return booking.SubmitRequest{}, err
	}
	start, err := model.ParseTimeOfDay(b.Start)
	if err != nil {
		return booking.SubmitRequest{}, err
	}
	return booking.SubmitRequest{
		ProviderID:    uuid.MustParse(b.ProviderID),
		ServiceID:     uuid.MustParse(b.ServiceID),
		ClientID:      uuid.MustParse(b.ClientID),
		Date:          date,
		Start:         start,
		PaymentMode:   model.PaymentMode(b.PaymentMode),
		PromotionCode: b.PromotionCode,
	}, nil
}

// POST /bookings
func (h *BookingHandler) Submit(c fiber.Ctx) error {
	var body submitBookingBody
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	req, err := body.toRequest()
	if err != nil {
		return badRequest(c, err.Error())
	}

	receipt, err := h.svc.Submit(c.Context(), req)
	if err != nil {
		return mapBookingError(c, err)
	}
	return created(c, receipt)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// GET /bookings/:id
func (h *BookingHandler) Get(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	b, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, b)
}

// GET /providers/:pid/bookings?from=&to=&status=&client_id=&page=&per_page=
func (h *BookingHandler) ListByProvider(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var q struct {
		From     string `query:"from"`
		To       string `query:"to"`
		Status   string `query:"status"`
		ClientID string `query:"client_id"`
		Page     int    `query:"page"`
		PerPage  int    `query:"per_page"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	req := booking.ListRequest{ProviderID: &providerID, Page: q.Page, PerPage: q.PerPage}
	if req.From, err = optionalDate(q.From, "from"); err != nil {
		return badRequest(c, err.Error())
	}
	if req.To, err = optionalDate(q.To, "to"); err != nil {
		return badRequest(c, err.Error())
	}
	if q.Status != "" {
		status := model.BookingStatus(q.Status)
		req.Status = &status
	}
	if q.ClientID != "" {
		clientID, err := uuid.Parse(q.ClientID)
		if err != nil {
			return badRequest(c, "invalid client_id")
		}
		req.ClientID = &clientID
	}

	list, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, list)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// PATCH /bookings/:id/confirm
func (h *BookingHandler) Confirm(c fiber.Ctx) error {
	return h.transition(c, h.svc.Confirm)
}

// PATCH /bookings/:id/complete
func (h *BookingHandler) Complete(c fiber.Ctx) error {
	return h.transition(c, h.svc.Complete)
}

// PATCH /bookings/:id/paid
func (h *BookingHandler) MarkPaid(c fiber.Ctx) error {
	return h.transition(c, h.svc.MarkPaid)
}

func (h *BookingHandler) transition(c fiber.Ctx, apply func(ctx context.Context, id uuid.UUID) (*model.Booking, error)) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	b, err := apply(c.Context(), id)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, b)
}

// PATCH /bookings/:id/cancel
func (h *BookingHandler) Cancel(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body struct {
		RequestedBy string `json:"requested_by" validate:"required,oneof=client provider"`
		Reason      string `json:"reason" validate:"max=500"`
	}
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}

	b, err := h.svc.Cancel(c.Context(), id, booking.CancelRequest{
		RequestedBy: body.RequestedBy,
		Reason:      body.Reason,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, b)
}

// DELETE /bookings/:id
func (h *BookingHandler) Discard(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.svc.DiscardPending(c.Context(), id); err != nil {
		return mapBookingError(c, err)
	}
	return noContent(c)
}
