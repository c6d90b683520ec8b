package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/service/scheduling"
)

type ScheduleHandler struct {
	svc scheduling.Service
}

func NewScheduleHandler(svc scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrExceptionNotFound):
		return fail(c, fiber.StatusNotFound, err)
	case errors.Is(err, scheduling.ErrInvalidTimeRange),
		errors.Is(err, scheduling.ErrInvalidHours),
		errors.Is(err, scheduling.ErrInvalidRange):
		return fail(c, fiber.StatusBadRequest, err)
	default:
		return mapDomainError(c, err)
	}
}

// ---------------------------------------------------------------------------
// Weekly hours
// ---------------------------------------------------------------------------

type dayHoursView struct {
	Day    int             `json:"day"`
	Open   model.TimeOfDay `json:"open"`
	Close  model.TimeOfDay `json:"close"`
	Active bool            `json:"active"`
}

// GET /providers/:pid/hours
func (h *ScheduleHandler) GetHours(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	hours, err := h.svc.GetWeeklyHours(c.Context(), providerID)
	if err != nil {
		return mapScheduleError(c, err)
	}

	days := make([]dayHoursView, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		dh, found := hours[d]
		if !found {
			continue
		}
		days = append(days, dayHoursView{Day: int(d), Open: dh.Open, Close: dh.Close, Active: dh.Active})
	}
	return ok(c, days)
}

// PUT /providers/:pid/hours
// Accepts either {start,end} or the older {open,close} shape per day.
func (h *ScheduleHandler) SetHours(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body struct {
		Days []scheduling.DayHoursPayload `json:"days" validate:"max=7"`
	}
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	hours, err := scheduling.ToWeeklyHours(body.Days)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.svc.SetWeeklyHours(c.Context(), providerID, hours); err != nil {
		return mapScheduleError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Exceptions
// ---------------------------------------------------------------------------

// GET /providers/:pid/exceptions?from=&to=
func (h *ScheduleHandler) ListExceptions(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var q struct {
		From string `query:"from"`
		To   string `query:"to"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}
	from, err := model.ParseDate(q.From)
	if err != nil {
		return badRequest(c, "from: "+err.Error())
	}
	to, err := model.ParseDate(q.To)
	if err != nil {
		return badRequest(c, "to: "+err.Error())
	}

	list, err := h.svc.ListExceptions(c.Context(), providerID, from, to)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, list)
}

// POST /providers/:pid/exceptions
func (h *ScheduleHandler) AddException(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var body scheduling.ExceptionPayload
	if err := bindBody(c, &body); err != nil {
		return badRequest(c, err.Error())
	}
	in, err := body.ToInput()
	if err != nil {
		return badRequest(c, err.Error())
	}

	e, err := h.svc.AddException(c.Context(), providerID, in)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return created(c, e)
}

// DELETE /providers/:pid/exceptions/:id
func (h *ScheduleHandler) DeleteException(c fiber.Ctx) error {
	providerID, err := uuidParam(c, "pid")
	if err != nil {
		return badRequest(c, err.Error())
	}
	exceptionID, err := uuidParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.svc.DeleteException(c.Context(), providerID, exceptionID); err != nil {
		return mapScheduleError(c, err)
	}
	return noContent(c)
}
