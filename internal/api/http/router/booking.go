package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/api/http/handler"
)

func (r *Router) registerBookingRoutes(api fiber.Router, bh *handler.BookingHandler) {
	// Public slot search
	api.Get("/providers/:pid/slots", bh.ListSlots)
	api.Get("/providers/:pid/bookings", bh.ListByProvider)

	api.Post("/bookings", bh.Submit)
	api.Get("/bookings/:id", bh.Get)
	api.Delete("/bookings/:id", bh.Discard)

	api.Patch("/bookings/:id/confirm", bh.Confirm)
	api.Patch("/bookings/:id/cancel", bh.Cancel)
	api.Patch("/bookings/:id/complete", bh.Complete)
	api.Patch("/bookings/:id/paid", bh.MarkPaid)
}
