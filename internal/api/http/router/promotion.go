package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/api/http/handler"
)

func (r *Router) registerPromotionRoutes(api fiber.Router, ph *handler.PromotionHandler) {
	api.Get("/providers/:pid/promotions", ph.List)
	api.Post("/providers/:pid/promotions", ph.Create)

	// quote before :id so it is not captured as an id
	api.Post("/promotions/quote", ph.Quote)
	api.Patch("/promotions/:id/status", ph.SetStatus)
}
