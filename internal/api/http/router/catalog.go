package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/api/http/handler"
)

func (r *Router) registerCatalogRoutes(api fiber.Router, ch *handler.CatalogHandler) {
	api.Post("/providers", ch.RegisterProvider)
	api.Get("/providers/:pid", ch.GetProvider)

	api.Get("/providers/:pid/services", ch.ListServices)
	api.Post("/providers/:pid/services", ch.CreateService)
}
