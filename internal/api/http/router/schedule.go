package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/salonora_backend/internal/api/http/handler"
)

func (r *Router) registerScheduleRoutes(api fiber.Router, sh *handler.ScheduleHandler) {
	provider := api.Group("/providers/:pid")

	provider.Get("/hours", sh.GetHours)
	provider.Put("/hours", sh.SetHours)

	provider.Get("/exceptions", sh.ListExceptions)
	provider.Post("/exceptions", sh.AddException)
	provider.Delete("/exceptions/:id", sh.DeleteException)
}
