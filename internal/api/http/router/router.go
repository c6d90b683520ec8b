package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/internal/api/http/handler"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/internal/service/account"
	"github.com/Alijeyrad/salonora_backend/internal/service/booking"
	"github.com/Alijeyrad/salonora_backend/internal/service/catalog"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/internal/service/scheduling"
	"github.com/Alijeyrad/salonora_backend/pkg/observability"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

// readinessTimeout bounds the store ping behind the readiness probe.
const readinessTimeout = 2 * time.Second

type Params struct {
	fx.In

	Cfg           *config.Config
	Store         repo.Store
	AccountSvc    account.Service
	CatalogSvc    catalog.Service
	SchedulingSvc scheduling.Service
	PromotionSvc  promotion.Service
	BookingSvc    booking.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Handlers
	catalogH := handler.NewCatalogHandler(r.p.AccountSvc, r.p.CatalogSvc)
	scheduleH := handler.NewScheduleHandler(r.p.SchedulingSvc)
	promotionH := handler.NewPromotionHandler(r.p.PromotionSvc)
	bookingH := handler.NewBookingHandler(r.p.BookingSvc)

	api := app.Group("/api/v1")

	// 3. Delegate to sub-files
	r.registerCatalogRoutes(api, catalogH)
	r.registerScheduleRoutes(api, scheduleH)
	r.registerPromotionRoutes(api, promotionH)
	r.registerBookingRoutes(api, bookingH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
			defer cancel()
			return r.p.Store.Ping(ctx) == nil
		},
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(observability.MetricsHandler()))
	}
}
