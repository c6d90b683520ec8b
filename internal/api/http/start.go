package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/internal/api/http/router"
	"github.com/Alijeyrad/salonora_backend/internal/app"
)

func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// NewServer only runs, and registers its OnStart hook, if something
		// depends on *fiber.App.
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: slog.Default().With("component", "fx")}
		}),
	).Run()
}
