package system

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/salonora_backend/internal/app"
	"github.com/Alijeyrad/salonora_backend/internal/cli"
	"github.com/Alijeyrad/salonora_backend/pkg/logs"
)

// NewSweepCommand runs the maintenance sweep once, for use from an external
// scheduler when the in-process cron is disabled.
func NewSweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Discard stale pending bookings and expire ended promotions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger, flush := logs.New(cfg)
			defer flush()
			slog.SetDefault(logger)

			var sweeper *app.Sweeper
			fxApp := fx.New(
				fx.Supply(cfg),
				app.InfraModule,
				app.ServiceModule,
				fx.Populate(&sweeper),
				fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			)
			if err := fxApp.Err(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := fxApp.Start(ctx); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer fxApp.Stop(context.Background())

			if err := sweeper.RunOnce(ctx); err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Println("Sweep completed.")
			return nil
		},
	}

	return cmd
}
