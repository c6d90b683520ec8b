package http

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/salonora_backend/internal/api/http"
	"github.com/Alijeyrad/salonora_backend/internal/cli"
	"github.com/Alijeyrad/salonora_backend/pkg/logs"
)

func NewStartCommand() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			// Set up structured logger before fx starts so all logs use it.
			logger, flush := logs.New(cfg)
			defer flush()
			slog.SetDefault(logger)

			http.Start(cfg, shutdownTimeout)
			return nil
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for graceful shutdown")

	return cmd
}
