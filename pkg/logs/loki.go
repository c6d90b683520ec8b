package logs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	promconfig "github.com/prometheus/common/config"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/Alijeyrad/salonora_backend/config"
)

// newLokiHandler ships records to Loki's push API in batches. The returned
// stop func flushes pending batches and must run before exit.
func newLokiHandler(cfg config.LokiConfig, level slog.Level) (slog.Handler, func(), error) {
	lc, err := loki.NewDefaultConfig(pushURL(cfg.Endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("loki config: %w", err)
	}
	if cfg.Username != "" {
		lc.Client.BasicAuth = &promconfig.BasicAuth{
			Username: cfg.Username,
			Password: promconfig.Secret(cfg.Password),
		}
	}

	client, err := loki.New(lc)
	if err != nil {
		return nil, nil, fmt.Errorf("loki client: %w", err)
	}
	h := slogloki.Option{Level: level, Client: client}.NewLokiHandler()
	return h, client.Stop, nil
}

// pushURL accepts either the Loki base URL or the full push endpoint.
func pushURL(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(endpoint, "/loki/api/v1/push") {
		return endpoint
	}
	return endpoint + "/loki/api/v1/push"
}
