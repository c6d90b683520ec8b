package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/pkg/reqctx"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	var debug, warn bytes.Buffer
	logger := slog.New(&multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}).With("service", "test")

	logger.Info("slot generated")
	logger.Warn("slot lost")

	if strings.Count(debug.String(), "\n") != 2 {
		t.Errorf("debug sink = %q", debug.String())
	}
	if !strings.Contains(warn.String(), "slot lost") || strings.Contains(warn.String(), "slot generated") {
		t.Errorf("warn sink = %q", warn.String())
	}
	if !strings.Contains(warn.String(), "service=test") {
		t.Errorf("attrs not propagated: %q", warn.String())
	}
}

func TestRequestHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&requestHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-42"})
	logger.InfoContext(ctx, "booking persisted")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["request_id"] != "req-42" {
		t.Fatalf("record = %v", rec)
	}
}

func TestPushURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://loki:3100", "http://loki:3100/loki/api/v1/push"},
		{"http://loki:3100/", "http://loki:3100/loki/api/v1/push"},
		{"http://loki:3100/loki/api/v1/push", "http://loki:3100/loki/api/v1/push"},
	}
	for _, tt := range tests {
		if got := pushURL(tt.in); got != tt.want {
			t.Errorf("pushURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salonora.log")
	cfg := &config.Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"
	cfg.Logging.Output.File = config.FileLogConfig{Enabled: true, Path: path, MaxSizeMB: 1}
	cfg.Observability.ServiceName = "salonora"

	logger, flush := New(cfg)
	logger.Debug("sweep finished", "discarded", 2)
	flush()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	if rec["msg"] != "sweep finished" || rec["service"] != "salonora" {
		t.Errorf("record = %v", rec)
	}
}
