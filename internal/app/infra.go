package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/internal/repo/memstore"
	"github.com/Alijeyrad/salonora_backend/internal/repo/postgres"
	"github.com/Alijeyrad/salonora_backend/internal/repo/rediscache"
	"github.com/Alijeyrad/salonora_backend/pkg/constants"
	"github.com/Alijeyrad/salonora_backend/pkg/database"
	"github.com/Alijeyrad/salonora_backend/pkg/events"
	"github.com/Alijeyrad/salonora_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/salonora_backend/pkg/redis"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideNatsClient),
	fx.Provide(ProvideEventPublisher),
	fx.Provide(ProvideOTel),
)

// ProvideRedis returns a nil client when Redis is disabled.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, rdb *redis.Client) (repo.Store, error) {
	var store repo.Store
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		slog.Warn("using in-memory storage; data is lost on restart")
		store = memstore.New()
	case config.StorageDriverPostgres:
		dbCfg := database.FromCentralConfig(cfg.Database)
		db, err := database.Open(dbCfg)
		if err != nil {
			return nil, err
		}
		if dbCfg.AutoMigrate {
			if err := database.Migrate(context.Background(), db); err != nil {
				db.Close()
				return nil, err
			}
		}
		store = postgres.New(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Cache.Enabled && rdb != nil {
		store = rediscache.New(store, rdb, redispkg.TTL(cfg.Cache.TTLSeconds))
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.Ping(ctx)
		},
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing store")
			return store.Close()
		},
	})
	return store, nil
}

// ProvideNatsClient returns a nil connection when no NATS URL is configured.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Nats.Name))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideEventPublisher(nc *nats.Conn) events.Publisher {
	if nc == nil {
		slog.Info("NATS not configured; booking events are dropped")
		return events.Nop{}
	}
	return events.NewNATSPublisher(nc, constants.EventSubjectPrefix)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
