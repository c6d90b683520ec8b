package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 15)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.rate_limit.requests_per_minute", 120)

	v.SetDefault("storage.driver", StorageDriverPostgres)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.pool.max_open_conns", 25)
	v.SetDefault("database.pool.max_idle_conns", 5)
	v.SetDefault("database.pool.conn_max_lifetime_minutes", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("cache.ttl_seconds", 300)

	v.SetDefault("booking.timezone", "UTC")
	v.SetDefault("booking.slot_granularity_minutes", 30)
	v.SetDefault("booking.lead_time_minutes", 30)
	v.SetDefault("booking.deposit_rate", "0.20")
	v.SetDefault("booking.max_advance_days", 90)
	v.SetDefault("booking.pending_ttl_minutes", 60)

	v.SetDefault("commission.default_tier", "basic")
	v.SetDefault("commission.tiers", map[string]string{
		"basic":   "0.20",
		"pro":     "0.15",
		"premium": "0.10",
	})

	v.SetDefault("promotion.default_max_uses_per_user", 1)

	v.SetDefault("sweeper.schedule", "@every 5m")

	v.SetDefault("observability.service_name", "salonora")
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)
}
