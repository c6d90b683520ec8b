package redis

import (
	"cmp"
	"time"

	"github.com/Alijeyrad/salonora_backend/config"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func seconds(n, fallback int) time.Duration {
	return time.Duration(cmp.Or(max(n, 0), fallback)) * time.Second
}

// FromCentralConfig converts central config.RedisConfig, filling unset
// values with defaults.
func FromCentralConfig(c config.RedisConfig) Config {
	return Config{
		Addr:         cmp.Or(c.Addr, "localhost:6379"),
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     cmp.Or(max(c.PoolSize, 0), 10),
		MinIdleConns: cmp.Or(max(c.MinIdleConns, 0), 2),
		DialTimeout:  seconds(c.DialTimeoutSeconds, 5),
		ReadTimeout:  seconds(c.ReadTimeoutSeconds, 3),
		WriteTimeout: seconds(c.WriteTimeoutSeconds, 3),
	}
}
