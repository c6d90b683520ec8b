package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}

	b := c.Booking
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("booking.timezone: %w", err))
	}
	if b.SlotGranularityMinutes <= 0 {
		errs = append(errs, errors.New("booking.slot_granularity_minutes must be positive"))
	}
	if b.LeadTimeMinutes < 0 {
		errs = append(errs, errors.New("booking.lead_time_minutes must not be negative"))
	}
	if b.MaxAdvanceDays < 0 {
		errs = append(errs, errors.New("booking.max_advance_days must not be negative"))
	}
	if b.PendingTTLMinutes < 0 {
		errs = append(errs, errors.New("booking.pending_ttl_minutes must not be negative"))
	}
	if rate, err := decimal.NewFromString(b.DepositRate); err != nil {
		errs = append(errs, fmt.Errorf("booking.deposit_rate: %w", err))
	} else if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("booking.deposit_rate %s out of [0, 1]", rate))
	}

	if len(c.Commission.Tiers) == 0 {
		errs = append(errs, errors.New("commission.tiers must not be empty"))
	}
	if _, ok := c.Commission.Tiers[c.Commission.DefaultTier]; !ok {
		errs = append(errs, fmt.Errorf("commission.default_tier %q has no rate", c.Commission.DefaultTier))
	}
	for tier, raw := range c.Commission.Tiers {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("commission.tiers.%s: %w", tier, err))
			continue
		}
		if !rate.IsPositive() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			errs = append(errs, fmt.Errorf("commission.tiers.%s: rate %s out of (0, 1)", tier, rate))
		}
	}

	if c.Promotion.DefaultMaxUsesPerUser < 1 {
		errs = append(errs, errors.New("promotion.default_max_uses_per_user must be at least 1"))
	}
	if c.Sweeper.Enabled && c.Sweeper.Schedule == "" {
		errs = append(errs, errors.New("sweeper.schedule is required when the sweeper is enabled"))
	}

	return errors.Join(errs...)
}

// Location returns the booking time zone. Validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
