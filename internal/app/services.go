package app

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/internal/service/account"
	"github.com/Alijeyrad/salonora_backend/internal/service/availability"
	"github.com/Alijeyrad/salonora_backend/internal/service/booking"
	"github.com/Alijeyrad/salonora_backend/internal/service/catalog"
	"github.com/Alijeyrad/salonora_backend/internal/service/payment"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/internal/service/scheduling"
	"github.com/Alijeyrad/salonora_backend/pkg/events"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideCatalogService,
		ProvideAccountService,
		ProvideSchedulingService,
		ProvideAvailabilityService,
		ProvidePromotionService,
		ProvidePaymentCalculator,
		ProvideBookingService,
		NewSweeper,
	),
)

func ProvideCatalogService(store repo.Store) catalog.Service {
	return catalog.New(store)
}

func ProvideAccountService(store repo.Store, cfg *config.Config) (account.Service, error) {
	return account.New(store, cfg.Commission.Tiers, cfg.Commission.DefaultTier)
}

func ProvideSchedulingService(store repo.Store) scheduling.Service {
	return scheduling.New(store)
}

func ProvideAvailabilityService(store repo.Store, cfg *config.Config) availability.Service {
	return availability.New(store, store, availability.Config{
		GranularityMinutes: cfg.Booking.SlotGranularityMinutes,
		LeadTimeMinutes:    cfg.Booking.LeadTimeMinutes,
		MaxAdvanceDays:     cfg.Booking.MaxAdvanceDays,
		Location:           cfg.Location(),
	})
}

func ProvidePromotionService(store repo.Store, cfg *config.Config) promotion.Service {
	return promotion.New(store, store, store, promotion.Config{
		DefaultMaxUsesPerUser: cfg.Promotion.DefaultMaxUsesPerUser,
	})
}

func ProvidePaymentCalculator(cfg *config.Config) (payment.Calculator, error) {
	rate, err := decimal.NewFromString(cfg.Booking.DepositRate)
	if err != nil {
		return nil, err
	}
	return payment.NewCalculator(rate)
}

type BookingParams struct {
	fx.In

	Cfg          *config.Config
	Store        repo.Store
	Catalog      catalog.Service
	Availability availability.Service
	Promotions   promotion.Service
	Accounts     account.Service
	Payments     payment.Calculator
	Events       events.Publisher
}

func ProvideBookingService(p BookingParams) booking.Service {
	return booking.New(booking.Deps{
		Ledger:       p.Store,
		Tx:           p.Store,
		Catalog:      p.Catalog,
		Availability: p.Availability,
		Promotions:   p.Promotions,
		Commission:   p.Accounts,
		Payments:     p.Payments,
		Events:       p.Events,
	}, booking.Config{
		Location:   p.Cfg.Location(),
		PendingTTL: time.Duration(p.Cfg.Booking.PendingTTLMinutes) * time.Minute,
	})
}
