package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/internal/service/booking"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/pkg/constants"
	"github.com/Alijeyrad/salonora_backend/pkg/events"
)

// WorkerModule registers the maintenance sweeper and the NATS consumers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

// ---------------------------------------------------------------------------
// sweeper
// ---------------------------------------------------------------------------

type Sweeper struct {
	bookings   booking.Service
	promotions promotion.Service
}

func NewSweeper(bookings booking.Service, promotions promotion.Service) *Sweeper {
	return &Sweeper{bookings: bookings, promotions: promotions}
}

// RunOnce expires ended promotions and discards stale pending bookings.
// Both jobs run even if the first fails.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	expired, perr := s.promotions.ExpireEnded(ctx)
	if perr != nil {
		perr = fmt.Errorf("expire promotions: %w", perr)
	}
	discarded, berr := s.bookings.DiscardStalePending(ctx)
	if berr != nil {
		berr = fmt.Errorf("discard stale bookings: %w", berr)
	}

	slog.InfoContext(ctx, "sweeper: run finished",
		"promotions_expired", expired, "bookings_discarded", discarded)
	return errors.Join(perr, berr)
}

// ---------------------------------------------------------------------------
// registration
// ---------------------------------------------------------------------------

type WorkerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	NC       *nats.Conn `optional:"true"`
	Bookings booking.Service
	Sweeper  *Sweeper
}

func RegisterWorkers(p WorkerParams) error {
	var scheduler *cron.Cron
	if p.Cfg.Sweeper.Enabled {
		scheduler = cron.New(
			cron.WithLocation(p.Cfg.Location()),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		)
		_, err := scheduler.AddFunc(p.Cfg.Sweeper.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := p.Sweeper.RunOnce(ctx); err != nil {
				slog.Error("sweeper: run failed", "err", err)
			}
		})
		if err != nil {
			return fmt.Errorf("sweeper schedule %q: %w", p.Cfg.Sweeper.Schedule, err)
		}
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if scheduler != nil {
				scheduler.Start()
				slog.Info("sweeper: started", "schedule", p.Cfg.Sweeper.Schedule)
			}
			if p.NC != nil {
				var err error
				if sub, err = startPaymentWorker(p.NC, p.Bookings); err != nil {
					return err
				}
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sub != nil {
				_ = sub.Unsubscribe()
			}
			if scheduler != nil {
				select {
				case <-scheduler.Stop().Done():
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		},
	})
	return nil
}

// ---------------------------------------------------------------------------
// payment_worker
// ---------------------------------------------------------------------------

// startPaymentWorker marks bookings paid when the payment-capture side
// reports them on <prefix>.payment.captured.<provider id>.
func startPaymentWorker(nc *nats.Conn, bookings booking.Service) (*nats.Subscription, error) {
	subject := constants.EventSubjectPrefix + "." + events.PaymentCaptured + ".*"
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := handlePaymentCaptured(ctx, bookings, msg.Data); err != nil {
			slog.Warn("payment_worker: mark paid failed", "subject", msg.Subject, "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("payment_worker: subscribe %s: %w", subject, err)
	}
	slog.Info("payment_worker: started", "subject", subject)
	return sub, nil
}

func handlePaymentCaptured(ctx context.Context, bookings booking.Service, data []byte) error {
	id, err := uuid.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("bad booking id %q: %w", data, err)
	}
	b, err := bookings.MarkPaid(ctx, id)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "payment_worker: booking paid", "booking_id", b.ID, "amount_now", b.AmountNow)
	return nil
}
