// Package availability turns a provider's weekly hours, date exceptions and
// existing bookings into the bookable slots for one date. It only reads.
package availability

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	GenerateSlots(ctx context.Context, req Request) ([]model.Slot, error)
}

type Request struct {
	ProviderID      uuid.UUID
	Date            model.Date
	DurationMinutes int
	// GranularityMinutes defaults to the configured step when zero.
	GranularityMinutes int
}

type Config struct {
	GranularityMinutes int
	LeadTimeMinutes    int
	// MaxAdvanceDays bounds how far ahead slots are offered; zero disables it.
	MaxAdvanceDays int
	Location       *time.Location
	Now            func() time.Time
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type engine struct {
	schedule repo.ScheduleSource
	bookings repo.BookingSource
	cfg      Config
	latency  metric.Float64Histogram
}

func New(schedule repo.ScheduleSource, bookings repo.BookingSource, cfg Config) Service {
	if cfg.GranularityMinutes <= 0 {
		cfg.GranularityMinutes = 30
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	latency, _ := otel.Meter("salonora/availability").Float64Histogram(
		"availability_generate_slots_seconds",
		metric.WithDescription("Time spent generating slots for one provider and date"),
		metric.WithUnit("s"),
	)
	return &engine{schedule: schedule, bookings: bookings, cfg: cfg, latency: latency}
}

func (e *engine) GenerateSlots(ctx context.Context, req Request) ([]model.Slot, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	step := req.GranularityMinutes
	if step == 0 {
		step = e.cfg.GranularityMinutes
	}
	if step < 0 {
		return nil, ErrInvalidGranularity
	}
	if req.Date.IsZero() {
		return nil, ErrInvalidDate
	}

	started := time.Now()
	defer func() {
		if e.latency != nil {
			e.latency.Record(ctx, time.Since(started).Seconds(),
				metric.WithAttributes(attribute.Int("duration_minutes", req.DurationMinutes)))
		}
	}()

	now := e.cfg.Now().In(e.cfg.Location)
	today := model.DateOf(now)
	if req.Date.Before(today) {
		return []model.Slot{}, nil
	}
	if e.cfg.MaxAdvanceDays > 0 && req.Date.After(today.AddDays(e.cfg.MaxAdvanceDays)) {
		return []model.Slot{}, nil
	}

	hours, err := e.schedule.GetWeeklyHours(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("get weekly hours: %w", err)
	}
	day, ok := hours[req.Date.Weekday()]
	if !ok || !day.Bookable() {
		return []model.Slot{}, nil
	}

	var (
		exceptions []model.ScheduleException
		booked     []model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exceptions, err = e.schedule.GetExceptions(gctx, req.ProviderID, req.Date)
		if err != nil {
			return fmt.Errorf("get exceptions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		booked, err = e.bookings.GetActiveBookings(gctx, req.ProviderID, req.Date)
		if err != nil {
			return fmt.Errorf("get active bookings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var cutoff model.TimeOfDay = -1
	if req.Date == today {
		cutoff = model.TimeOfDay(now.Hour()*60+now.Minute()).Add(e.cfg.LeadTimeMinutes)
		// a partially elapsed minute counts as elapsed
		if now.Second() > 0 || now.Nanosecond() > 0 {
			cutoff++
		}
	}

	return buildSlots(day.Interval(), exceptions, booked, req.DurationMinutes, step, cutoff), nil
}

// buildSlots enumerates candidates and drops those that collide with a block,
// an active booking, or the same-day cutoff. A negative cutoff disables it.
func buildSlots(
	recurring model.Interval,
	exceptions []model.ScheduleException,
	booked []model.Booking,
	duration, step int,
	cutoff model.TimeOfDay,
) []model.Slot {
	var blocks, openings []model.Interval
	for _, ex := range exceptions {
		if ex.End <= ex.Start {
			continue
		}
		if ex.IsAvailable {
			openings = append(openings, ex.Interval())
		} else {
			blocks = append(blocks, ex.Interval())
		}
	}

	// Openings widen the recurring window; they never shrink it.
	windows := mergeIntervals(append(openings, recurring))

	// A day whose every window sits under a single block is closed outright.
	if allCovered(windows, blocks) {
		return []model.Slot{}
	}

	busy := make([]model.Interval, 0, len(booked))
	for _, b := range booked {
		if b.Status.Active() {
			busy = append(busy, b.Interval())
		}
	}

	slots := []model.Slot{}
	for _, w := range windows {
		for start := w.Start; start.Add(duration) <= w.End; start = start.Add(step) {
			cand := model.Interval{Start: start, End: start.Add(duration)}
			if cutoff >= 0 && start < cutoff {
				continue
			}
			if overlapsAny(cand, blocks) || overlapsAny(cand, busy) {
				continue
			}
			slots = append(slots, cand)
		}
	}
	return slots
}

func allCovered(windows, blocks []model.Interval) bool {
	for _, w := range windows {
		if !slices.ContainsFunc(blocks, func(b model.Interval) bool { return b.Covers(w) }) {
			return false
		}
	}
	return true
}

func overlapsAny(cand model.Interval, set []model.Interval) bool {
	return slices.ContainsFunc(set, cand.Overlaps)
}

// mergeIntervals sorts and unions overlapping or touching intervals.
func mergeIntervals(in []model.Interval) []model.Interval {
	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b model.Interval) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	out := []model.Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			last.End = max(last.End, iv.End)
			continue
		}
		out = append(out, iv)
	}
	return out
}
