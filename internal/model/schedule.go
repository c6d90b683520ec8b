package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type DayHours struct {
	Open   TimeOfDay `json:"open"`
	Close  TimeOfDay `json:"close"`
	Active bool      `json:"active"`
}

// Interval returns the opening hours as [Open, Close).
func (h DayHours) Interval() Interval {
	return Interval{Start: h.Open, End: h.Close}
}

// Bookable reports whether the day can produce any slot at all.
func (h DayHours) Bookable() bool {
	return h.Active && h.Close > h.Open
}

// WeeklyHours holds the recurring schedule keyed by day of week (Sunday = 0).
type WeeklyHours map[time.Weekday]DayHours

func (w WeeklyHours) Validate() error {
	for day, h := range w {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("day of week %d out of range", day)
		}
		if !h.Open.Valid() || !h.Close.Valid() {
			return fmt.Errorf("%s: hours out of range", day)
		}
		if h.Active && h.Open > h.Close {
			return fmt.Errorf("%s: open %s after close %s", day, h.Open, h.Close)
		}
	}
	return nil
}

// ScheduleException overrides the weekly hours on one date. IsAvailable=false
// blocks [Start, End); IsAvailable=true opens it instead of the recurring hours.
type ScheduleException struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ProviderID  uuid.UUID `json:"provider_id" db:"provider_id"`
	Date        Date      `json:"date" db:"exception_date"`
	Start       TimeOfDay `json:"start" db:"start_minute"`
	End         TimeOfDay `json:"end" db:"end_minute"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	Reason      string    `json:"reason,omitempty" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (e ScheduleException) Interval() Interval {
	return Interval{Start: e.Start, End: e.End}
}

func (e ScheduleException) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("exception date is required")
	}
	if !e.Start.Valid() || !e.End.Valid() {
		return fmt.Errorf("exception interval out of range")
	}
	if e.End <= e.Start {
		return fmt.Errorf("exception end %s must be after start %s", e.End, e.Start)
	}
	return nil
}

// Slot is a bookable [Start, End) interval.
type Slot = Interval
