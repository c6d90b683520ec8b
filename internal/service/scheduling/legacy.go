package scheduling

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alijeyrad/salonora_backend/internal/model"
)

// TimeRange is the wire shape of a time span. Older clients send open/close
// instead of start/end; Resolve is the only place that knows about both.
type TimeRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Open  string `json:"open,omitempty"`
	Close string `json:"close,omitempty"`
}

// Resolve returns the canonical [start, end) pair. A legacy "23:59" end is
// read as end of day.
func (r TimeRange) Resolve() (model.Interval, error) {
	start := firstNonEmpty(r.Start, r.Open)
	end := firstNonEmpty(r.End, r.Close)
	if start == "" || end == "" {
		return model.Interval{}, errors.New("start and end are required")
	}

	s, err := model.ParseTimeOfDay(start)
	if err != nil {
		return model.Interval{}, err
	}
	e, err := model.ParseTimeOfDay(end)
	if err != nil {
		return model.Interval{}, err
	}
	return model.Interval{Start: s, End: model.NormalizeEnd(e)}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ExceptionPayload is an exception as received from clients.
type ExceptionPayload struct {
	TimeRange
	Date        string `json:"date"`
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason,omitempty"`
}

func (p ExceptionPayload) ToInput() (ExceptionInput, error) {
	date, err := model.ParseDate(p.Date)
	if err != nil {
		return ExceptionInput{}, err
	}
	iv, err := p.Resolve()
	if err != nil {
		return ExceptionInput{}, err
	}
	return ExceptionInput{Date: date, Start: iv.Start, End: iv.End, IsAvailable: p.IsAvailable, Reason: p.Reason}, nil
}

// DayHoursPayload is one weekday's hours as received from clients.
type DayHoursPayload struct {
	TimeRange
	Day    int  `json:"day"`
	Active bool `json:"active"`
}

func ToWeeklyHours(days []DayHoursPayload) (model.WeeklyHours, error) {
	hours := make(model.WeeklyHours, len(days))
	for _, d := range days {
		if d.Day < 0 || d.Day > 6 {
			return nil, fmt.Errorf("day %d out of range 0..6", d.Day)
		}
		var h model.DayHours
		if d.Active || d.Start != "" || d.Open != "" {
			iv, err := d.Resolve()
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", d.Day, err)
			}
			h = model.DayHours{Open: iv.Start, Close: iv.End}
		}
		h.Active = d.Active
		hours[weekday(d.Day)] = h
	}
	return hours, nil
}
