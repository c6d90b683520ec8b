package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", NewTimeOfDay(9, 0), false},
		{"17:30", NewTimeOfDay(17, 30), false},
		{"00:00", Midnight, false},
		{"24:00", EndOfDay, false},
		{"23:59:59", NewTimeOfDay(23, 59), false},
		{"24:01", 0, true},
		{"9", 0, true},
		{"12:60", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeEnd(t *testing.T) {
	if got := NormalizeEnd(NewTimeOfDay(23, 59)); got != EndOfDay {
		t.Errorf("NormalizeEnd(23:59) = %v, want 24:00", got)
	}
	if got := NormalizeEnd(NewTimeOfDay(18, 0)); got != NewTimeOfDay(18, 0) {
		t.Errorf("NormalizeEnd(18:00) = %v, want unchanged", got)
	}
}

func TestIntervalOverlap(t *testing.T) {
	booked := Interval{Start: NewTimeOfDay(10, 0), End: NewTimeOfDay(11, 0)}

	tests := []struct {
		name string
		in   Interval
		want bool
	}{
		{"ends at start", Interval{NewTimeOfDay(9, 0), NewTimeOfDay(10, 0)}, false},
		{"starts at end", Interval{NewTimeOfDay(11, 0), NewTimeOfDay(12, 0)}, false},
		{"straddles start", Interval{NewTimeOfDay(9, 30), NewTimeOfDay(10, 30)}, true},
		{"inside", Interval{NewTimeOfDay(10, 15), NewTimeOfDay(10, 45)}, true},
		{"contains", Interval{NewTimeOfDay(9, 0), NewTimeOfDay(12, 0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := booked.Overlaps(tt.in); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got := tt.in.Overlaps(booked); got != tt.want {
				t.Errorf("overlap must be symmetric for %v", tt.in)
			}
		})
	}
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if d.Weekday() != time.Sunday {
		t.Errorf("Weekday() = %v, want Sunday", d.Weekday())
	}
	if got := d.AddDays(-1).String(); got != "2026-02-28" {
		t.Errorf("AddDays(-1) = %s", got)
	}
	if !d.AddDays(-1).Before(d) || !d.After(d.AddDays(-1)) {
		t.Error("Before/After disagree with AddDays")
	}

	loc := time.FixedZone("UTC+3", 3*3600)
	at := d.At(NewTimeOfDay(9, 30), loc)
	if at.Hour() != 9 || at.Minute() != 30 || at.Location() != loc {
		t.Errorf("At() = %v", at)
	}

	var round Date
	b, _ := json.Marshal(d)
	if err := json.Unmarshal(b, &round); err != nil || round != d {
		t.Errorf("json round trip = %v, %v", round, err)
	}

	if _, err := ParseDate("01/03/2026"); err == nil {
		t.Error("expected malformed date to fail")
	}
}

func TestWeeklyHoursValidate(t *testing.T) {
	ok := WeeklyHours{time.Monday: {Open: NewTimeOfDay(9, 0), Close: NewTimeOfDay(18, 0), Active: true}}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid hours rejected: %v", err)
	}

	inverted := WeeklyHours{time.Monday: {Open: NewTimeOfDay(18, 0), Close: NewTimeOfDay(9, 0), Active: true}}
	if err := inverted.Validate(); err == nil {
		t.Error("open after close must be rejected")
	}

	// inactive days may carry any hours
	inactive := WeeklyHours{time.Sunday: {Open: NewTimeOfDay(18, 0), Close: NewTimeOfDay(9, 0)}}
	if err := inactive.Validate(); err != nil {
		t.Errorf("inactive day rejected: %v", err)
	}
}

func TestBookingStatusActive(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed} {
		if !s.Active() {
			t.Errorf("%s should occupy its slot", s)
		}
	}
	for _, s := range []BookingStatus{BookingCompleted, BookingCancelled} {
		if s.Active() {
			t.Errorf("%s should not occupy its slot", s)
		}
	}
}
