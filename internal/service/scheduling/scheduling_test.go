package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo/memstore"
)

func TestExceptionPayloadAcceptsBothSpellings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.Interval
	}{
		{
			name: "start/end",
			body: `{"date":"2026-11-06","start":"12:00","end":"13:00"}`,
			want: model.Interval{Start: model.NewTimeOfDay(12, 0), End: model.NewTimeOfDay(13, 0)},
		},
		{
			name: "open/close",
			body: `{"date":"2026-11-06","open":"12:00","close":"13:00"}`,
			want: model.Interval{Start: model.NewTimeOfDay(12, 0), End: model.NewTimeOfDay(13, 0)},
		},
		{
			name: "legacy end of day",
			body: `{"date":"2026-11-06","open":"00:00","close":"23:59"}`,
			want: model.Interval{Start: model.Midnight, End: model.EndOfDay},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ExceptionPayload
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatal(err)
			}
			in, err := p.ToInput()
			if err != nil {
				t.Fatalf("ToInput() error: %v", err)
			}
			if got := (model.Interval{Start: in.Start, End: in.End}); got != tt.want {
				t.Errorf("interval = %v, want %v", got, tt.want)
			}
		})
	}

	var missing ExceptionPayload
	_ = json.Unmarshal([]byte(`{"date":"2026-11-06","start":"12:00"}`), &missing)
	if _, err := missing.ToInput(); err == nil {
		t.Error("payload without an end must be rejected")
	}
}

func TestToWeeklyHours(t *testing.T) {
	var days []DayHoursPayload
	body := `[{"day":1,"open":"09:00","close":"18:00","active":true},{"day":0,"active":false}]`
	if err := json.Unmarshal([]byte(body), &days); err != nil {
		t.Fatal(err)
	}

	hours, err := ToWeeklyHours(days)
	if err != nil {
		t.Fatalf("ToWeeklyHours() error: %v", err)
	}
	if h := hours[time.Monday]; !h.Active || h.Open != model.NewTimeOfDay(9, 0) || h.Close != model.NewTimeOfDay(18, 0) {
		t.Errorf("monday = %+v", h)
	}
	if h := hours[time.Sunday]; h.Active {
		t.Errorf("sunday = %+v, want inactive", h)
	}

	if _, err := ToWeeklyHours([]DayHoursPayload{{Day: 7}}); err == nil {
		t.Error("day 7 must be rejected")
	}
}

func TestAddAndDeleteException(t *testing.T) {
	svc := New(memstore.New())
	ctx := context.Background()
	provider := uuid.New()
	date := model.Date{Year: 2026, Month: 12, Day: 24}

	e, err := svc.AddException(ctx, provider, ExceptionInput{
		Date: date, Start: model.Midnight, End: model.NewTimeOfDay(23, 59), Reason: " holiday ",
	})
	if err != nil {
		t.Fatalf("AddException() error: %v", err)
	}
	if e.End != model.EndOfDay || e.Reason != "holiday" {
		t.Errorf("AddException() = %+v, want normalized end and trimmed reason", e)
	}

	list, err := svc.ListExceptions(ctx, provider, date, date.AddDays(7))
	if err != nil || len(list) != 1 {
		t.Fatalf("ListExceptions() = %v, %v", list, err)
	}

	if err := svc.DeleteException(ctx, uuid.New(), e.ID); !errors.Is(err, ErrExceptionNotFound) {
		t.Errorf("delete by another provider: error = %v, want ErrExceptionNotFound", err)
	}
	if err := svc.DeleteException(ctx, provider, e.ID); err != nil {
		t.Errorf("DeleteException() error: %v", err)
	}

	if _, err := svc.AddException(ctx, provider, ExceptionInput{Date: date, Start: model.NewTimeOfDay(13, 0), End: model.NewTimeOfDay(12, 0)}); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("inverted exception: error = %v, want ErrInvalidTimeRange", err)
	}
	if _, err := svc.ListExceptions(ctx, provider, date, date.AddDays(-1)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("inverted range: error = %v, want ErrInvalidRange", err)
	}
}

func TestSetWeeklyHoursRejectsInvertedDay(t *testing.T) {
	svc := New(memstore.New())
	err := svc.SetWeeklyHours(context.Background(), uuid.New(), model.WeeklyHours{
		time.Tuesday: {Open: model.NewTimeOfDay(18, 0), Close: model.NewTimeOfDay(9, 0), Active: true},
	})
	if !errors.Is(err, ErrInvalidHours) {
		t.Errorf("SetWeeklyHours() error = %v, want ErrInvalidHours", err)
	}
}
