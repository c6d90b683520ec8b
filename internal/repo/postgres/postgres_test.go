package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
)

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"overlap exclusion", &pq.Error{Code: "23P01"}, repo.ErrConflict},
		{"duplicate code", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), repo.ErrConflict},
		{"no rows", fmt.Errorf("get: %w", sql.ErrNoRows), repo.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErr(tt.in); !errors.Is(got, tt.want) {
				t.Fatalf("mapErr(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	other := &pq.Error{Code: "23503"}
	if got := mapErr(other); errors.Is(got, repo.ErrConflict) {
		t.Fatalf("foreign key violation mapped to conflict")
	}
	if mapErr(nil) != nil {
		t.Fatalf("mapErr(nil) != nil")
	}
}

func TestListBookingsQuery(t *testing.T) {
	provider := uuid.New()
	from := model.Date{Year: 2026, Month: time.November, Day: 1}
	status := model.BookingPending

	query, args := listBookingsQuery(repo.BookingFilter{
		ProviderID: &provider,
		From:       &from,
		Status:     &status,
		Limit:      20,
		Offset:     40,
	})

	for _, frag := range []string{`FROM "bookings"`, `"provider_id" = $1`, `"booking_date" >= $2`, `"status" = $3`, "ORDER BY", "LIMIT", "OFFSET"} {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q:\n%s", frag, query)
		}
	}
	if strings.Contains(query, "client_id\" =") {
		t.Errorf("unset client filter rendered:\n%s", query)
	}
	if len(args) != 3 || args[1] != "2026-11-01" {
		t.Errorf("args = %v", args)
	}
}

func TestPromotionRowRoundTrip(t *testing.T) {
	maxUses := 10
	svc := uuid.New()
	p := &model.Promotion{
		ID:                   uuid.New(),
		Code:                 "AUTUMN",
		Type:                 model.PromotionPercentage,
		Value:                15,
		MaxUses:              &maxUses,
		ValidDaysOfWeek:      []time.Weekday{time.Friday, time.Saturday},
		ApplicableServiceIDs: []uuid.UUID{svc},
		Status:               model.PromotionActive,
	}

	row := toPromotionRow(p)
	if len(row.ValidDaysOfWeek) != 2 || row.ValidDaysOfWeek[0] != 5 {
		t.Fatalf("days = %v", row.ValidDaysOfWeek)
	}

	back, err := row.toModel()
	if err != nil {
		t.Fatal(err)
	}
	if back.ApplicableServiceIDs[0] != svc || back.ValidDaysOfWeek[1] != time.Saturday || *back.MaxUses != 10 {
		t.Fatalf("promotion = %+v", back)
	}

	row.ApplicableServiceIDs = pq.StringArray{"not-a-uuid"}
	if _, err := row.toModel(); err == nil {
		t.Fatal("expected error for malformed service id")
	}
}
