package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/shopspring/decimal"

	"github.com/Alijeyrad/salonora_backend/config"
	"github.com/Alijeyrad/salonora_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo/memstore"
	"github.com/Alijeyrad/salonora_backend/internal/service/account"
	"github.com/Alijeyrad/salonora_backend/internal/service/availability"
	"github.com/Alijeyrad/salonora_backend/internal/service/booking"
	"github.com/Alijeyrad/salonora_backend/internal/service/catalog"
	"github.com/Alijeyrad/salonora_backend/internal/service/payment"
	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
	"github.com/Alijeyrad/salonora_backend/internal/service/scheduling"
	"github.com/Alijeyrad/salonora_backend/pkg/events"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store := memstore.New()
	accounts, err := account.New(store, map[string]string{"basic": "0.20"}, "basic")
	if err != nil {
		t.Fatal(err)
	}
	payments, err := payment.NewCalculator(decimal.RequireFromString("0.20"))
	if err != nil {
		t.Fatal(err)
	}
	catalogs := catalog.New(store)
	promos := promotion.New(store, store, store, promotion.Config{DefaultMaxUsesPerUser: 1})
	bookings := booking.New(booking.Deps{
		Ledger:  store,
		Tx:      store,
		Catalog: catalogs,
		Availability: availability.New(store, store, availability.Config{
			GranularityMinutes: 30,
			LeadTimeMinutes:    30,
			MaxAdvanceDays:     90,
			Location:           time.UTC,
		}),
		Promotions: promos,
		Commission: accounts,
		Payments:   payments,
		Events:     &events.Recorder{},
	}, booking.Config{Location: time.UTC, PendingTTL: time.Hour})

	r := NewRouter(Params{
		Cfg:           &config.Config{},
		Store:         store,
		AccountSvc:    accounts,
		CatalogSvc:    catalogs,
		SchedulingSvc: scheduling.New(store),
		PromotionSvc:  promos,
		BookingSvc:    bookings,
	})

	app := fiber.New()
	app.Use(middleware.RequestID())
	r.Register(app)
	return app
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Code   string          `json:"code"`
	Reason string          `json:"reason"`
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return out
}

// seedProvider registers a provider open 09:00-18:00 every day with one
// 60-minute service priced 8000.
func seedProvider(t *testing.T, app *fiber.App) (providerID, serviceID string) {
	t.Helper()

	status, env := call(t, app, http.MethodPost, "/api/v1/providers", map[string]any{"name": "Studio Nine"})
	if status != http.StatusCreated {
		t.Fatalf("register provider: status %d (%s)", status, env.Error)
	}
	providerID = decode[model.Provider](t, env).ID.String()

	days := make([]map[string]any, 0, 7)
	for d := 0; d < 7; d++ {
		days = append(days, map[string]any{"day": d, "start": "09:00", "end": "18:00", "active": true})
	}
	if status, env := call(t, app, http.MethodPut, "/api/v1/providers/"+providerID+"/hours", map[string]any{"days": days}); status != http.StatusNoContent {
		t.Fatalf("set hours: status %d (%s)", status, env.Error)
	}

	status, env = call(t, app, http.MethodPost, "/api/v1/providers/"+providerID+"/services", map[string]any{
		"name": "Cut", "duration_minutes": 60, "price": 8000,
	})
	if status != http.StatusCreated {
		t.Fatalf("create service: status %d (%s)", status, env.Error)
	}
	serviceID = decode[model.ServiceOffering](t, env).ID.String()
	return providerID, serviceID
}

func nextWeek() string {
	return model.DateOf(time.Now().UTC().AddDate(0, 0, 7)).String()
}

func TestSystemRoutes(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{healthcheck.LivenessEndpoint, healthcheck.ReadinessEndpoint, healthcheck.StartupEndpoint} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestRequestIDEchoed(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, healthcheck.LivenessEndpoint, nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(middleware.HeaderRequestID); got != "req-123" {
		t.Errorf("request id header = %q, want req-123", got)
	}
}

func TestBookingFlow(t *testing.T) {
	app := newTestApp(t)
	providerID, serviceID := seedProvider(t, app)
	date := nextWeek()
	slotsPath := "/api/v1/providers/" + providerID + "/slots?date=" + date + "&service_id=" + serviceID

	status, env := call(t, app, http.MethodGet, slotsPath, nil)
	if status != http.StatusOK {
		t.Fatalf("slots: status %d (%s)", status, env.Error)
	}
	before := decode[struct {
		Slots []model.Slot `json:"slots"`
	}](t, env)
	if len(before.Slots) != 17 {
		t.Fatalf("slots = %d, want 17", len(before.Slots))
	}

	submit := map[string]any{
		"provider_id":  providerID,
		"service_id":   serviceID,
		"client_id":    "6f1c2d4e-8a3b-4c5d-9e7f-0a1b2c3d4e5f",
		"date":         date,
		"start":        "10:00",
		"payment_mode": "deposit",
	}
	status, env = call(t, app, http.MethodPost, "/api/v1/bookings", submit)
	if status != http.StatusCreated {
		t.Fatalf("submit: status %d (%s)", status, env.Error)
	}
	receipt := decode[booking.Receipt](t, env)
	if receipt.Status != model.BookingPending {
		t.Errorf("status = %s, want pending", receipt.Status)
	}
	if receipt.PaymentSplit.AmountNow != 1600 || receipt.PaymentSplit.AmountLater != 6400 {
		t.Errorf("split = %+v, want 1600/6400", receipt.PaymentSplit)
	}

	status, env = call(t, app, http.MethodPost, "/api/v1/bookings", submit)
	if status != http.StatusConflict || env.Code != "slot_no_longer_available" {
		t.Errorf("resubmit = %d %q, want 409 slot_no_longer_available", status, env.Code)
	}

	_, env = call(t, app, http.MethodGet, slotsPath, nil)
	after := decode[struct {
		Slots []model.Slot `json:"slots"`
	}](t, env)
	if len(after.Slots) != len(before.Slots)-3 {
		t.Errorf("slots after booking = %d, want %d", len(after.Slots), len(before.Slots)-3)
	}

	id := receipt.BookingID.String()
	if status, env := call(t, app, http.MethodPatch, "/api/v1/bookings/"+id+"/confirm", nil); status != http.StatusOK {
		t.Fatalf("confirm: status %d (%s)", status, env.Error)
	}

	status, env = call(t, app, http.MethodDelete, "/api/v1/bookings/"+id, nil)
	if status != http.StatusConflict || env.Code != "invalid_transition" {
		t.Errorf("discard confirmed = %d %q, want 409 invalid_transition", status, env.Code)
	}

	status, env = call(t, app, http.MethodPatch, "/api/v1/bookings/"+id+"/cancel", map[string]any{"requested_by": "client", "reason": "sick"})
	if status != http.StatusOK {
		t.Fatalf("cancel: status %d (%s)", status, env.Error)
	}
	if b := decode[model.Booking](t, env); b.Status != model.BookingCancelled {
		t.Errorf("status after cancel = %s", b.Status)
	}

	status, env = call(t, app, http.MethodGet, "/api/v1/providers/"+providerID+"/bookings?status=cancelled", nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d (%s)", status, env.Error)
	}
	if list := decode[[]model.Booking](t, env); len(list) != 1 {
		t.Errorf("cancelled bookings = %d, want 1", len(list))
	}
}

func TestSubmitWithPromotionAndQuote(t *testing.T) {
	app := newTestApp(t)
	providerID, serviceID := seedProvider(t, app)
	date := nextWeek()
	now := time.Now().UTC()

	status, env := call(t, app, http.MethodPost, "/api/v1/providers/"+providerID+"/promotions", map[string]any{
		"code":       "spring10",
		"type":       "percentage",
		"value":      10,
		"start_date": now.AddDate(0, 0, -1),
		"end_date":   now.AddDate(0, 1, 0),
	})
	if status != http.StatusCreated {
		t.Fatalf("create promotion: status %d (%s)", status, env.Error)
	}

	quoteBody := map[string]any{
		"provider_id": providerID,
		"service_id":  serviceID,
		"client_id":   "0b9f7c1a-3d2e-4f5a-8b6c-7d8e9f0a1b2c",
		"code":        "SPRING10",
		"date":        date,
	}
	status, env = call(t, app, http.MethodPost, "/api/v1/promotions/quote", quoteBody)
	if status != http.StatusOK {
		t.Fatalf("quote: status %d (%s)", status, env.Error)
	}
	if q := decode[promotion.Quote](t, env); !q.Valid || q.Discount != 800 || q.FinalAmount != 7200 {
		t.Errorf("quote = %+v, want valid 800/7200", q)
	}

	status, env = call(t, app, http.MethodPost, "/api/v1/bookings", map[string]any{
		"provider_id":    providerID,
		"service_id":     serviceID,
		"client_id":      quoteBody["client_id"],
		"date":           date,
		"start":          "11:00",
		"payment_mode":   "full",
		"promotion_code": " spring10 ",
	})
	if status != http.StatusCreated {
		t.Fatalf("submit: status %d (%s)", status, env.Error)
	}
	r := decode[booking.Receipt](t, env)
	if r.TotalPrice != 7200 || r.PaymentSplit.AmountNow != 7200 || r.PaymentSplit.AmountLater != 0 {
		t.Errorf("receipt = total %d split %+v, want 7200 all now", r.TotalPrice, r.PaymentSplit)
	}

	// The per-user default is one use.
	status, env = call(t, app, http.MethodPost, "/api/v1/promotions/quote", quoteBody)
	if status != http.StatusOK {
		t.Fatalf("second quote: status %d (%s)", status, env.Error)
	}
	if q := decode[promotion.Quote](t, env); q.Valid || q.Reason != promotion.ReasonMaxUsesPerUserReached {
		t.Errorf("second quote = %+v, want max_uses_per_user_reached", q)
	}
}

func TestErrorResponses(t *testing.T) {
	app := newTestApp(t)
	providerID, serviceID := seedProvider(t, app)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{
			name:     "submit missing fields",
			method:   http.MethodPost,
			path:     "/api/v1/bookings",
			body:     map[string]any{"provider_id": providerID},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
		},
		{
			name:   "submit bad payment mode",
			method: http.MethodPost,
			path:   "/api/v1/bookings",
			body: map[string]any{
				"provider_id": providerID, "service_id": serviceID,
				"client_id": providerID, "date": nextWeek(), "start": "10:00", "payment_mode": "later",
			},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
		},
		{
			name:     "unknown booking",
			method:   http.MethodGet,
			path:     "/api/v1/bookings/3b241101-e2bb-4255-8caf-4136c566a962",
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name:     "malformed booking id",
			method:   http.MethodGet,
			path:     "/api/v1/bookings/not-a-uuid",
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
		},
		{
			name:     "slots without date",
			method:   http.MethodGet,
			path:     "/api/v1/providers/" + providerID + "/slots?service_id=" + serviceID,
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
		},
		{
			name:   "quote unknown code",
			method: http.MethodPost,
			path:   "/api/v1/promotions/quote",
			body: map[string]any{
				"provider_id": providerID, "service_id": serviceID,
				"client_id": providerID, "code": "NOPE", "date": nextWeek(),
			},
			wantCode: http.StatusNotFound,
			wantErr:  "not_found",
		},
		{
			name:     "exception end before start",
			method:   http.MethodPost,
			path:     "/api/v1/providers/" + providerID + "/exceptions",
			body:     map[string]any{"date": nextWeek(), "start": "15:00", "end": "14:00"},
			wantCode: http.StatusBadRequest,
			wantErr:  "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := call(t, app, tt.method, tt.path, tt.body)
			if status != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", status, tt.wantCode, env.Error)
			}
			if env.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", env.Code, tt.wantErr)
			}
		})
	}
}

func TestScheduleExceptionsRoundTrip(t *testing.T) {
	app := newTestApp(t)
	providerID, serviceID := seedProvider(t, app)
	date := nextWeek()
	base := "/api/v1/providers/" + providerID + "/exceptions"

	// Older clients send open/close; 23:59 means end of day.
	status, env := call(t, app, http.MethodPost, base, map[string]any{
		"date": date, "open": "18:00", "close": "23:59", "is_available": true, "reason": "late opening",
	})
	if status != http.StatusCreated {
		t.Fatalf("add exception: status %d (%s)", status, env.Error)
	}
	e := decode[model.ScheduleException](t, env)
	if e.End != model.EndOfDay {
		t.Errorf("end = %s, want 24:00", e.End)
	}

	// The late opening extends 09:00-18:00 to 09:00-24:00.
	status, env = call(t, app, http.MethodGet, "/api/v1/providers/"+providerID+"/slots?date="+date+"&service_id="+serviceID, nil)
	if status != http.StatusOK {
		t.Fatalf("slots: status %d (%s)", status, env.Error)
	}
	widened := decode[struct {
		Slots []model.Slot `json:"slots"`
	}](t, env)
	if len(widened.Slots) != 29 || widened.Slots[0].Start != model.NewTimeOfDay(9, 0) {
		t.Errorf("slots = %v, want 29 starting 09:00", widened.Slots)
	}

	status, env = call(t, app, http.MethodGet, base+"?from="+date+"&to="+date, nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d (%s)", status, env.Error)
	}
	if list := decode[[]model.ScheduleException](t, env); len(list) != 1 {
		t.Fatalf("exceptions = %d, want 1", len(list))
	}

	if status, env := call(t, app, http.MethodDelete, base+"/"+e.ID.String(), nil); status != http.StatusNoContent {
		t.Fatalf("delete: status %d (%s)", status, env.Error)
	}
	if status, env := call(t, app, http.MethodDelete, base+"/"+e.ID.String(), nil); status != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404 (%s)", status, env.Error)
	}
}
