package promotion

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/model"
	"github.com/Alijeyrad/salonora_backend/internal/repo"
	"github.com/Alijeyrad/salonora_backend/internal/repo/memstore"
)

var (
	fixedNow = time.Date(2026, 11, 4, 12, 0, 0, 0, time.UTC) // a Wednesday
	bookDate = model.Date{Year: 2026, Month: 11, Day: 6}     // a Friday
)

func ptr[T any](v T) *T { return &v }

type fixture struct {
	store    *memstore.Store
	svc      Service
	provider uuid.UUID
	user     uuid.UUID
	service  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{
		store:    store,
		svc:      New(store, store, store, Config{DefaultMaxUsesPerUser: 1, Now: func() time.Time { return fixedNow }}),
		provider: uuid.New(),
		user:     uuid.New(),
	}
	offering := &model.ServiceOffering{ProviderID: f.provider, Name: "Cut", DurationMinutes: 60, Price: 8000, Active: true}
	if err := store.InsertService(context.Background(), offering); err != nil {
		t.Fatal(err)
	}
	f.service = offering.ID
	return f
}

// basePromotion passes every check for f.user booking f.service on bookDate.
func (f *fixture) basePromotion() *model.Promotion {
	return &model.Promotion{
		ID:         uuid.New(),
		ProviderID: f.provider,
		Code:       "WELCOME20",
		Type:       model.PromotionPercentage,
		Value:      20,
		StartDate:  fixedNow.AddDate(0, 0, -7),
		EndDate:    fixedNow.AddDate(0, 0, 7),
		Status:     model.PromotionActive,
	}
}

func (f *fixture) candidate() Candidate {
	return Candidate{UserID: f.user, ServiceID: f.service, Amount: 8000, Date: bookDate}
}

func (f *fixture) completedBooking(t *testing.T, provider uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	b := &model.Booking{
		ProviderID: provider, ServiceID: uuid.New(), ClientID: f.user,
		Date: model.Date{Year: 2026, Month: 10, Day: 1}, Start: 600, End: 660,
		Status: model.BookingConfirmed, PaymentMode: model.PaymentFull, PaymentStatus: model.PaymentPaid,
	}
	if err := f.store.WithinTx(ctx, func(ctx context.Context, tx repo.Tx) error { return tx.InsertBooking(ctx, b) }); err != nil {
		t.Fatal(err)
	}
	if _, err := f.store.TransitionBooking(ctx, b.ID, repo.StatusChange{
		From: []model.BookingStatus{model.BookingConfirmed}, To: model.BookingCompleted, At: fixedNow,
	}); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) recordUsage(t *testing.T, promotionID uuid.UUID) {
	t.Helper()
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx repo.Tx) error {
		return tx.InsertUsage(ctx, &model.PromotionUsage{PromotionID: promotionID, UserID: f.user, BookingID: uuid.New()})
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, p *model.Promotion, c *Candidate)
		setup  func(t *testing.T, f *fixture, p *model.Promotion)
		want   Reason
	}{
		{name: "passes"},
		{
			name:   "paused",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.Status = model.PromotionPaused },
			want:   ReasonInactive,
		},
		{
			name:   "not started",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.StartDate = fixedNow.Add(time.Hour) },
			want:   ReasonOutOfWindow,
		},
		{
			name:   "ended",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.EndDate = fixedNow.Add(-time.Second) },
			want:   ReasonOutOfWindow,
		},
		{
			name:   "end date is inclusive",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.EndDate = fixedNow },
		},
		{
			name:   "below minimum",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.MinPurchaseAmount = 8001 },
			want:   ReasonBelowMinPurchase,
		},
		{
			name: "max uses reached",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) {
				p.MaxUses = ptr(1)
				p.CurrentUses = 1
			},
			want: ReasonMaxUsesReached,
		},
		{
			name:  "default per-user limit",
			setup: func(t *testing.T, f *fixture, p *model.Promotion) { f.recordUsage(t, p.ID) },
			want:  ReasonMaxUsesPerUserReached,
		},
		{
			name:   "explicit per-user limit leaves room",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.MaxUsesPerUser = ptr(2) },
			setup:  func(t *testing.T, f *fixture, p *model.Promotion) { f.recordUsage(t, p.ID) },
		},
		{
			name:   "new clients only",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.NewClientsOnly = true },
			setup:  func(t *testing.T, f *fixture, p *model.Promotion) { f.completedBooking(t, f.provider) },
			want:   ReasonNewClientsOnly,
		},
		{
			name:   "new clients only ignores other providers",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.NewClientsOnly = true },
			setup:  func(t *testing.T, f *fixture, p *model.Promotion) { f.completedBooking(t, uuid.New()) },
		},
		{
			name:   "first booking only",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) { p.FirstBookingOnly = true },
			setup:  func(t *testing.T, f *fixture, p *model.Promotion) { f.completedBooking(t, uuid.New()) },
			want:   ReasonFirstBookingOnly,
		},
		{
			name: "weekday not allowed",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) {
				p.ValidDaysOfWeek = []time.Weekday{time.Saturday, time.Sunday}
			},
			want: ReasonInvalidDayOfWeek,
		},
		{
			name: "weekday allowed",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) {
				p.ValidDaysOfWeek = []time.Weekday{time.Friday}
			},
		},
		{
			name: "service not applicable",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) {
				p.ApplicableServiceIDs = []uuid.UUID{uuid.New()}
			},
			want: ReasonServiceNotApplicable,
		},
		{
			name: "first failing check wins",
			mutate: func(f *fixture, p *model.Promotion, c *Candidate) {
				p.MinPurchaseAmount = 10000
				p.MaxUses = ptr(1)
				p.CurrentUses = 1
				p.ApplicableServiceIDs = []uuid.UUID{uuid.New()}
			},
			want: ReasonBelowMinPurchase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.basePromotion()
			c := f.candidate()
			if tt.mutate != nil {
				tt.mutate(f, p, &c)
			}
			if tt.setup != nil {
				tt.setup(t, f, p)
			}

			err := f.svc.Validate(context.Background(), p, c)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
			if got, _ := ReasonOf(err); got != tt.want {
				t.Errorf("Validate() reason = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.basePromotion()
	p.MaxUses = ptr(1)
	p.CurrentUses = 1
	before := *p

	first := f.svc.Validate(context.Background(), p, f.candidate())
	second := f.svc.Validate(context.Background(), p, f.candidate())

	r1, _ := ReasonOf(first)
	r2, _ := ReasonOf(second)
	if r1 != ReasonMaxUsesReached || r1 != r2 {
		t.Errorf("Validate() reasons = %q then %q, want max_uses_reached twice", r1, r2)
	}
	if p.CurrentUses != before.CurrentUses || p.Status != before.Status {
		t.Errorf("Validate() mutated the promotion: %+v", p)
	}
}

func TestCalculateDiscount(t *testing.T) {
	svc := New(memstore.New(), memstore.New(), memstore.New(), Config{})

	tests := []struct {
		name         string
		promo        model.Promotion
		amount       int64
		wantDiscount int64
	}{
		{"percentage", model.Promotion{Type: model.PromotionPercentage, Value: 20}, 8000, 1600},
		{"percentage rounds half up", model.Promotion{Type: model.PromotionPercentage, Value: 15}, 1010, 152},
		{"percentage capped", model.Promotion{Type: model.PromotionPercentage, Value: 50, MaxDiscountAmount: ptr(int64(1000))}, 8000, 1000},
		{"fixed", model.Promotion{Type: model.PromotionFixedAmount, Value: 500}, 8000, 500},
		{"fixed above amount", model.Promotion{Type: model.PromotionFixedAmount, Value: 9000}, 8000, 8000},
		{"free service", model.Promotion{Type: model.PromotionFreeService}, 8000, 8000},
		{"free service capped", model.Promotion{Type: model.PromotionFreeService, MaxDiscountAmount: ptr(int64(2500))}, 8000, 2500},
		{"zero amount", model.Promotion{Type: model.PromotionFixedAmount, Value: 500}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CalculateDiscount(&tt.promo, tt.amount)
			if err != nil {
				t.Fatalf("CalculateDiscount() error: %v", err)
			}
			if got.Amount != tt.wantDiscount {
				t.Errorf("discount = %d, want %d", got.Amount, tt.wantDiscount)
			}
			if got.FinalAmount != tt.amount-got.Amount {
				t.Errorf("final = %d, want amount - discount = %d", got.FinalAmount, tt.amount-got.Amount)
			}
		})
	}
}

func TestCalculateDiscountBounds(t *testing.T) {
	svc := New(memstore.New(), memstore.New(), memstore.New(), Config{})
	promos := []model.Promotion{
		{Type: model.PromotionPercentage, Value: 1},
		{Type: model.PromotionPercentage, Value: 33},
		{Type: model.PromotionPercentage, Value: 100},
		{Type: model.PromotionFixedAmount, Value: 777},
		{Type: model.PromotionFreeService},
		{Type: model.PromotionFixedAmount, Value: 777, MaxDiscountAmount: ptr(int64(0))},
	}
	for _, p := range promos {
		for amount := int64(0); amount <= 3000; amount += 13 {
			d, err := svc.CalculateDiscount(&p, amount)
			if err != nil {
				t.Fatal(err)
			}
			if d.Amount < 0 || d.Amount > amount || d.FinalAmount != amount-d.Amount {
				t.Fatalf("bounds broken for %+v at %d: %+v", p, amount, d)
			}
		}
	}

	if _, err := svc.CalculateDiscount(&promos[0], -1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount: error = %v, want ErrInvalidAmount", err)
	}
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.provider, CreateRequest{
		Code: " welcome20 ", Type: model.PromotionPercentage, Value: 20,
		StartDate: fixedNow.AddDate(0, 0, -1), EndDate: fixedNow.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.Code != "WELCOME20" {
		t.Errorf("code = %q, want normalized WELCOME20", p.Code)
	}

	q, err := f.svc.Quote(ctx, QuoteRequest{ProviderID: f.provider, Code: "welcome20", ClientID: f.user, ServiceID: f.service, Date: bookDate})
	if err != nil {
		t.Fatalf("Quote() error: %v", err)
	}
	if !q.Valid || q.Discount != 1600 || q.FinalAmount != 6400 {
		t.Errorf("Quote() = %+v, want valid 1600/6400", q)
	}
	if n, _ := f.store.CountUserUsages(ctx, p.ID, f.user); n != 0 {
		t.Errorf("Quote() recorded %d usages, want none", n)
	}

	if _, err := f.svc.SetStatus(ctx, p.ID, model.PromotionPaused); err != nil {
		t.Fatal(err)
	}
	q, err = f.svc.Quote(ctx, QuoteRequest{ProviderID: f.provider, Code: "WELCOME20", ClientID: f.user, ServiceID: f.service, Date: bookDate})
	if err != nil {
		t.Fatalf("Quote() error: %v", err)
	}
	if q.Valid || q.Reason != ReasonInactive || q.FinalAmount != 8000 {
		t.Errorf("paused Quote() = %+v, want invalid promotion_inactive at full price", q)
	}

	if _, err := f.svc.Quote(ctx, QuoteRequest{ProviderID: f.provider, Code: "NOPE", ServiceID: f.service, Date: bookDate}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown code: error = %v, want ErrNotFound", err)
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := CreateRequest{
		Code: "SUMMER", Type: model.PromotionFixedAmount, Value: 500,
		StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 1, 0),
		ValidDaysOfWeek: []time.Weekday{time.Friday, time.Monday, time.Friday},
	}

	p, err := f.svc.Create(ctx, f.provider, valid)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(p.ValidDaysOfWeek) != 2 || p.ValidDaysOfWeek[0] != time.Monday {
		t.Errorf("days = %v, want deduplicated and sorted", p.ValidDaysOfWeek)
	}
	if _, err := f.svc.Create(ctx, f.provider, valid); !errors.Is(err, ErrCodeTaken) {
		t.Errorf("duplicate code: error = %v, want ErrCodeTaken", err)
	}

	bad := []CreateRequest{
		{Code: strings.Repeat("X", 65), Type: model.PromotionFixedAmount, Value: 1, StartDate: fixedNow, EndDate: fixedNow},
		{Code: "P", Type: model.PromotionPercentage, Value: 120, StartDate: fixedNow, EndDate: fixedNow},
		{Code: "P", Type: "bogus", StartDate: fixedNow, EndDate: fixedNow},
		{Code: "P", Type: model.PromotionFreeService, StartDate: fixedNow, EndDate: fixedNow.Add(-time.Hour)},
		{Code: "P", Type: model.PromotionFreeService, StartDate: fixedNow, EndDate: fixedNow, MaxUses: ptr(0)},
	}
	for i, req := range bad {
		if _, err := f.svc.Create(ctx, f.provider, req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("bad request %d: error = %v, want ErrInvalidInput", i, err)
		}
	}
}

func TestCreateGeneratesCode(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.provider, CreateRequest{
		Type: model.PromotionPercentage, Value: 15,
		StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(p.Code) != 9 || p.Code != strings.ToUpper(p.Code) {
		t.Fatalf("generated code = %q", p.Code)
	}

	got, err := f.svc.Resolve(context.Background(), f.provider, strings.ToLower(p.Code))
	if err != nil || got.ID != p.ID {
		t.Errorf("Resolve(generated) = %v, %v", got, err)
	}
}

func TestExpireEnded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ended, err := f.svc.Create(ctx, f.provider, CreateRequest{
		Code: "OLD", Type: model.PromotionFreeService,
		StartDate: fixedNow.AddDate(0, -2, 0), EndDate: fixedNow.AddDate(0, -1, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, f.provider, CreateRequest{
		Code: "NEW", Type: model.PromotionFreeService,
		StartDate: fixedNow, EndDate: fixedNow.AddDate(0, 1, 0),
	}); err != nil {
		t.Fatal(err)
	}

	n, err := f.svc.ExpireEnded(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ExpireEnded() = %d, %v; want 1, nil", n, err)
	}
	got, _ := f.svc.Get(ctx, ended.ID)
	if got.Status != model.PromotionExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}
}
