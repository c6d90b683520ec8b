package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/salonora_backend/internal/repo/memstore"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"valid", CreateRequest{Name: "Balayage", DurationMinutes: 150, Price: 18000}, nil},
		{"free consultation", CreateRequest{Name: "Consultation", DurationMinutes: 15}, nil},
		{"blank name", CreateRequest{Name: "  ", DurationMinutes: 30, Price: 100}, ErrInvalidService},
		{"zero duration", CreateRequest{Name: "Cut", Price: 100}, ErrInvalidService},
		{"negative price", CreateRequest{Name: "Cut", DurationMinutes: 30, Price: -1}, ErrInvalidService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(memstore.New())
			got, err := svc.Create(context.Background(), uuid.New(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && (!got.Active || got.ID == uuid.Nil) {
				t.Errorf("Create() = %+v, want an active offering with an id", got)
			}
		})
	}
}

func TestGetScopedToProvider(t *testing.T) {
	svc := New(memstore.New())
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, CreateRequest{Name: "Manicure", DurationMinutes: 45, Price: 3500})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, owner, created.ID); err != nil {
		t.Errorf("Get() by owner error: %v", err)
	}
	if _, err := svc.Get(ctx, uuid.New(), created.ID); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Get() by another provider: error = %v, want ErrServiceNotFound", err)
	}
}
