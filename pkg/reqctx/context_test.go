package reqctx

import (
	"context"
	"testing"
	"time"
)

func TestRequestMeta(t *testing.T) {
	ctx := context.Background()
	if _, ok := RequestMetaFromContext(ctx); ok {
		t.Fatal("empty context reported meta")
	}
	if id := RequestIDFromContext(ctx); id != "" {
		t.Fatalf("RequestID = %q", id)
	}

	ctx = WithRequestMeta(ctx, &RequestMeta{RequestID: "req-1", RequestedAt: time.Now()})
	if id := RequestIDFromContext(ctx); id != "req-1" {
		t.Fatalf("RequestID = %q", id)
	}

	ctx = WithRequestMeta(ctx, nil)
	if _, ok := RequestMetaFromContext(ctx); ok {
		t.Fatal("nil meta reported as present")
	}
}
