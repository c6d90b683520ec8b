// Package reqctx carries request-scoped metadata through context.Context.
//
// HTTP middleware stores a RequestMeta for every request:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{
//	    RequestID:   "abc-123",
//	    ClientIP:    "192.168.1.1",
//	    RequestedAt: time.Now(),
//	})
//
// Services and the log handler read it back with RequestIDFromContext.
// Context keys are unexported so no other package can collide with them.
package reqctx
