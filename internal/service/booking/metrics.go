package booking

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/salonora_backend/internal/service/promotion"
)

type metrics struct {
	submissions metric.Int64Counter
}

func newMetrics() *metrics {
	submissions, err := otel.Meter("salonora/booking").Int64Counter(
		"booking_submissions_total",
		metric.WithDescription("Booking submissions by outcome"),
	)
	if err != nil {
		return &metrics{}
	}
	return &metrics{submissions: submissions}
}

func (m *metrics) recordSubmission(ctx context.Context, outcome string) {
	if m.submissions == nil {
		return
	}
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "persisted"
	case errors.Is(err, ErrSlotNoLongerAvailable):
		return "slot_unavailable"
	case errors.Is(err, promotion.ErrInvalid):
		return "promotion_invalid"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
