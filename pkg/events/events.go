// Package events publishes booking lifecycle events. Subjects follow
// <prefix>.<entity>.<action>.<provider id>.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
	BookingDiscarded = "booking.discarded"
	RefundRequested  = "payment.refund_requested"

	// PaymentCaptured is consumed, not published: the payment-capture side
	// reports a captured booking with its id as the message body.
	PaymentCaptured = "payment.captured"
)

// Subject scopes an event name to one provider.
func Subject(event string, providerID uuid.UUID) string {
	return event + "." + providerID.String()
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// ----- NATS

type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", subject, err)
	}
	if err := p.nc.Publish(p.Qualify(subject), data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Qualify prepends the configured prefix.
func (p *NATSPublisher) Qualify(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "." + subject
}

// ----- no-op

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// ----- recorder

type Recorded struct {
	Subject string
	Payload any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Subject: subject, Payload: payload})
	return nil
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Recorded, len(r.events))
	copy(out, r.events)
	return out
}

// ----- payloads

type BookingEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	ClientID   uuid.UUID `json:"client_id"`
	ServiceID  uuid.UUID `json:"service_id"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	Status     string    `json:"status"`
	TotalPrice int64     `json:"total_price"`
	AmountNow  int64     `json:"amount_now"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RefundInstruction asks the payment side to return what was captured for a
// cancelled booking.
type RefundInstruction struct {
	BookingID   uuid.UUID `json:"booking_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	ClientID    uuid.UUID `json:"client_id"`
	Amount      int64     `json:"amount"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
