// Package events publishes order lifecycle events for downstream consumers
// (email, fulfillment, analytics). Publishing is best-effort: a failed
// publish is logged by the caller and never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects for order lifecycle events.
const (
	SubjectOrderCreated   = "orders.created"
	SubjectOrderCancelled = "orders.cancelled"
	SubjectOrderStatus    = "orders.status_changed"
)

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// OrderCreated is the payload for SubjectOrderCreated.
type OrderCreated struct {
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	TotalCents  int64     `json:"totalCents"`
	ItemCount   int32     `json:"itemCount"`
	PromoCode   string    `json:"promoCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderStatusChanged is the payload for SubjectOrderCancelled and
// SubjectOrderStatus.
type OrderStatusChanged struct {
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	UserID      int64  `json:"userId"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// natsPublisher publishes events to a NATS server as JSON messages.
type natsPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (Publisher, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &natsPublisher{conn: conn}, nil
}

func (p *natsPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

func (p *natsPublisher) Close() {
	p.conn.Drain()
}

// noopPublisher drops events. Used when no NATS URL is configured and in
// tests.
type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that discards all events.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
func (noopPublisher) Close()                                     {}
