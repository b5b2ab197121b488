// Package worker consumes order lifecycle events off NATS. The storefront
// publishes and forgets; this process handles the slow follow-up work
// (confirmation emails, fulfillment notifications) out of the request path.
package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/shopflow/shopflow/internal/events"
)

// queueGroup ensures each event is delivered to exactly one worker
// instance when several run side by side.
const queueGroup = "shopflow-workers"

// Handler processes a single decoded event. Returning an error logs the
// failure; NATS core does not redeliver, so handlers must be safe to lose
// a message.
type Handler struct {
	// OrderCreated runs for every committed order.
	OrderCreated func(evt events.OrderCreated) error

	// OrderStatusChanged runs for cancellations and fulfillment moves.
	OrderStatusChanged func(evt events.OrderStatusChanged) error
}

// Worker subscribes to order subjects and dispatches to a Handler.
type Worker struct {
	conn    *nats.Conn
	logger  *slog.Logger
	handler Handler
	subs    []*nats.Subscription
}

// New connects to NATS and prepares a worker. Call Start to subscribe.
func New(url string, handler Handler, logger *slog.Logger) (*Worker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &Worker{
		conn:    conn,
		logger:  logger,
		handler: handler,
	}, nil
}

// Start subscribes to all order subjects.
func (w *Worker) Start() error {
	created, err := w.conn.QueueSubscribe(events.SubjectOrderCreated, queueGroup, w.handleCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", events.SubjectOrderCreated, err)
	}
	w.subs = append(w.subs, created)

	for _, subject := range []string{events.SubjectOrderCancelled, events.SubjectOrderStatus} {
		sub, err := w.conn.QueueSubscribe(subject, queueGroup, w.handleStatusChanged)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		w.subs = append(w.subs, sub)
	}

	w.logger.Info("Worker started", "queue_group", queueGroup)
	return nil
}

// Stop drains in-flight messages and closes the connection.
func (w *Worker) Stop() {
	for _, sub := range w.subs {
		sub.Drain()
	}
	w.conn.Drain()
	w.logger.Info("Worker stopped")
}

func (w *Worker) handleCreated(msg *nats.Msg) {
	var evt events.OrderCreated
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		w.logger.Error("Failed to decode order event", "subject", msg.Subject, "error", err)
		return
	}

	w.logger.Info("Order created",
		"order_number", evt.OrderNumber,
		"user_id", evt.UserID,
		"total_cents", evt.TotalCents,
	)

	if w.handler.OrderCreated != nil {
		if err := w.handler.OrderCreated(evt); err != nil {
			w.logger.Error("Order created handler failed", "order_number", evt.OrderNumber, "error", err)
		}
	}
}

func (w *Worker) handleStatusChanged(msg *nats.Msg) {
	var evt events.OrderStatusChanged
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		w.logger.Error("Failed to decode order event", "subject", msg.Subject, "error", err)
		return
	}

	w.logger.Info("Order status changed",
		"order_number", evt.OrderNumber,
		"from", evt.From,
		"to", evt.To,
	)

	if w.handler.OrderStatusChanged != nil {
		if err := w.handler.OrderStatusChanged(evt); err != nil {
			w.logger.Error("Status change handler failed", "order_number", evt.OrderNumber, "error", err)
		}
	}
}
