package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Cart
	CartItemsAdded *prometheus.CounterVec
	CartCleared    *prometheus.CounterVec

	// Promo codes
	PromoApplied *prometheus.CounterVec

	// Orders
	OrdersCreated   prometheus.Counter
	OrdersCancelled prometheus.Counter
	OrderValue      prometheus.Histogram
	OrderItemCount  prometheus.Histogram

	// Inventory
	LowStock *prometheus.CounterVec
}

// NewBusinessMetrics creates and registers all business metrics.
func NewBusinessMetrics(namespace string) *BusinessMetrics {
	if namespace == "" {
		namespace = "shopflow"
	}

	subsystem := "business"

	return &BusinessMetrics{
		CartItemsAdded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total items added to carts (quantity-aware)",
			},
			[]string{"product_slug"},
		),
		CartCleared: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total carts cleared",
			},
			[]string{"reason"}, // reason: purchase, reorder
		),
		PromoApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "promo_applied_total",
				Help:      "Total promo code applications by outcome",
			},
			[]string{"result"}, // result: accepted, or the error code
		),
		OrdersCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created",
			},
		),
		OrdersCancelled: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_cancelled_total",
				Help:      "Total orders cancelled by customers",
			},
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Order value distribution in cents",
				Buckets:   []float64{1000, 2500, 5000, 7500, 10000, 15000, 25000, 50000, 100000},
			},
		),
		OrderItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of items per order",
				Buckets:   []float64{1, 2, 3, 5, 10, 15, 20},
			},
		),
		LowStock: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "low_stock_events_total",
				Help:      "Times a checkout left a SKU at or below its low stock threshold",
			},
			[]string{"sku"},
		),
	}
}

// Global instance for easy access from services and handlers.
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace)
	return Business
}
