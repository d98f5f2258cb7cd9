package telemetry

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toko_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toko_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toko_orders_created_total",
		Help: "Orders persisted with a price snapshot",
	})

	orderTotalAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "toko_order_total_amount",
		Help:    "Distribution of order totals",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 5000},
	})

	ratingRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toko_rating_recomputes_total",
			Help: "Product rating aggregate recomputations",
		},
		[]string{"trigger"},
	)

	schemaFieldsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "toko_schema_fields_removed_total",
		Help: "Dynamic product attributes dropped by reconciliation",
	})
)

// ObserveOrderCreated records a persisted order and its total.
func ObserveOrderCreated(total float64) {
	ordersCreated.Inc()
	orderTotalAmount.Observe(total)
}

// ObserveRatingRecompute records an aggregate recompute. trigger is
// "review_created" or "review_deleted".
func ObserveRatingRecompute(trigger string) {
	ratingRecomputes.WithLabelValues(trigger).Inc()
}

// ObserveFieldsRemoved records attributes dropped from a product.
func ObserveFieldsRemoved(n int) {
	schemaFieldsRemoved.Add(float64(n))
}

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		httpRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
