package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)

	// CircuitBreakerState is 0=closed, 1=open, 2=half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service", "circuit_name"},
	)

	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of circuit breaker failures",
		},
		[]string{"service", "circuit_name"},
	)

	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders placed",
		},
	)

	OrderValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_grand_total",
			Help:    "Grand total of placed orders",
			Buckets: []float64{100, 500, 1000, 2500, 5000, 10000, 25000},
		},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_transitions_total",
			Help: "Order status changes by source and target status",
		},
		[]string{"from", "to", "result"},
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_notifications_total",
			Help: "Confirmation mails by result",
		},
		[]string{"result"},
	)

	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_side_effect_failures_total",
			Help: "Failed best-effort order side effects",
		},
		[]string{"kind"},
	)
)

// Middleware records request count and latency per route template.
func Middleware(serviceName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			RequestsTotal.WithLabelValues(serviceName, c.Request().Method, path, strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(serviceName, c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
