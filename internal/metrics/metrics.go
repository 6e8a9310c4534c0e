// Package metrics exposes Prometheus instrumentation for the marketplace
// core. Collectors are registered once at package init; the HTTP middleware
// and the /metrics listener are wired in from main.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bazaar_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Order ledger metrics
	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaar_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bazaar_order_status_transitions_total",
			Help: "Total number of order status transitions by target status",
		},
		[]string{"status"},
	)

	ClaimConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaar_delivery_claim_conflicts_total",
			Help: "Total number of courier claims lost to an earlier claim",
		},
	)

	SettlementsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bazaar_settlements_recorded_total",
			Help: "Total number of vendor settlements recorded",
		},
	)
)

// Middleware returns a Fiber handler that records request counts and
// latencies. The route pattern is used as the path label to keep
// cardinality bounded.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}

		HTTPRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Serve blocks serving the Prometheus scrape endpoint on the given port.
func Serve(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(":"+port, mux)
}
