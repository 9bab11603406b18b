package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// Auth metrics
	tokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	tokenValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Total number of token validations",
		},
		[]string{"result"}, // ok, expired, unauthenticated
	)

	tokensRevokedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_revoked_total",
			Help: "Total number of token revocations",
		},
		[]string{"status"}, // success, not_found
	)

	// Item store metrics
	itemOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_store_operations_total",
			Help: "Total number of item store operations",
		},
		[]string{"store", "operation", "status"}, // create/get/list/replace/patch/delete, success/not_found
	)
)

// Init initializes the metrics
func Init() error {
	// Register metrics
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		tokensIssuedTotal,
		tokenValidationsTotal,
		tokensRevokedTotal,
		itemOperationsTotal,
	)

	return nil
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process request
		err := c.Next()

		// Record metrics
		duration := time.Since(start).Seconds()
		method := c.Method()
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		statusCode := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)

		return err
	}
}

// RecordTokenIssued records a successful token issuance
func RecordTokenIssued() {
	tokensIssuedTotal.Inc()
}

// RecordTokenValidation records a token validation attempt
func RecordTokenValidation(result string) {
	tokenValidationsTotal.WithLabelValues(result).Inc()
}

// RecordTokenRevocation records a token revocation attempt
func RecordTokenRevocation(status string) {
	tokensRevokedTotal.WithLabelValues(status).Inc()
}

// RecordItemOperation records item store operations
func RecordItemOperation(store, operation, status string) {
	itemOperationsTotal.WithLabelValues(store, operation, status).Inc()
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
