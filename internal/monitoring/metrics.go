package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	CheckoutAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_attempts_total",
			Help: "Total number of checkout submission attempts",
		},
	)

	CheckoutAbortedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_aborted_total",
			Help: "Total number of checkouts aborted before any issuance call",
		},
		[]string{"reason"},
	)

	CheckoutSuccessTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_success_total",
			Help: "Total number of fully successful checkouts",
		},
	)

	CheckoutPartialFailureTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkout_partial_failure_total",
			Help: "Total number of checkouts with at least one failed issuance",
		},
	)

	TicketsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total number of successfully issued tickets",
		},
	)

	TicketIssuanceFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_issuance_failures_total",
			Help: "Total number of failed ticket issuance calls",
		},
	)

	PromotionRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promotion_rejected_total",
			Help: "Total number of rejected promotion codes",
		},
	)
)

// Handler returns the metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
