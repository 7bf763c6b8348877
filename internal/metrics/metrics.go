package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "bookings_created_total",
			Help:      "Guest booking requests accepted.",
		},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "booking_transitions_total",
			Help:      "Successful booking status transitions by target status.",
		},
		[]string{"to"},
	)

	sweeperExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "sweeper_expired_total",
			Help:      "Pending bookings auto-declined by the sweeper.",
		},
	)

	sweeperErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stolik",
			Name:      "sweeper_errors_total",
			Help:      "Sweep passes that failed and will be retried next tick.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingTransitions, sweeperExpired, sweeperErrors)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts an accepted guest request.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncTransition counts a successful transition into the given status.
func IncTransition(to string) {
	bookingTransitions.WithLabelValues(to).Inc()
}

// IncSweeperExpired counts one auto-declined booking.
func IncSweeperExpired() {
	sweeperExpired.Inc()
}

// IncSweeperError counts one failed sweep pass.
func IncSweeperError() {
	sweeperErrors.Inc()
}
