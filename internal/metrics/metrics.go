package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	signupCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking_platform",
			Name:      "signup_completed_total",
			Help:      "Count of accounts created through signup.",
		},
	)

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking_platform",
			Name:      "booking_created_total",
			Help:      "Count of bookings admitted and persisted.",
		},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking_platform",
			Name:      "booking_rejected_total",
			Help:      "Count of booking requests rejected by the validation chain.",
		},
		[]string{"reason"},
	)

	slotOverlapRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "booking_platform",
			Name:      "time_slot_overlap_rejected_total",
			Help:      "Count of time slot creations rejected by the overlap check.",
		},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "booking_platform",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path pattern.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			signupCompleted,
			bookingCreated,
			bookingRejected,
			slotOverlapRejected,
			httpRequestDuration,
		)
	})
}

func ObserveSignup() {
	signupCompleted.Inc()
}

func ObserveBookingCreated() {
	bookingCreated.Inc()
}

func ObserveBookingRejected(reason string) {
	bookingRejected.WithLabelValues(reason).Inc()
}

func ObserveSlotOverlapRejected() {
	slotOverlapRejected.Inc()
}

func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}
