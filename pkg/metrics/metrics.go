package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agendo"

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of bookings committed.",
		},
	)

	bookingRescheduled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rescheduled_total",
			Help:      "Count of bookings rescheduled.",
		},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_rejected_total",
			Help:      "Count of booking writes rejected, by reason.",
		},
		[]string{"reason"},
	)

	statusTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transition_total",
			Help:      "Count of booking status transitions.",
		},
		[]string{"from", "to"},
	)

	lockAcquisitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_lock_acquisitions_total",
			Help:      "Count of booking lock attempts, by result.",
		},
		[]string{"result"},
	)

	transactionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_transaction_duration_seconds",
			Help:      "Time spent in the booking check-then-write unit of work, by result.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"result"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Count of Kafka publish attempts, by topic and result.",
		},
		[]string{"topic", "result"},
	)

	publishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests, by method and status code.",
		},
		[]string{"method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingRescheduled,
			bookingRejected,
			statusTransition,
			lockAcquisitions,
			transactionDuration,
			eventsPublished,
			publishDuration,
			httpRequests,
			httpDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingRescheduled() {
	bookingRescheduled.Inc()
}

// IncBookingRejected takes the error code of the rejection.
func IncBookingRejected(reason string) {
	bookingRejected.WithLabelValues(reason).Inc()
}

func IncStatusTransition(from, to string) {
	statusTransition.WithLabelValues(from, to).Inc()
}

const (
	LockAcquired  = "acquired"
	LockContended = "contended"
	LockLost      = "lost"
	LockFailed    = "error"
)

func IncLockAcquisition(result string) {
	lockAcquisitions.WithLabelValues(result).Inc()
}

func ObserveTransaction(seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	transactionDuration.WithLabelValues(result).Observe(seconds)
}

func ObservePublish(topic string, seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(topic, result).Inc()
	publishDuration.WithLabelValues(topic).Observe(seconds)
}

func ObserveHTTPRequest(method string, status int, seconds float64) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(seconds)
}
