package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	RemindersTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_reminders_triggered_total",
			Help: "Reminders triggered by the scheduler",
		},
		[]string{"frequency"},
	)

	FanOuts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_fanouts_total",
			Help: "Notifications created at fan-out",
		},
		[]string{"priority"},
	)

	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_deliveries_total",
			Help: "Delivery attempts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_delivery_duration_seconds",
			Help:    "Duration of channel delivery attempts",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	RetriesExhausted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_retries_exhausted_total",
			Help: "Notifications that failed all retry attempts",
		},
	)

	MilestonesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_milestones_created_total",
			Help: "Milestones created by the detector",
		},
		[]string{"category"},
	)
)

func Init() {
	prometheus.MustRegister(
		HTTPRequests,
		RequestDuration,
		RemindersTriggered,
		FanOuts,
		Deliveries,
		DeliveryDuration,
		RetriesExhausted,
		MilestonesCreated,
	)
}
