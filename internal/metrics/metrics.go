package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_membership_validations_total",
			Help: "Total number of membership validation requests",
		},
		[]string{"action", "outcome"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_checkins_total",
			Help: "Total number of attendance check-ins",
		},
		[]string{"outcome"},
	)

	CheckOutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_checkouts_total",
			Help: "Total number of attendance check-outs",
		},
	)

	RenewalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_membership_renewals_total",
			Help: "Total number of membership renewals",
		},
		[]string{"outcome"},
	)

	MemberSearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymdesk_member_searches_total",
			Help: "Total number of member search requests",
		},
	)

	EventsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymdesk_events_queued_total",
			Help: "Total number of events pushed to the queue",
		},
		[]string{"type", "status"},
	)

	EventQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymdesk_event_queue_length",
			Help: "Current length of the event queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordValidation(action, outcome string) {
	ValidationsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordCheckIn(outcome string) {
	CheckInsTotal.WithLabelValues(outcome).Inc()
}

func RecordCheckOut() {
	CheckOutsTotal.Inc()
}

func RecordRenewal(outcome string) {
	RenewalsTotal.WithLabelValues(outcome).Inc()
}

func RecordMemberSearch() {
	MemberSearchesTotal.Inc()
}

func RecordEvent(eventType, status string) {
	EventsQueuedTotal.WithLabelValues(eventType, status).Inc()
}
