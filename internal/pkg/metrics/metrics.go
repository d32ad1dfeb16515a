// Package metrics defines the Prometheus metrics exposed by the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TransitionsTotal counts transition requests by outcome.
	// Outcomes: applied, noop, denied, conflict, not_found, error.
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_transitions_total",
			Help: "Total number of delivery status transition requests by outcome",
		},
		[]string{"outcome"},
	)

	// LocationSamplesTotal counts location samples accepted by tracking sessions.
	LocationSamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_location_samples_total",
			Help: "Total number of accepted location samples",
		},
	)

	// LocationSamplesDroppedTotal counts samples dropped for stale sequence.
	LocationSamplesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_location_samples_dropped_total",
			Help: "Total number of location samples dropped as duplicate or out of order",
		},
	)

	// ReconnectsTotal counts transport reconnect attempts by tracking sessions.
	ReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_reconnects_total",
			Help: "Total number of tracking transport reconnect attempts",
		},
	)

	// ActiveSessions tracks the number of currently open tracking sessions.
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracking_active_sessions",
			Help: "Number of tracking sessions currently open",
		},
	)

	// TrackingUnavailableTotal counts sessions whose reconnect backoff exceeded
	// the configured ceiling.
	TrackingUnavailableTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_unavailable_total",
			Help: "Total number of tracking-unavailable escalations",
		},
	)
)

// Register registers all Prometheus metrics.
func Register() {
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(LocationSamplesTotal)
	prometheus.MustRegister(LocationSamplesDroppedTotal)
	prometheus.MustRegister(ReconnectsTotal)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(TrackingUnavailableTotal)
}
