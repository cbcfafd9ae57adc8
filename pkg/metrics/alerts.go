package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DispatchSent    = "sent"
	DispatchSkipped = "skipped"
	DispatchFailed  = "failed"
	DispatchDropped = "dropped"
)

// AlertMetrics records alert lifecycle and notification delivery activity.
// A nil *AlertMetrics is valid and records nothing.
type AlertMetrics struct {
	alertsCreated    *prometheus.CounterVec
	alertsDeleted    prometheus.Counter
	acknowledgments  *prometheus.CounterVec
	dispatchResults  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	realtimeClients  prometheus.Gauge
}

// NewAlertMetrics registers the alert metrics on the provided registerer.
func NewAlertMetrics(reg prometheus.Registerer) *AlertMetrics {
	if reg == nil {
		return &AlertMetrics{}
	}
	m := &AlertMetrics{
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_created_total",
			Help: "Alerts created, by level.",
		}, []string{"level"}),
		alertsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alerts_deleted_total",
			Help: "Alerts deleted together with their acknowledgments.",
		}),
		acknowledgments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alert_acknowledgments_total",
			Help: "Acknowledgment attempts, by outcome (applied or duplicate).",
		}, []string{"result"}),
		dispatchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_dispatch_total",
			Help: "Notification sends per channel and result.",
		}, []string{"channel", "result"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Time spent sending one event to one channel.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),
		realtimeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "realtime_connected_clients",
			Help: "Websocket clients currently attached to the hub.",
		}),
	}
	reg.MustRegister(m.alertsCreated, m.alertsDeleted, m.acknowledgments, m.dispatchResults, m.dispatchDuration, m.realtimeClients)
	return m
}

func (m *AlertMetrics) IncAlertCreated(level string) {
	if m == nil || m.alertsCreated == nil {
		return
	}
	m.alertsCreated.WithLabelValues(normalizeLabel(level)).Inc()
}

func (m *AlertMetrics) IncAlertDeleted() {
	if m == nil || m.alertsDeleted == nil {
		return
	}
	m.alertsDeleted.Inc()
}

// IncAcknowledgment counts an acknowledgment attempt; applied=false is a duplicate.
func (m *AlertMetrics) IncAcknowledgment(applied bool) {
	if m == nil || m.acknowledgments == nil {
		return
	}
	result := "duplicate"
	if applied {
		result = "applied"
	}
	m.acknowledgments.WithLabelValues(result).Inc()
}

// ObserveDispatch records one channel send.
func (m *AlertMetrics) ObserveDispatch(channel, result string, duration time.Duration) {
	if m == nil || m.dispatchResults == nil {
		return
	}
	channel = normalizeLabel(channel)
	m.dispatchResults.WithLabelValues(channel, normalizeLabel(result)).Inc()
	if duration > 0 {
		m.dispatchDuration.WithLabelValues(channel).Observe(duration.Seconds())
	}
}

func (m *AlertMetrics) SetRealtimeClients(n int) {
	if m == nil || m.realtimeClients == nil {
		return
	}
	m.realtimeClients.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
