// Package prometheus implements the kioskd metrics interfaces on the
// process-wide Prometheus registry.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/kioskd/pkg/metrics"
)

// sessionMetrics is the Prometheus implementation of metrics.SessionMetrics.
type sessionMetrics struct {
	reconciles       *prometheus.CounterVec
	reconcileSeconds *prometheus.HistogramVec
	busyRejections   prometheus.Counter
	modeApplies      *prometheus.CounterVec
	stackActions     *prometheus.CounterVec
}

// NewSessionMetrics creates Prometheus-backed session metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called); all
// methods are safe on the nil receiver.
func NewSessionMetrics() *sessionMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sessionMetrics{
		reconciles: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kioskd_reconciles_total",
				Help: "Completed mode reconciliations by final message and forced flag",
			},
			[]string{"message", "forced"},
		),
		reconcileSeconds: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kioskd_reconcile_duration_seconds",
				Help:    "Wall duration of mode reconciliations",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"forced"},
		),
		busyRejections: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "kioskd_reconcile_busy_total",
				Help: "Reconciliation requests rejected because one was already in flight",
			},
		),
		modeApplies: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kioskd_mode_applies_total",
				Help: "Mode-toggle script invocations by requested mode and outcome",
			},
			[]string{"mode", "ok"},
		),
		stackActions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kioskd_stack_actions_total",
				Help: "Service stack starts and restarts by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *sessionMetrics) RecordReconcile(message string, forced bool, duration time.Duration) {
	if m == nil {
		return
	}
	f := strconv.FormatBool(forced)
	m.reconciles.WithLabelValues(message, f).Inc()
	m.reconcileSeconds.WithLabelValues(f).Observe(duration.Seconds())
}

func (m *sessionMetrics) RecordBusy() {
	if m == nil {
		return
	}
	m.busyRejections.Inc()
}

func (m *sessionMetrics) RecordModeApply(mode string, ok bool) {
	if m == nil {
		return
	}
	m.modeApplies.WithLabelValues(mode, strconv.FormatBool(ok)).Inc()
}

func (m *sessionMetrics) RecordStackAction(kind string) {
	if m == nil {
		return
	}
	m.stackActions.WithLabelValues(kind).Inc()
}
