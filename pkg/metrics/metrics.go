// Package metrics defines the observability interfaces for kioskd and the
// process-wide Prometheus registry. Implementations live in the prometheus
// subpackage; a nil or Nop metrics value disables collection with zero
// overhead.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics collects reconciliation observability.
type SessionMetrics interface {
	// RecordReconcile records a completed EnsureMode run with its final
	// message (ready, starting, applying), whether it was forced, and its
	// wall duration.
	RecordReconcile(message string, forced bool, duration time.Duration)

	// RecordBusy records a reconciliation rejected by the switch lock.
	RecordBusy()

	// RecordModeApply records one mode-toggle invocation and its outcome.
	RecordModeApply(mode string, ok bool)

	// RecordStackAction records a stack start/restart, by kind
	// ("start", "restart", "manual").
	RecordStackAction(kind string)
}

// Nop is a SessionMetrics that records nothing.
type Nop struct{}

func (Nop) RecordReconcile(string, bool, time.Duration) {}
func (Nop) RecordBusy()                                 {}
func (Nop) RecordModeApply(string, bool)                {}
func (Nop) RecordStackAction(string)                    {}

var (
	registryMu sync.Mutex
	registry   *prometheus.Registry
)

// InitRegistry creates the process-wide Prometheus registry. Calling it
// again returns the existing registry.
func InitRegistry() *prometheus.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return registry
}

// GetRegistry returns the process-wide registry, or nil when metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
