package goTasks

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the task client.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the task client.
	MetricLoginFailure
	// MetricRegisterSuccess is an exported constant or variable used by the task client.
	MetricRegisterSuccess
	// MetricRegisterValidationFailed is an exported constant or variable used by the task client.
	MetricRegisterValidationFailed
	// MetricRegisterFailure is an exported constant or variable used by the task client.
	MetricRegisterFailure
	// MetricLogout is an exported constant or variable used by the task client.
	MetricLogout
	// MetricLogoutRemoteFailed is an exported constant or variable used by the task client.
	MetricLogoutRemoteFailed
	// MetricRestoreHit is an exported constant or variable used by the task client.
	MetricRestoreHit
	// MetricRestoreMiss is an exported constant or variable used by the task client.
	MetricRestoreMiss
	// MetricRestoreExpiredSkip is an exported constant or variable used by the task client.
	MetricRestoreExpiredSkip
	// MetricVerifySuccess is an exported constant or variable used by the task client.
	MetricVerifySuccess
	// MetricVerifyRejected is an exported constant or variable used by the task client.
	MetricVerifyRejected
	// MetricVerifyUnreachable is an exported constant or variable used by the task client.
	MetricVerifyUnreachable
	// MetricImplicitTeardown is an exported constant or variable used by the task client.
	MetricImplicitTeardown
	// MetricTaskList is an exported constant or variable used by the task client.
	MetricTaskList
	// MetricTaskCreate is an exported constant or variable used by the task client.
	MetricTaskCreate
	// MetricTaskUpdate is an exported constant or variable used by the task client.
	MetricTaskUpdate
	// MetricTaskDelete is an exported constant or variable used by the task client.
	MetricTaskDelete
	// MetricTaskFailure is an exported constant or variable used by the task client.
	MetricTaskFailure
	// MetricVerifyLatency is an exported constant or variable used by the task client.
	MetricVerifyLatency

	metricIDCount
)

const histBucketCount = 8

// counter is padded so adjacent counters do not share a cache line under
// concurrent increments.
type counter struct {
	value uint64
	_     [7]uint64
}

type histogram struct {
	buckets [histBucketCount]uint64
}

// Metrics holds atomic counters and an optional verify-latency histogram.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]counter
	verifyLatency histogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether the metrics instance records anything at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id. No-op on a nil or disabled instance.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a verify round-trip duration into the latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricVerifyLatency {
		return
	}
	atomic.AddUint64(&m.verifyLatency.buckets[bucketIndex(d)], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of every counter and histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.verifyLatency.buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
