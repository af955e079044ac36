package authcore

import (
	"sync/atomic"
	"time"
)

// MetricID names one engine counter.
type MetricID uint16

const (
	// MetricHashSuccess counts references produced by Hash.
	MetricHashSuccess MetricID = iota
	// MetricHashFailure counts Hash calls that returned an error.
	MetricHashFailure
	// MetricValidateOk counts matches against the default scheme.
	MetricValidateOk
	// MetricValidateOutdated counts matches against a non-default scheme.
	MetricValidateOutdated
	// MetricValidateFailure counts Validate calls that returned an error.
	MetricValidateFailure
	// MetricTokenIssued counts custom tokens signed.
	MetricTokenIssued
	// MetricTokenValidated counts custom tokens that passed validation.
	MetricTokenValidated
	// MetricTokenExpired counts correctly signed custom tokens past expiry.
	MetricTokenExpired
	// MetricTokenSignatureMismatch counts custom tokens with a bad signature.
	MetricTokenSignatureMismatch
	// MetricTokenFailure counts the remaining custom token failures.
	MetricTokenFailure
	// MetricJWTEncoded counts standard tokens signed.
	MetricJWTEncoded
	// MetricJWTDecoded counts successful header and subject decodes.
	MetricJWTDecoded
	// MetricJWTExpired counts standard tokens rejected as expired.
	MetricJWTExpired
	// MetricJWTFailure counts the remaining standard token failures.
	MetricJWTFailure
	// MetricPoolRejected counts hashing jobs refused by the worker pool.
	MetricPoolRejected
	// MetricHashLatency is a histogram of Hash wall time.
	MetricHashLatency
	// MetricValidateLatency is a histogram of Validate wall time.
	MetricValidateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free engine counters. A nil or disabled Metrics drops
// every update.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns counters configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters record anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms record anything.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the histogram of a latency metric. Other ids are
// ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || !isLatencyMetric(id) {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter, and every histogram when latency is enabled.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 2),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if isLatencyMetric(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []MetricID{MetricHashLatency, MetricValidateLatency} {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func isLatencyMetric(id MetricID) bool {
	return id == MetricHashLatency || id == MetricValidateLatency
}

// Memory-hard hashing sits in the tens of milliseconds, so the buckets reach
// further than a request-latency histogram would.
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
