package logger

import (
	"sort"
	"sync"
	"time"
)

// recentSamples bounds the per-timing sample window used for percentiles, so a
// long-running server does not grow without limit.
const recentSamples = 256

// Metrics tracks counters, gauges and timings for the resolver, loaders and HTTP handlers.
// All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	started  time.Time
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]*timing
}

// timing keeps running totals plus a ring of recent samples.
type timing struct {
	count    int64
	total    time.Duration
	min, max time.Duration
	recent   []time.Duration
	next     int
}

func (t *timing) add(d time.Duration) {
	if t.count == 0 || d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
	t.count++
	t.total += d

	if len(t.recent) < recentSamples {
		t.recent = append(t.recent, d)
		return
	}
	t.recent[t.next] = d
	t.next = (t.next + 1) % recentSamples
}

// TimingStats summarizes one timing series.
type TimingStats struct {
	Count int64         `json:"count"`
	Total time.Duration `json:"total_ns"`
	Mean  time.Duration `json:"mean_ns"`
	Min   time.Duration `json:"min_ns"`
	Max   time.Duration `json:"max_ns"`

	// P95 is computed over the most recent samples only.
	P95 time.Duration `json:"p95_ns"`
}

// Snapshot is a point-in-time copy of every metric.
type Snapshot struct {
	Uptime   time.Duration          `json:"uptime_ns"`
	Counters map[string]int64       `json:"counters"`
	Gauges   map[string]float64     `json:"gauges"`
	Timings  map[string]TimingStats `json:"timings"`
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		started:  time.Now(),
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]*timing),
	}
}

// IncrCounter increments a counter by 1.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Counter returns the current value of a counter (0 if never incremented).
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// SetGauge sets a gauge, overwriting any previous value.
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// RecordTiming records a duration measurement.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.timings[name]
	if !ok {
		t = &timing{}
		m.timings[name] = t
	}
	t.add(duration)
}

// Snapshot returns a deep copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Uptime:   time.Since(m.started),
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		s.Counters[k] = v
	}
	for k, v := range m.gauges {
		s.Gauges[k] = v
	}
	for name, t := range m.timings {
		s.Timings[name] = TimingStats{
			Count: t.count,
			Total: t.total,
			Mean:  t.total / time.Duration(t.count),
			Min:   t.min,
			Max:   t.max,
			P95:   percentile(t.recent, 0.95),
		}
	}
	return s
}

func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// IncrCounter increments a counter on the default metrics tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// CounterValue reads a counter from the default metrics tracker.
func CounterValue(name string) int64 {
	return defaultMetrics.Counter(name)
}

// SetGauge sets a gauge on the default metrics tracker.
func SetGauge(name string, value float64) {
	defaultMetrics.SetGauge(name, value)
}

// RecordTiming records a timing on the default metrics tracker.
func RecordTiming(name string, duration time.Duration) {
	defaultMetrics.RecordTiming(name, duration)
}

// GetMetricsSnapshot returns a snapshot of the default tracker.
func GetMetricsSnapshot() Snapshot {
	return defaultMetrics.Snapshot()
}
