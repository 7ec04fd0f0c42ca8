// Package metrics records timings for the filter, layout and render pipeline.
//
// Metrics are collected in-memory with atomic operations, so the file watcher
// goroutine and the UI loop can both record. Collection is enabled by default
// and can be disabled with MV_METRICS=0.
//
// Usage:
//
//	func layoutTree() {
//	    defer metrics.Timer(metrics.TreeLayout)()
//	    // ...
//	}
package metrics

import (
	"os"
	"sort"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("MV_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric tracks timing statistics for one pipeline stage.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 until the first sample
	lastNs  atomic.Int64
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	if ns <= 0 {
		ns = 1
	}
	m.count.Add(1)
	m.totalNs.Add(ns)
	m.lastNs.Store(ns)

	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.minNs.Load()
		if (old != 0 && ns >= old) || m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Last returns the most recent measurement.
func (m *TimingMetric) Last() time.Duration { return time.Duration(m.lastNs.Load()) }

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.totalNs.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: nsToMs(total),
		AvgMs:   nsToMs(avg),
		MaxMs:   nsToMs(m.maxNs.Load()),
		MinMs:   nsToMs(m.minNs.Load()),
		LastMs:  nsToMs(m.lastNs.Load()),
	}
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
	m.lastNs.Store(0)
}

func nsToMs(ns int64) float64 { return float64(ns) / 1e6 }

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
	LastMs  float64 `json:"last_ms"`
}

// Timer returns a function that records the elapsed time when called.
//
//	defer metrics.Timer(metrics.Filter)()
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// TimerWithCallback is Timer plus a callback that receives the duration,
// used to forward timings to the debug log.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Pipeline stages.
var (
	Import     = newTimingMetric("import")
	Filter     = newTimingMetric("filter")
	Wrap       = newTimingMetric("wrap")
	TreeLayout = newTimingMetric("tree_layout")
	ForceTick  = newTimingMetric("force_tick")
	Render     = newTimingMetric("render")
	Export     = newTimingMetric("export")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{Import, Filter, Wrap, TreeLayout, ForceTick, Render, Export}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for every metric with data, slowest total first.
func AllTimingStats() []TimingStats {
	stats := make([]TimingStats, 0, len(AllTimingMetrics()))
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].TotalMs > stats[j].TotalMs })
	return stats
}
