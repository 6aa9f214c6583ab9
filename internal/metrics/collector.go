package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

// Track latencies from 1µs up to 60s with 3 significant figures.
const (
	histMinMicros = 1
	histMaxMicros = 60_000_000
	histSigFigs   = 3
)

// bucket aggregates one latency population.
type bucket struct {
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
}

func newBucket() *bucket {
	return &bucket{hist: hdrhistogram.New(histMinMicros, histMaxMicros, histSigFigs)}
}

func (b *bucket) record(latency time.Duration, failed bool) {
	if latency > 0 {
		us := latency.Microseconds()
		if us < b.hist.LowestTrackableValue() {
			us = b.hist.LowestTrackableValue()
		}
		if us > b.hist.HighestTrackableValue() {
			us = b.hist.HighestTrackableValue()
		}
		_ = b.hist.RecordValue(us)
	}
	b.sumLatency += latency
	if b.minLatency == 0 || latency < b.minLatency {
		b.minLatency = latency
	}
	if latency > b.maxLatency {
		b.maxLatency = latency
	}
	if failed {
		b.failures++
	} else {
		b.successes++
	}
}

func (b *bucket) latency() LatencyStats {
	total := b.successes + b.failures
	ls := LatencyStats{
		MinLatency: b.minLatency,
		MaxLatency: b.maxLatency,
	}
	if total > 0 {
		ls.MeanLatency = time.Duration(int64(b.sumLatency) / total)
	}
	if b.hist.TotalCount() > 0 {
		ls.P50Latency = time.Duration(b.hist.ValueAtQuantile(50)) * time.Microsecond
		ls.P90Latency = time.Duration(b.hist.ValueAtQuantile(90)) * time.Microsecond
		ls.P99Latency = time.Duration(b.hist.ValueAtQuantile(99)) * time.Microsecond
	}
	ls.MinLatencyMs = millis(ls.MinLatency)
	ls.MaxLatencyMs = millis(ls.MaxLatency)
	ls.MeanLatencyMs = millis(ls.MeanLatency)
	ls.P50LatencyMs = millis(ls.P50Latency)
	ls.P90LatencyMs = millis(ls.P90Latency)
	ls.P99LatencyMs = millis(ls.P99Latency)
	return ls
}

// Collector records per-operation metrics in a thread-safe manner.
type Collector struct {
	mu           sync.Mutex
	overall      *bucket
	operations   map[workload.Kind]*bucket
	errorsByType map[string]int64
	start        time.Time
}

// LatencyStats summarizes a latency distribution.
type LatencyStats struct {
	MinLatency  time.Duration `json:"-" yaml:"-"`
	MaxLatency  time.Duration `json:"-" yaml:"-"`
	MeanLatency time.Duration `json:"-" yaml:"-"`
	P50Latency  time.Duration `json:"-" yaml:"-"`
	P90Latency  time.Duration `json:"-" yaml:"-"`
	P99Latency  time.Duration `json:"-" yaml:"-"`

	MinLatencyMs  float64 `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs float64 `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	P50LatencyMs  float64 `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P90LatencyMs  float64 `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P99LatencyMs  float64 `json:"p99_latency_ms" yaml:"p99_latency_ms"`
}

// OperationStats is the breakdown for one operation kind.
type OperationStats struct {
	Operation    workload.Kind `json:"operation" yaml:"operation"`
	Total        int64         `json:"total" yaml:"total"`
	Successes    int64         `json:"successes" yaml:"successes"`
	Failures     int64         `json:"failures" yaml:"failures"`
	OpsPerSec    float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	LatencyStats `json:",inline" yaml:",inline"`
}

// Stats represents aggregated metrics.
type Stats struct {
	Total        int64         `json:"total" yaml:"total"`
	Successes    int64         `json:"successes" yaml:"successes"`
	Failures     int64         `json:"failures" yaml:"failures"`
	Duration     time.Duration `json:"-" yaml:"-"`
	DurationMs   float64       `json:"duration_ms" yaml:"duration_ms"`
	OpsPerSec    float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	LatencyStats `json:",inline" yaml:",inline"`

	Operations []OperationStats `json:"operations,omitempty" yaml:"operations,omitempty"`
	Errors     map[string]int   `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func NewCollector() *Collector {
	return &Collector{
		overall:      newBucket(),
		operations:   make(map[workload.Kind]*bucket),
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// Start marks the beginning of the measured window.
func (c *Collector) Start() {
	c.mu.Lock()
	c.start = time.Now()
	c.mu.Unlock()
}

// Elapsed returns the time since Start.
func (c *Collector) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.start)
}

// RecordOperation records a single operation's latency and outcome.
func (c *Collector) RecordOperation(kind workload.Kind, latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.overall.record(latency, err != nil)
	b, ok := c.operations[kind]
	if !ok {
		b = newBucket()
		c.operations[kind] = b
	}
	b.record(latency, err != nil)

	if err != nil {
		c.errorsByType[FriendlyErrorName(errorTypeName(err))]++
	}
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.overall.successes + c.overall.failures
	stats := Stats{
		Total:        total,
		Successes:    c.overall.successes,
		Failures:     c.overall.failures,
		Duration:     elapsed,
		DurationMs:   millis(elapsed),
		OpsPerSec:    perSecond(total, elapsed),
		LatencyStats: c.overall.latency(),
	}

	for kind, b := range c.operations {
		n := b.successes + b.failures
		stats.Operations = append(stats.Operations, OperationStats{
			Operation:    kind,
			Total:        n,
			Successes:    b.successes,
			Failures:     b.failures,
			OpsPerSec:    perSecond(n, elapsed),
			LatencyStats: b.latency(),
		})
	}
	sort.Slice(stats.Operations, func(i, j int) bool {
		if stats.Operations[i].Total == stats.Operations[j].Total {
			return stats.Operations[i].Operation < stats.Operations[j].Operation
		}
		return stats.Operations[i].Total > stats.Operations[j].Total
	})

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func perSecond(n int64, elapsed time.Duration) float64 {
	if elapsed <= 0 || n == 0 {
		return 0
	}
	return float64(n) / elapsed.Seconds()
}
