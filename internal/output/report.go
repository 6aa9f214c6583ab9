// Package output renders the end-of-run report and live progress.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/lobsters-trawler/internal/metrics"
)

// Report is the end-of-run summary of one benchmark.
type Report struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	Target    string        `json:"target" yaml:"target"`
	Scale     float64       `json:"scale" yaml:"scale"`
	Issuers   int           `json:"issuers" yaml:"issuers"`
	Seed      int64         `json:"seed" yaml:"seed"`
	Warmup    time.Duration `json:"-" yaml:"-"`
	WarmupMs  float64       `json:"warmup_ms" yaml:"warmup_ms"`
	WarmupOps int64         `json:"warmup_operations" yaml:"warmup_operations"` // executed but excluded from Stats
	Stats     metrics.Stats `json:"stats" yaml:"stats"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r Report) normalized() Report {
	r.WarmupMs = float64(r.Warmup) / float64(time.Millisecond)
	return r
}

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r Report) {
	stats := r.Stats
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", r.RunID)
	fmt.Fprintf(w, "Target:            %s\n", r.Target)
	fmt.Fprintf(w, "Scale / Issuers:   %g / %d\n", r.Scale, r.Issuers)
	fmt.Fprintf(w, "Seed:              %d\n", r.Seed)
	fmt.Fprintf(w, "Warmup:            %s (%d operations)\n", r.Warmup, r.WarmupOps)
	fmt.Fprintf(w, "Total Operations:  %d\n", stats.Total)
	fmt.Fprintf(w, "Successful:        %d\n", stats.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", stats.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Operations/sec:    %.2f\n", stats.OpsPerSec)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
	fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
	fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)

	if len(stats.Operations) > 0 {
		fmt.Fprintln(w, "\nOperation Breakdown:")
		for _, op := range stats.Operations {
			share := 0.0
			if stats.Total > 0 {
				share = (float64(op.Total) / float64(stats.Total)) * 100
			}
			fmt.Fprintf(
				w,
				"  - %s: total=%d (%.1f%%), failures=%d, ops/s=%.2f, p50=%s, p99=%s\n",
				op.Operation,
				op.Total,
				share,
				op.Failures,
				op.OpsPerSec,
				op.P50Latency,
				op.P99Latency,
			)
		}
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(stats.Errors))
		for name := range stats.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.Errors[name])
		}
	}

	if r.Error != "" {
		fmt.Fprintf(w, "\nAborted: %s\n", r.Error)
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.normalized())
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.normalized()); err != nil {
		return err
	}
	return enc.Close()
}
