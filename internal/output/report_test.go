package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/lobsters-trawler/internal/metrics"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

func sampleReport() Report {
	collector := metrics.NewCollector()
	collector.RecordOperation(workload.KindStory, 20*time.Millisecond, nil)
	collector.RecordOperation(workload.KindStory, 30*time.Millisecond, nil)
	collector.RecordOperation(workload.KindFrontpage, 10*time.Millisecond, nil)
	collector.RecordOperation(workload.KindSubmit, 40*time.Millisecond, errors.New("boom"))

	return Report{
		RunID:     "01HZY3J4W7QK8M2N5P6R9S0T1V",
		Target:    "http://localhost:3000/",
		Scale:     1,
		Issuers:   4,
		Warmup:    10 * time.Second,
		WarmupOps: 120,
		Stats:     collector.Stats(2 * time.Second),
		Error:     "submit: unexpected status",
	}
}

func TestPrintReportBasic(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleReport())

	output := buf.String()
	for _, want := range []string{
		"Run ID:            01HZY3J4W7QK8M2N5P6R9S0T1V",
		"Total Operations:  4",
		"Failed:            1",
		"Operation Breakdown:",
		"- story: total=2 (50.0%)",
		"Errors:",
		"Aborted: submit: unexpected status",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("report missing %q:\n%s", want, output)
		}
	}
}

func TestPrintReportOmitsEmptySections(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, Report{RunID: "x"})

	output := buf.String()
	for _, unwanted := range []string{"Operation Breakdown:", "Errors:", "Aborted:"} {
		if strings.Contains(output, unwanted) {
			t.Errorf("empty report should not contain %q", unwanted)
		}
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleReport()); err != nil {
		t.Fatalf("PrintJSONReport error = %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed["run_id"] != "01HZY3J4W7QK8M2N5P6R9S0T1V" {
		t.Errorf("run_id = %v", parsed["run_id"])
	}
	if parsed["warmup_ms"] != float64(10000) {
		t.Errorf("warmup_ms = %v", parsed["warmup_ms"])
	}
	stats, ok := parsed["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("stats missing: %v", parsed)
	}
	if stats["total"] != float64(4) {
		t.Errorf("stats.total = %v", stats["total"])
	}
	if _, ok := stats["p99_latency_ms"]; !ok {
		t.Error("inline latency fields missing from stats")
	}
	ops, ok := stats["operations"].([]interface{})
	if !ok || len(ops) != 3 {
		t.Fatalf("operations = %v", stats["operations"])
	}
}

func TestPrintYAMLReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintYAMLReport(&buf, sampleReport()); err != nil {
		t.Fatalf("PrintYAMLReport error = %v", err)
	}

	var parsed struct {
		RunID string `yaml:"run_id"`
		Stats struct {
			Total        int64   `yaml:"total"`
			P50LatencyMs float64 `yaml:"p50_latency_ms"`
			Operations   []struct {
				Operation string `yaml:"operation"`
				Total     int64  `yaml:"total"`
			} `yaml:"operations"`
		} `yaml:"stats"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, buf.String())
	}
	if parsed.RunID != "01HZY3J4W7QK8M2N5P6R9S0T1V" {
		t.Errorf("run_id = %q", parsed.RunID)
	}
	if parsed.Stats.Total != 4 || parsed.Stats.P50LatencyMs == 0 {
		t.Errorf("stats = %+v", parsed.Stats)
	}
	if len(parsed.Stats.Operations) != 3 || parsed.Stats.Operations[0].Operation != "story" {
		t.Errorf("operations = %+v", parsed.Stats.Operations)
	}
}
