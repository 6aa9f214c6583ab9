package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/torosent/lobsters-trawler/internal/metrics"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestProgressLineShowsTopOperation(t *testing.T) {
	collector := metrics.NewCollector()
	for i := 0; i < 3; i++ {
		collector.RecordOperation(workload.KindStory, 10*time.Millisecond, nil)
	}
	collector.RecordOperation(workload.KindRecent, 10*time.Millisecond, nil)

	line := progressLine(collector.Stats(time.Second))
	if !strings.Contains(line, "Operations: 4") {
		t.Errorf("line %q missing operation count", line)
	}
	if !strings.Contains(line, "Top: story (75%)") {
		t.Errorf("line %q missing top operation", line)
	}
}

func TestProgressReporterStopWithoutStart(t *testing.T) {
	reporter := NewProgressReporter(metrics.NewCollector(), 100*time.Millisecond, nil)
	if reporter == nil {
		t.Fatal("Expected non-nil reporter")
	}
	reporter.Stop()
}

func TestProgressReporterWrites(t *testing.T) {
	collector := metrics.NewCollector()
	collector.Start()
	collector.RecordOperation(workload.KindFrontpage, 50*time.Millisecond, nil)

	var buf syncBuffer
	reporter := NewProgressReporter(collector, 20*time.Millisecond, &buf)
	reporter.Start()
	reporter.Start()

	time.Sleep(100 * time.Millisecond)
	reporter.Stop()
	reporter.Stop()

	if !strings.Contains(buf.String(), "Operations:") {
		t.Error("Expected 'Operations:' in progress output")
	}
}
