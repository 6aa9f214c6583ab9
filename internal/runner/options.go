package runner

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

// Source produces the operation stream of one worker.
type Source interface {
	Next() workload.Request
}

// Recorder receives the outcome of every measured operation.
type Recorder interface {
	RecordOperation(kind workload.Kind, latency time.Duration, err error)
}

// Options configure the Runner.
type Options struct {
	Issuers        int                                   // workers, each with its own spawned client
	TotalRequests  int                                   // operations to dispatch (0 means until the run ends)
	Warmup         time.Duration                         // leading window whose operations are not recorded
	Duration       time.Duration                         // measured window after warmup (0 means no cap)
	RatePerSecond  float64                               // aggregate pacing (0 means unlimited)
	Issuer         workload.Issuer                       // client factory (required)
	NewSource      func(worker int) Source               // per-worker operation stream (required)
	Wrap           func(workload.Client) workload.Client // optional middleware, e.g. WithLogging
	Recorder       Recorder                              // optional
	OnMeasure      func()                                // optional; called once when warmup ends
	LimiterFactory func(rps float64) *rate.Limiter       // optional injection for tests
}

func (o *Options) normalize() {
	if o.Issuers <= 0 {
		o.Issuers = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.Warmup < 0 {
		o.Warmup = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps float64) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equals one second of operations.
			burst := int(math.Ceil(rps))
			return rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}
