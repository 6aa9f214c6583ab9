package runner

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

// ErrNoIssuer is returned when Options lacks an Issuer or a NewSource.
var ErrNoIssuer = errors.New("runner: issuer and source are required")

// Result captures execution summary.
type Result struct {
	Total    int64         // measured operations
	Errors   int64         // measured failures
	Warmup   int64         // operations completed during warmup
	Duration time.Duration // measured wall time
	Err      error         // first failure; it stopped the run
}

// Runner coordinates concurrent execution with rate limiting. Every worker
// drives its own client; the first failure cancels all of them.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

func (r *Runner) Run(ctx context.Context) Result {
	if r.opt.Issuer == nil || r.opt.NewSource == nil {
		return Result{Err: ErrNoIssuer}
	}

	clients := make([]workload.Client, r.opt.Issuers)
	sources := make([]Source, r.opt.Issuers)
	for i := range clients {
		c := r.opt.Issuer.Spawn()
		if r.opt.Wrap != nil {
			c = r.opt.Wrap(c)
		}
		clients[i] = c
		sources[i] = r.opt.NewSource(i)
	}
	defer func() {
		for _, c := range clients {
			_ = closeClient(c)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.opt.Duration > 0 {
		deadlineCtx, deadlineCancel := context.WithTimeout(ctx, r.opt.Warmup+r.opt.Duration)
		ctx = deadlineCtx
		defer deadlineCancel()
	}

	var (
		dispatched int64
		measured   int64
		warm       int64
		errs       int64
		measuring  atomic.Bool
		firstErr   error
		errOnce    sync.Once
		startMu    sync.Mutex
		measureAt  time.Time
	)

	beginMeasuring := func() {
		startMu.Lock()
		measureAt = time.Now()
		startMu.Unlock()
		measuring.Store(true)
		if r.opt.OnMeasure != nil {
			r.opt.OnMeasure()
		}
	}
	if r.opt.Warmup > 0 {
		timer := time.AfterFunc(r.opt.Warmup, beginMeasuring)
		defer timer.Stop()
	} else {
		beginMeasuring()
	}

	limiter := r.opt.LimiterFactory(r.opt.RatePerSecond)
	permits := make(chan struct{}, r.opt.Issuers)

	// Scheduler: serializes rate limiting to avoid burst overshoot across workers.
	go func() {
		defer close(permits)
		for {
			if ctx.Err() != nil {
				return
			}
			if r.opt.TotalRequests > 0 && atomic.LoadInt64(&dispatched) >= int64(r.opt.TotalRequests) {
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			atomic.AddInt64(&dispatched, 1)
			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(r.opt.Issuers)
	for i := 0; i < r.opt.Issuers; i++ {
		go func(client workload.Client, src Source) {
			defer wg.Done()
			for range permits {
				if ctx.Err() != nil {
					return
				}
				req := src.Next()
				inWindow := measuring.Load()
				start := time.Now()
				err := client.Handle(ctx, req)
				latency := time.Since(start)

				if err != nil && ctx.Err() != nil {
					// Cut short by the end of the run or a failure elsewhere.
					return
				}
				if inWindow {
					atomic.AddInt64(&measured, 1)
					if r.opt.Recorder != nil {
						r.opt.Recorder.RecordOperation(req.Kind(), latency, err)
					}
				} else {
					atomic.AddInt64(&warm, 1)
				}
				if err != nil {
					if inWindow {
						atomic.AddInt64(&errs, 1)
					}
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
			}
		}(clients[i], sources[i])
	}
	wg.Wait()

	startMu.Lock()
	var elapsed time.Duration
	if !measureAt.IsZero() {
		elapsed = time.Since(measureAt)
	}
	startMu.Unlock()

	return Result{
		Total:    atomic.LoadInt64(&measured),
		Errors:   atomic.LoadInt64(&errs),
		Warmup:   atomic.LoadInt64(&warm),
		Duration: elapsed,
		Err:      firstErr,
	}
}

func closeClient(c workload.Client) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
