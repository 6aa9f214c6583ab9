// Package runner drives a benchmark against a workload.Issuer.
//
// Each of the configured issuers spawns one client up front and pulls
// operations from its own Source. A shared scheduler paces dispatch with a
// golang.org/x/time/rate limiter:
//
//	r := runner.New(runner.Options{
//		Issuers:       4,
//		Warmup:        10 * time.Second,
//		Duration:      30 * time.Second,
//		RatePerSecond: 50,
//		Issuer:        spawner,
//		NewSource:     func(w int) runner.Source { return workload.NewGenerator(pop, w, seed) },
//		Recorder:      collector,
//		OnMeasure:     collector.Start,
//	})
//	result := r.Run(ctx)
//
// Operations that start during the warmup window are executed but not
// recorded. The run stops at the first failed operation: every worker is
// cancelled and [Result.Err] holds the failure. Nothing is retried.
//
// # Middleware
//
// [WithLogging] reports each failure to a [FailureLogger] before it
// propagates.
package runner
