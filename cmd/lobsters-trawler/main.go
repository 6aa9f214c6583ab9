package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/torosent/lobsters-trawler/internal/config"
	"github.com/torosent/lobsters-trawler/internal/lobsters"
	"github.com/torosent/lobsters-trawler/internal/metrics"
	"github.com/torosent/lobsters-trawler/internal/output"
	"github.com/torosent/lobsters-trawler/internal/runner"
	"github.com/torosent/lobsters-trawler/internal/tracing"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

type slogFailureLogger struct {
	logger *slog.Logger
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.LogLevel)
	id := ulid.Make()
	runID := id.String()
	logger = logger.With("run_id", runID)
	seed := cfg.Seed
	if seed == 0 {
		seed = seedFromRunID(id)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tp, err := tracing.Init(ctx, tracingOptions(cfg.Tracing), tracing.Run{
		ID:      runID,
		Service: cfg.Tracing.ServiceName,
		Target:  cfg.Prefix,
		Scale:   cfg.Scale,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	spawner, err := lobsters.NewSpawner(cfg.Prefix, lobsters.Options{
		Fixture: cfg.Auth.Fixture(),
		Timeout: cfg.Timeout,
		Tracing: tp,
	})
	if err != nil {
		return err
	}

	pop := workload.PopulationFor(cfg.Scale)
	rps := cfg.EffectiveRate(workload.RateFor)
	collector := metrics.NewCollector()

	opts := runner.Options{
		Issuers:       cfg.Issuers,
		Warmup:        cfg.Warmup,
		Duration:      cfg.Runtime,
		RatePerSecond: rps,
		Issuer:        spawner,
		NewSource: func(worker int) runner.Source {
			return workload.NewGenerator(pop, worker, seed)
		},
		Recorder:  collector,
		OnMeasure: collector.Start,
	}
	if cfg.LogErrors {
		failures := &slogFailureLogger{logger: logger}
		opts.Wrap = func(c workload.Client) workload.Client {
			return runner.WithLogging(c, failures)
		}
	}

	logger.Info("starting benchmark",
		"target", cfg.Prefix,
		"scale", cfg.Scale,
		"issuers", cfg.Issuers,
		"rate", rps,
		"warmup", cfg.Warmup,
		"runtime", cfg.Runtime,
		"users", pop.Users,
		"stories", pop.Stories,
		"comments", pop.Comments,
		"seed", seed,
	)

	var progress *output.ProgressReporter
	if cfg.Output == config.OutputText {
		progress = output.NewProgressReporter(collector, progressInterval, stderr)
		progress.Start()
	}
	result := runner.New(opts).Run(ctx)
	if progress != nil {
		progress.Stop()
		fmt.Fprintln(stderr)
	}

	report := output.Report{
		RunID:     runID,
		Target:    cfg.Prefix,
		Scale:     cfg.Scale,
		Issuers:   cfg.Issuers,
		Seed:      seed,
		Warmup:    cfg.Warmup,
		WarmupOps: result.Warmup,
		Stats:     collector.Stats(result.Duration),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}

	switch cfg.Output {
	case config.OutputJSON:
		err = output.PrintJSONReport(stdout, report)
	case config.OutputYAML:
		err = output.PrintYAMLReport(stdout, report)
	default:
		output.PrintReport(stdout, report)
	}
	if err != nil {
		return err
	}

	if result.Err != nil {
		logger.Error("benchmark aborted", "error", result.Err)
		return fmt.Errorf("benchmark aborted: %w", result.Err)
	}
	logger.Info("benchmark finished", "operations", result.Total, "duration", result.Duration)
	return nil
}

// seedFromRunID derives a generator seed from the random part of id.
func seedFromRunID(id ulid.ULID) int64 {
	entropy := id.Entropy()
	seed := int64(binary.BigEndian.Uint64(entropy[len(entropy)-8:]))
	if seed == 0 {
		seed = int64(id.Time())
	}
	return seed
}

func tracingOptions(t config.TracingConfig) tracing.Options {
	return tracing.Options{
		Endpoint:   t.Endpoint,
		Protocol:   t.Protocol,
		Insecure:   t.Insecure,
		SampleRate: t.SampleRate,
		Propagate:  t.ShouldPropagate(),
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func (l *slogFailureLogger) LogFailure(req workload.Request, err error) {
	if err == nil || req == nil {
		return
	}
	attrs := []any{"operation", req.Kind(), "error", err}
	var drift *lobsters.DriftError
	if errors.As(err, &drift) {
		attrs = append(attrs, "expected", drift.Expected, "got", drift.Got, "url", drift.URL)
	}
	l.logger.Warn("operation failed", attrs...)
}
