package runner

import (
	"context"

	"github.com/torosent/lobsters-trawler/internal/workload"
)

// FailureLogger logs failed operations.
type FailureLogger interface {
	LogFailure(req workload.Request, err error)
}

// loggingClient wraps a Client with failure logging.
type loggingClient struct {
	inner  workload.Client
	logger FailureLogger
}

// WithLogging wraps a Client to log failures.
func WithLogging(c workload.Client, logger FailureLogger) workload.Client {
	if logger == nil {
		return c
	}
	return &loggingClient{inner: c, logger: logger}
}

// Handle forwards req and logs its failure. Operations cut short because the
// run already ended are not logged.
func (l *loggingClient) Handle(ctx context.Context, req workload.Request) error {
	err := l.inner.Handle(ctx, req)
	if err != nil && ctx.Err() == nil {
		l.logger.LogFailure(req, err)
	}
	return err
}

// Close closes the wrapped client when it supports closing.
func (l *loggingClient) Close() error {
	return closeClient(l.inner)
}
