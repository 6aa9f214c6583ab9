// Package lobsters executes benchmark operations against a lobste.rs
// deployment over HTTP.
package lobsters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/torosent/lobsters-trawler/internal/auth"
	"github.com/torosent/lobsters-trawler/internal/httpclient"
	"github.com/torosent/lobsters-trawler/internal/tracing"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

// Options configure the clients a Spawner produces.
type Options struct {
	Fixture auth.Fixture  // login credentials of the seeded accounts (zero value uses the defaults)
	Timeout time.Duration // per-request timeout (0 leaves deadlines to the transport)
	Tracing *tracing.Provider
}

// Spawner produces independent Clients rooted at one base endpoint. It is
// safe for concurrent use.
type Spawner struct {
	base *url.URL
	opt  Options
}

// NewSpawner validates prefix and the fixture and returns a Spawner. Both
// failures wrap ErrConfig.
func NewSpawner(prefix string, opt Options) (*Spawner, error) {
	base, err := httpclient.ParseBase(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if opt.Fixture == (auth.Fixture{}) {
		opt.Fixture = auth.DefaultFixture()
	}
	if err := opt.Fixture.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return &Spawner{base: base, opt: opt}, nil
}

// Spawn implements workload.Issuer.
func (s *Spawner) Spawn() workload.Client {
	return s.NewClient()
}

// NewClient returns a Client with its own connection pool and an empty
// session cache.
func (s *Spawner) NewClient() *Client {
	builder, err := httpclient.NewRequestBuilder(s.base)
	if err != nil {
		panic(err) // base is validated in NewSpawner
	}
	hc := httpclient.NewClient(s.opt.Timeout)
	scope := s.opt.Tracing.Scope()
	sessions, err := auth.NewFormLoginProvider(hc, builder, s.opt.Fixture, auth.WithTracing(scope))
	if err != nil {
		panic(err) // fixture is validated in NewSpawner
	}
	return &Client{
		http:     hc,
		builder:  builder,
		sessions: sessions,
		scope:    scope,
	}
}

// Client executes operations for one worker. It is not safe for concurrent
// use. After the first failure the Client is aborted and every later call
// returns that failure without touching the network.
type Client struct {
	http     *http.Client
	builder  *httpclient.RequestBuilder
	sessions *auth.FormLoginProvider
	scope    tracing.Scope
	aborted  error
}

// Handle executes req and validates the response status.
func (c *Client) Handle(ctx context.Context, req workload.Request) error {
	if c.aborted != nil {
		return c.aborted
	}
	if ctx == nil {
		ctx = context.Background()
	}

	op, ok, err := translate(req)
	if err != nil {
		return c.abort(err)
	}
	if !ok {
		return nil
	}

	ctx, span := c.scope.StartOperation(ctx, op.kind)
	status, err := c.do(ctx, op)
	tracing.End(span, status, err)
	if err != nil {
		return c.abort(err)
	}
	return nil
}

// Session returns the session of user, logging in on first use. A failed
// login aborts the client.
func (c *Client) Session(ctx context.Context, user workload.UserID) (auth.Session, error) {
	if c.aborted != nil {
		return auth.Session{}, c.aborted
	}
	s, err := c.sessions.Session(ctx, user)
	if err != nil {
		return auth.Session{}, c.abort(err)
	}
	return s, nil
}

// Sessions returns the number of cached sessions.
func (c *Client) Sessions() int { return c.sessions.Len() }

// Err returns the failure that aborted the client, if any.
func (c *Client) Err() error { return c.aborted }

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, op call) (int, error) {
	req, err := c.builder.Build(ctx, op.spec)
	if err != nil {
		return 0, fmt.Errorf("%s: build request: %w", op.kind, err)
	}
	if op.authed {
		if err := c.sessions.InjectHeader(ctx, op.user, req); err != nil {
			return 0, fmt.Errorf("%s: %w", op.kind, err)
		}
	}
	c.scope.Inject(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s %s: %w", op.kind, req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != op.expected {
		return resp.StatusCode, &DriftError{
			Operation: op.kind,
			Method:    req.Method,
			URL:       req.URL.String(),
			Expected:  op.expected,
			Got:       resp.StatusCode,
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) abort(err error) error {
	c.aborted = err
	return err
}
