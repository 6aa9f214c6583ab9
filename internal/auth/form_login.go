package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/torosent/lobsters-trawler/internal/httpclient"
	"github.com/torosent/lobsters-trawler/internal/tracing"
	"github.com/torosent/lobsters-trawler/internal/workload"
)

// ErrLoginRejected reports that the target refused a fixture login.
var ErrLoginRejected = errors.New("login rejected")

// LoginError describes a failed fixture login.
type LoginError struct {
	User       workload.UserID
	Username   string
	StatusCode int
	Err        error
}

func (e *LoginError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("log in as %s (user %d): status %d, want %d; make sure to create all the test users",
			e.Username, e.User, e.StatusCode, http.StatusFound)
	}
	return fmt.Sprintf("log in as %s (user %d): %v", e.Username, e.User, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

// Is matches ErrLoginRejected when the target answered but did not grant a
// session. Transport failures do not match.
func (e *LoginError) Is(target error) bool {
	if target != ErrLoginRejected {
		return false
	}
	return e.StatusCode != 0 || errors.Is(e.Err, errNoSessionCookies)
}

// FormLoginProvider logs synthetic users in through the lobste.rs login form
// and memoizes the resulting sessions. Sessions are never refreshed.
//
// A FormLoginProvider belongs to a single client and is not safe for
// concurrent use.
type FormLoginProvider struct {
	client   *http.Client
	builder  *httpclient.RequestBuilder
	fixture  Fixture
	sessions map[workload.UserID]Session
	logins   int
	scope    tracing.Scope
}

var _ Provider = (*FormLoginProvider)(nil)

// LoginOption customizes a FormLoginProvider.
type LoginOption func(*FormLoginProvider)

// WithTracing traces each login as a child of the operation that needed it
// and forwards trace headers when scope propagates.
func WithTracing(scope tracing.Scope) LoginOption {
	return func(p *FormLoginProvider) { p.scope = scope }
}

func NewFormLoginProvider(client *http.Client, builder *httpclient.RequestBuilder, fixture Fixture, opts ...LoginOption) (*FormLoginProvider, error) {
	if client == nil {
		return nil, errors.New("http client cannot be nil")
	}
	if builder == nil {
		return nil, errors.New("request builder cannot be nil")
	}
	if err := fixture.Validate(); err != nil {
		return nil, err
	}
	p := &FormLoginProvider{
		client:   client,
		builder:  builder,
		fixture:  fixture,
		sessions: make(map[workload.UserID]Session),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Session returns the cached session for user or logs in to create it.
func (p *FormLoginProvider) Session(ctx context.Context, user workload.UserID) (Session, error) {
	if s, ok := p.sessions[user]; ok {
		return s, nil
	}
	s, err := p.login(ctx, user)
	if err != nil {
		return Session{}, err
	}
	p.sessions[user] = s
	return s, nil
}

// InjectHeader attaches the session of user to req.
func (p *FormLoginProvider) InjectHeader(ctx context.Context, user workload.UserID, req *http.Request) error {
	s, err := p.Session(ctx, user)
	if err != nil {
		return err
	}
	s.Apply(req)
	return nil
}

// Len returns the number of cached sessions.
func (p *FormLoginProvider) Len() int { return len(p.sessions) }

// Logins returns the number of login requests issued.
func (p *FormLoginProvider) Logins() int { return p.logins }

func (p *FormLoginProvider) login(ctx context.Context, user workload.UserID) (Session, error) {
	ctx, span := p.scope.StartLogin(ctx, user)
	s, status, err := p.postLogin(ctx, user)
	tracing.End(span, status, err)
	return s, err
}

func (p *FormLoginProvider) postLogin(ctx context.Context, user workload.UserID) (Session, int, error) {
	creds := p.fixture.Credentials(user)

	form := &httpclient.Form{}
	form.Add("utf8", "✓")
	form.Add("email", creds.Username)
	form.Add("password", creds.Password)
	form.Add("commit", "Login")
	form.Add("referer", p.builder.Base().String())

	req, err := p.builder.Build(ctx, httpclient.Spec{
		Method: http.MethodPost,
		Path:   "login",
		Form:   form,
	})
	if err != nil {
		return Session{}, 0, fmt.Errorf("build login request: %w", err)
	}
	p.scope.Inject(ctx, req)

	p.logins++
	resp, err := p.client.Do(req)
	if err != nil {
		return Session{}, 0, &LoginError{User: user, Username: creds.Username, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return Session{}, resp.StatusCode, &LoginError{User: user, Username: creds.Username, StatusCode: resp.StatusCode}
	}

	s, err := sessionFromResponse(resp)
	if err != nil {
		return Session{}, resp.StatusCode, &LoginError{User: user, Username: creds.Username, Err: err}
	}
	return s, resp.StatusCode, nil
}
