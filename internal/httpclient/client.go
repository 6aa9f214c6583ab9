package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Spec describes one outbound request relative to a base endpoint.
type Spec struct {
	Method string
	// Path is resolved against the base endpoint; empty means the base itself.
	Path   string
	Header http.Header
	// Form is encoded as the request body when non-nil.
	Form *Form
}

// RequestBuilder turns request specs into *http.Request values rooted at a
// fixed base endpoint.
type RequestBuilder struct {
	base *url.URL
}

// ParseBase validates raw as an absolute http(s) URL. An empty path is
// normalized to "/" so relative references resolve beneath the host root.
func ParseBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func NewRequestBuilder(base *url.URL) (*RequestBuilder, error) {
	if base == nil {
		return nil, errors.New("base URL cannot be nil")
	}
	clone := *base
	return &RequestBuilder{base: &clone}, nil
}

// Base returns a copy of the base endpoint.
func (b *RequestBuilder) Base() *url.URL {
	clone := *b.base
	return &clone
}

// Resolve returns the absolute URL for path.
func (b *RequestBuilder) Resolve(path string) *url.URL {
	if path == "" {
		return b.Base()
	}
	return b.base.ResolveReference(&url.URL{Path: path})
}

func (b *RequestBuilder) Build(ctx context.Context, spec Spec) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}

	body := NewBodySource(spec.Form)
	reader, err := body.NewReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, b.Resolve(spec.Path).String(), reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	for key, values := range spec.Header {
		for _, val := range values {
			if strings.ContainsAny(val, "\r\n") {
				return nil, fmt.Errorf("invalid header value for %s", key)
			}
			req.Header.Add(key, val)
		}
	}
	if spec.Form != nil {
		req.Header.Set("Content-Type", FormContentType)
	}

	if length, ok := body.ContentLength(); ok {
		req.ContentLength = length
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return body.NewReader()
	}

	return req, nil
}

// NewClient returns an HTTP client for load generation. Redirects are never
// followed so callers observe 3xx responses directly. A zero timeout leaves
// deadlines to the transport.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
