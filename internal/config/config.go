package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/torosent/lobsters-trawler/internal/auth"
)

// DefaultPrefix is the target used when no prefix argument is given.
const DefaultPrefix = "http://localhost:3000"

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

type Config struct {
	Prefix     string        `mapstructure:"prefix"`
	Scale      float64       `mapstructure:"scale"`
	Issuers    int           `mapstructure:"issuers"`
	Runtime    time.Duration `mapstructure:"runtime"`
	Warmup     time.Duration `mapstructure:"warmup"`
	Rate       float64       `mapstructure:"rate"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Output     OutputFormat  `mapstructure:"output"`
	LogLevel   string        `mapstructure:"log_level"`
	LogErrors  bool          `mapstructure:"log_errors"`
	Seed       int64         `mapstructure:"seed"`
	Auth       AuthConfig    `mapstructure:"auth"`
	Tracing    TracingConfig `mapstructure:"tracing"`
	ConfigFile string        `mapstructure:"-"`
}

// AuthConfig describes the seeded accounts used for form login.
type AuthConfig struct {
	UserFormat string `mapstructure:"user_format"`
	Password   string `mapstructure:"password"`
}

// Fixture converts the settings into login credentials.
func (a AuthConfig) Fixture() auth.Fixture {
	return auth.Fixture{UserFormat: a.UserFormat, Password: a.Password}
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   *bool   `mapstructure:"propagate"` // nil follows Enabled
}

// Enabled reports whether an OTLP endpoint is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// ShouldPropagate reports whether W3C trace headers go out with requests.
func (t TracingConfig) ShouldPropagate() bool {
	if t.Propagate != nil {
		return *t.Propagate
	}
	return t.Enabled()
}

// Default returns the configuration used before files, env and flags apply.
func Default() *Config {
	return &Config{
		Prefix:   DefaultPrefix,
		Scale:    1.0,
		Issuers:  4,
		Runtime:  30 * time.Second,
		Warmup:   10 * time.Second,
		Output:   OutputText,
		LogLevel: "info",
		Auth: AuthConfig{
			UserFormat: auth.DefaultUserFormat,
			Password:   auth.DefaultPassword,
		},
		Tracing: TracingConfig{
			Protocol:   "grpc",
			SampleRate: 1.0,
		},
	}
}

// EffectiveRate returns the configured rate, or the rate implied by Scale
// when none is set.
func (c Config) EffectiveRate(fromScale func(float64) float64) float64 {
	if c.Rate > 0 || fromScale == nil {
		return c.Rate
	}
	return fromScale(c.Scale)
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Prefix) == "" {
		issues = append(issues, "prefix is required (use --help for usage information)")
	} else if u, err := url.Parse(c.Prefix); err != nil || !u.IsAbs() || u.Host == "" {
		issues = append(issues, fmt.Sprintf("prefix %q must be an absolute http(s) URL", c.Prefix))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		issues = append(issues, fmt.Sprintf("prefix scheme %q is not supported", u.Scheme))
	}

	if c.Scale <= 0 {
		issues = append(issues, "scale must be > 0")
	}
	if c.Issuers < 1 {
		issues = append(issues, "issuers must be >= 1")
	}
	if c.Runtime <= 0 {
		issues = append(issues, "runtime must be > 0")
	}
	if c.Warmup < 0 {
		issues = append(issues, "warmup must be >= 0")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}

	switch c.Output {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		issues = append(issues, fmt.Sprintf("output %q must be one of text, json, yaml", c.Output))
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log level %q must be one of debug, info, warn, error", c.LogLevel))
	}

	if err := c.Auth.Fixture().Validate(); err != nil {
		issues = append(issues, fmt.Sprintf("auth: %v", err))
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing protocol %q must be grpc or http", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
