package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the loader reads, e.g.
// LOBSTERS_ISSUERS or LOBSTERS_AUTH_PASSWORD.
const EnvPrefix = "LOBSTERS"

// envKeys are the settings that may come from the environment.
var envKeys = []string{
	"prefix", "scale", "issuers", "runtime", "warmup", "rate", "timeout",
	"output", "log_level", "log_errors", "seed",
	"auth.user_format", "auth.password",
	"tracing.endpoint", "tracing.protocol", "tracing.service_name",
	"tracing.insecure", "tracing.sample_rate", "tracing.propagate",
}

// otelEnv maps settings onto the standard OpenTelemetry variables consulted
// when the LOBSTERS_ form is unset.
var otelEnv = map[string]string{
	"tracing.endpoint":     "OTEL_EXPORTER_OTLP_ENDPOINT",
	"tracing.service_name": "OTEL_SERVICE_NAME",
}

// Loader handles loading configuration from files, the environment and
// command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load resolves a Config from defaults, then the config file, then LOBSTERS_*
// variables, then flags and the positional URL prefix.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}
	if err := cmd.Args(cmd, flagSet.Args()); err != nil {
		return nil, err
	}

	configPath := flagSet.Lookup("config").Value.String()
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	replacer := strings.NewReplacer(".", "_", "-", "_")
	v.SetEnvKeyReplacer(replacer)
	for _, key := range envKeys {
		names := []string{key}
		if alias, ok := otelEnv[key]; ok {
			names = append(names, EnvPrefix+"_"+strings.ToUpper(replacer.Replace(key)), alias)
		}
		if err := v.BindEnv(names...); err != nil {
			return nil, err
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, v.AllSettings()); err != nil {
		return nil, err
	}
	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		cfg.Prefix = rest[0]
	}

	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	cfg.Output = OutputFormat(strings.ToLower(string(cfg.Output)))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	return cfg, nil
}

// applyConfigSettings applies file and environment settings to cfg.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "prefix", "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("prefix: %w", err)
		}
		cfg.Prefix = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "scale"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("scale: %w", err)
		}
		cfg.Scale = val
	}

	if raw, ok := lookupSetting(settings, "issuers"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("issuers: %w", err)
		}
		cfg.Issuers = val
	}

	if raw, ok := lookupSetting(settings, "runtime"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("runtime: %w", err)
		}
		cfg.Runtime = dur
	}

	if raw, ok := lookupSetting(settings, "warmup"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("warmup: %w", err)
		}
		cfg.Warmup = dur
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output: %w", err)
		}
		cfg.Output = OutputFormat(strings.TrimSpace(val))
	}

	if raw, ok := lookupSetting(settings, "loglevel", "log_level", "log-level"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("logLevel: %w", err)
		}
		cfg.LogLevel = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = val
	}

	if raw, ok := lookupSetting(settings, "auth"); ok {
		if err := applyAuthSettings(&cfg.Auth, raw); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func applyAuthSettings(a *AuthConfig, value interface{}) error {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(settings, "userformat", "user_format", "user-format"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("userFormat: %w", err)
		}
		a.UserFormat = val
	}
	if raw, ok := lookupSetting(settings, "password"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("password: %w", err)
		}
		a.Password = val
	}
	return nil
}

func applyTracingSettings(t *TracingConfig, value interface{}) error {
	settings, err := toStringKeyMap(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		t.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		t.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("serviceName: %w", err)
		}
		t.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		t.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sampleRate: %w", err)
		}
		t.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		t.Propagate = &val
	}
	return nil
}
