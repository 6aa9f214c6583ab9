package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/torosent/lobsters-trawler/internal/auth"
)

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lobsters-trawler [flags] [URL-PREFIX]",
		Short:         "Benchmark a lobste.rs installation",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

func configureFlags(flags *pflag.FlagSet) {
	// Workload
	flags.Float64P("scale", "s", 1.0, "Scale factor for the workload")
	flags.IntP("issuers", "i", 4, "Number of issuers (one client each)")
	flags.DurationP("runtime", "r", 30*time.Second, "Measured benchmark runtime")
	flags.Duration("warmup", 10*time.Second, "Warmup time excluded from results")
	flags.Float64("rate", 0, "Target operations per second (0 derives it from --scale)")
	flags.Duration("timeout", 0, "Per-request timeout (0 means no client timeout)")
	flags.Int64("seed", 0, "Seed for the operation generator (0 derives one from the run ID)")

	// Fixture accounts
	flags.String("user-format", auth.DefaultUserFormat, "Login name format of seeded users (one %d verb)")
	flags.String("password", auth.DefaultPassword, "Password shared by seeded users")

	// Output
	flags.StringP("output", "o", string(OutputText), "Report format: text, json or yaml")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("log-errors", false, "Log each failed operation to stderr")
	flags.String("config", "", "Path to configuration file (JSON, YAML or TOML)")

	// Tracing
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (enables tracing)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: grpc or http")
	flags.String("tracing-service-name", "", "Service name reported to the collector")
	flags.Bool("tracing-insecure", false, "Disable TLS to the collector")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of operations to trace")
	flags.Bool("tracing-propagate", false, "Send W3C trace headers to the target")
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides copies every flag the user set onto cfg.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			if applyErr := apply(); applyErr != nil {
				err = fmt.Errorf("--%s: %w", name, applyErr)
			}
		}
	}

	set("scale", func() (e error) { cfg.Scale, e = fs.GetFloat64("scale"); return })
	set("issuers", func() (e error) { cfg.Issuers, e = fs.GetInt("issuers"); return })
	set("runtime", func() (e error) { cfg.Runtime, e = fs.GetDuration("runtime"); return })
	set("warmup", func() (e error) { cfg.Warmup, e = fs.GetDuration("warmup"); return })
	set("rate", func() (e error) { cfg.Rate, e = fs.GetFloat64("rate"); return })
	set("timeout", func() (e error) { cfg.Timeout, e = fs.GetDuration("timeout"); return })
	set("seed", func() (e error) { cfg.Seed, e = fs.GetInt64("seed"); return })
	set("user-format", func() (e error) { cfg.Auth.UserFormat, e = fs.GetString("user-format"); return })
	set("password", func() (e error) { cfg.Auth.Password, e = fs.GetString("password"); return })
	set("output", func() error {
		val, e := fs.GetString("output")
		cfg.Output = OutputFormat(strings.ToLower(strings.TrimSpace(val)))
		return e
	})
	set("log-level", func() (e error) { cfg.LogLevel, e = fs.GetString("log-level"); return })
	set("log-errors", func() (e error) { cfg.LogErrors, e = fs.GetBool("log-errors"); return })
	set("tracing-endpoint", func() (e error) { cfg.Tracing.Endpoint, e = fs.GetString("tracing-endpoint"); return })
	set("tracing-protocol", func() (e error) { cfg.Tracing.Protocol, e = fs.GetString("tracing-protocol"); return })
	set("tracing-service-name", func() (e error) {
		cfg.Tracing.ServiceName, e = fs.GetString("tracing-service-name")
		return
	})
	set("tracing-insecure", func() (e error) { cfg.Tracing.Insecure, e = fs.GetBool("tracing-insecure"); return })
	set("tracing-sample-rate", func() (e error) {
		cfg.Tracing.SampleRate, e = fs.GetFloat64("tracing-sample-rate")
		return
	})
	set("tracing-propagate", func() error {
		val, e := fs.GetBool("tracing-propagate")
		cfg.Tracing.Propagate = &val
		return e
	})

	return err
}
