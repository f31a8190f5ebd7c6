package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tokensweep",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Endpoint profile flags
	flags.String("target", "", "Target endpoint URL (full path, e.g. http://host:8000/v1/chat/completions)")
	flags.String("flavor", string(FlavorOpenAIChat), "Endpoint flavor: openai-chat, compat-chat, vllm-completion or ollama-generate")
	flags.StringP("model", "m", "", "Model identifier to benchmark")
	flags.String("api-key", "", "API key for credentialed flavors")
	flags.Int("max-tokens", 2000, "Maximum tokens to request per probe")
	flags.Float64("temperature", 0.7, "Sampling temperature passed to the endpoint")
	flags.Duration("timeout", 60*time.Second, "Per-probe timeout")

	// Sweep flags
	flags.StringP("levels", "l", "", "Comma-separated concurrency levels (default 1,2,4,8,10)")
	flags.Duration("cooldown", 2*time.Second, "Pause between concurrency levels")
	flags.Bool("stream", false, "Use streaming probes and measure time-to-first-token")
	flags.String("prompts-file", "", "Path to a JSON array of prompts (default: built-in pool)")
	flags.Int64("seed", 0, "Seed for prompt selection (0 = time-based)")
	flags.Bool("skip-preflight", false, "Skip the endpoint self-check before the sweep")

	// Output flags
	flags.StringP("output-dir", "o", "outputs", "Directory for report artifacts")
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.Bool("dashboard", false, "Show live terminal dashboard during the sweep")
	flags.Bool("log-errors", false, "Log each failed probe to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.String("save-config", "", "Write the effective configuration to a YAML file before the sweep")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP collector endpoint for trace export")
	flags.String("otlp-protocol", "grpc", "OTLP transport protocol: grpc or http")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.Bool("otlp-insecure", false, "Disable TLS for OTLP export")

	flags.BoolP("help", "h", false, "Show help")
}

// applyFlagOverrides copies explicitly set flag values onto the config,
// overriding anything loaded from a config file.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var outerErr error

	stringFlag := func(name string, apply func(string)) {
		if outerErr != nil || !flags.Changed(name) {
			return
		}
		val, err := flags.GetString(name)
		if err != nil {
			outerErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		apply(val)
	}
	intFlag := func(name string, apply func(int)) {
		if outerErr != nil || !flags.Changed(name) {
			return
		}
		val, err := flags.GetInt(name)
		if err != nil {
			outerErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		apply(val)
	}
	boolFlag := func(name string, apply func(bool)) {
		if outerErr != nil || !flags.Changed(name) {
			return
		}
		val, err := flags.GetBool(name)
		if err != nil {
			outerErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		apply(val)
	}
	durationFlag := func(name string, apply func(time.Duration)) {
		if outerErr != nil || !flags.Changed(name) {
			return
		}
		val, err := flags.GetDuration(name)
		if err != nil {
			outerErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		apply(val)
	}
	float64Flag := func(name string, apply func(float64)) {
		if outerErr != nil || !flags.Changed(name) {
			return
		}
		val, err := flags.GetFloat64(name)
		if err != nil {
			outerErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		apply(val)
	}

	stringFlag("target", func(v string) { cfg.Profile.TargetURL = v })
	stringFlag("flavor", func(v string) { cfg.Profile.Flavor = Flavor(v) })
	stringFlag("model", func(v string) { cfg.Profile.Model = v })
	stringFlag("api-key", func(v string) { cfg.Profile.APIKey = v })
	intFlag("max-tokens", func(v int) { cfg.Profile.MaxTokens = v })
	float64Flag("temperature", func(v float64) { cfg.Profile.Temperature = v })
	durationFlag("timeout", func(v time.Duration) { cfg.Profile.Timeout = v })

	stringFlag("levels", func(v string) {
		levels, err := ParseLevels(v)
		if err != nil {
			outerErr = err
			return
		}
		cfg.Levels = levels
	})
	durationFlag("cooldown", func(v time.Duration) { cfg.Cooldown = v })
	boolFlag("stream", func(v bool) { cfg.Stream = v })
	stringFlag("prompts-file", func(v string) { cfg.PromptsFile = v })
	boolFlag("skip-preflight", func(v bool) { cfg.SkipPreflight = v })
	if flags.Changed("seed") {
		val, err := flags.GetInt64("seed")
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = val
	}

	stringFlag("save-config", func(v string) { cfg.SaveConfig = v })
	stringFlag("output-dir", func(v string) { cfg.OutputDir = v })
	boolFlag("json-output", func(v bool) { cfg.JSONOutput = v })
	boolFlag("dashboard", func(v bool) { cfg.Dashboard = v })
	boolFlag("log-errors", func(v bool) { cfg.LogErrors = v })

	stringFlag("otlp-endpoint", func(v string) { cfg.Tracing.Endpoint = v })
	stringFlag("otlp-protocol", func(v string) { cfg.Tracing.Protocol = v })
	float64Flag("trace-sample-rate", func(v float64) { cfg.Tracing.SampleRate = v })
	boolFlag("otlp-insecure", func(v bool) { cfg.Tracing.Insecure = v })

	return outerErr
}

func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "tokensweep - token throughput benchmark for text-generation endpoints")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  tokensweep --target URL --model NAME [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	fmt.Fprint(out, cmd.Flags().FlagUsages())
}
