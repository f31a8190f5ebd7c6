package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/dashboard"
	"github.com/tokensweep/tokensweep/internal/metrics"
	"github.com/tokensweep/tokensweep/internal/output"
	"github.com/tokensweep/tokensweep/internal/preflight"
	"github.com/tokensweep/tokensweep/internal/probe"
	"github.com/tokensweep/tokensweep/internal/prompts"
	"github.com/tokensweep/tokensweep/internal/sweep"
	"github.com/tokensweep/tokensweep/internal/tracing"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

// stderrFailureSink logs failed probes to stderr in JSON-output mode, where
// stdout must stay machine-readable.
type stderrFailureSink struct {
	mu sync.Mutex
}

func (s *stderrFailureSink) LevelStarted(int, int, int)         {}
func (s *stderrFailureSink) LevelCompleted(metrics.LevelResult) {}

func (s *stderrFailureSink) ProbeFailed(level int, outcome metrics.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[tokensweep] probe failed at level %d: %s\n", level, outcome)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
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

	if cfg.SaveConfig != "" {
		if err := cfg.Save(cfg.SaveConfig); err != nil {
			return err
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "Configuration written: %s\n", cfg.SaveConfig)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	source, err := newPromptSource(cfg)
	if err != nil {
		return err
	}

	executor, err := probe.New(&cfg.Profile, provider.Tracer())
	if err != nil {
		return err
	}

	if !cfg.SkipPreflight {
		report, err := preflight.Run(ctx, &cfg.Profile, provider.Tracer())
		if err != nil {
			return fmt.Errorf("preflight: %w", err)
		}
		if !cfg.JSONOutput {
			fmt.Fprintf(os.Stdout, "Preflight: %s reachable (dial %s), first token in %s\n",
				report.Address,
				report.DialElapsed.Round(time.Millisecond),
				report.Probe.FirstToken.Round(time.Millisecond),
			)
		}
	}

	prober := sweep.ProberFunc(executor.Run)
	if cfg.Stream {
		prober = sweep.ProberFunc(executor.RunStream)
	}

	var (
		sink sweep.EventSink
		dash *dashboard.Dashboard
	)
	switch {
	case cfg.Dashboard:
		dash, err = dashboard.New(cfg, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		sink = dash
	case cfg.JSONOutput:
		if cfg.LogErrors {
			sink = &stderrFailureSink{}
		}
	default:
		sink = output.NewConsoleReporter(os.Stdout, progressInterval, cfg.LogErrors)
	}

	harness := sweep.New(prober, source, sink)

	sweepCtx, span := tracing.StartSweepSpan(ctx, provider.Tracer(), string(cfg.Profile.Flavor), cfg.Profile.Model)
	results, sweepErr := harness.Run(sweepCtx, cfg.Levels, cfg.Cooldown)
	tracing.EndSpan(span, sweepErr)

	if dash != nil {
		dash.Stop()
	}

	summary := metrics.Summarize(results)
	report := output.NewReport(&cfg.Profile, cfg.Stream, summary)

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	if len(results) > 0 {
		if err := writeArtifacts(cfg, report); err != nil {
			return err
		}
	}

	if sweepErr != nil {
		return sweepErr
	}
	if summary.TotalFailures > 0 {
		return fmt.Errorf("%d probes failed", summary.TotalFailures)
	}
	return nil
}

// newPromptSource builds the prompt pool: a JSON prompt file when given,
// otherwise the built-in prompts. The seed pins the pick order.
func newPromptSource(cfg *config.Config) (prompts.Source, error) {
	var list []string
	if cfg.PromptsFile != "" {
		loaded, err := prompts.LoadJSON(cfg.PromptsFile)
		if err != nil {
			return nil, err
		}
		list = loaded
	}
	return prompts.NewPool(list, cfg.Seed), nil
}

// writeArtifacts persists the text, JSON, and HTML reports. Paths go to
// stderr in JSON-output mode so stdout stays machine-readable.
func writeArtifacts(cfg *config.Config, report output.Report) error {
	writer, err := output.NewArtifactWriter(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer writer.Close()

	dest := os.Stdout
	if cfg.JSONOutput {
		dest = os.Stderr
	}

	for _, write := range []func(output.Report) (string, error){
		writer.WriteText,
		writer.WriteJSON,
		writer.WriteHTML,
	} {
		path, err := write(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(dest, "Report written: %s\n", path)
	}
	return nil
}
