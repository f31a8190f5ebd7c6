// Package sweep coordinates batches of concurrent probes across a sweep of
// concurrency levels.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tokensweep/tokensweep/internal/metrics"
	"github.com/tokensweep/tokensweep/internal/prompts"
)

// Prober runs one probe and always settles into an outcome value.
type Prober interface {
	Run(ctx context.Context, prompt string) metrics.Outcome
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, prompt string) metrics.Outcome

func (f ProberFunc) Run(ctx context.Context, prompt string) metrics.Outcome {
	return f(ctx, prompt)
}

// LevelFailedError signals that every probe at a level failed. The root
// cause is ambiguous (credentials, network, or service down), so the sweep
// must stop instead of computing misleading rates for later levels.
type LevelFailedError struct {
	Level   int
	Reasons map[metrics.FailureReason]int
}

func (e *LevelFailedError) Error() string {
	return fmt.Sprintf("all %d probes failed at concurrency level %d", e.Level, e.Level)
}

// Harness fires fixed-size batches of concurrent probes and folds their
// outcomes into level results.
type Harness struct {
	prober Prober
	source prompts.Source
	sink   EventSink
}

// New builds a harness. A nil sink discards events.
func New(prober Prober, source prompts.Source, sink EventSink) *Harness {
	if sink == nil {
		sink = NopSink{}
	}
	return &Harness{prober: prober, source: source, sink: sink}
}

// RunLevel launches exactly level concurrent probes against independently
// drawn prompts and waits for every one to settle. Each goroutine writes
// only its own outcome slot; the fold happens after the barrier, so no lock
// guards the hot path. Batch elapsed time is the wall clock around the whole
// batch, not the per-probe sum.
func (h *Harness) RunLevel(ctx context.Context, level int) (metrics.LevelResult, error) {
	outcomes := make([]metrics.Outcome, level)

	var wg sync.WaitGroup
	wg.Add(level)
	start := time.Now()
	for i := 0; i < level; i++ {
		go func(slot int) {
			defer wg.Done()
			outcomes[slot] = h.runOne(ctx)
			if !outcomes[slot].OK {
				h.sink.ProbeFailed(level, outcomes[slot])
			}
		}(i)
	}
	wg.Wait()
	batchElapsed := time.Since(start)

	result := metrics.NewLevelResult(level, batchElapsed, outcomes)
	if result.Failures == level {
		return result, &LevelFailedError{Level: level, Reasons: result.FailureReasons}
	}
	return result, nil
}

// runOne draws a prompt and settles one probe. Prompt-source failures are
// folded into the outcome so the batch invariant (one outcome per slot)
// holds even when the context dies mid-batch.
func (h *Harness) runOne(ctx context.Context) metrics.Outcome {
	prompt, err := h.source.Next(ctx)
	if err != nil {
		return metrics.Failure(0, metrics.ReasonTransport, fmt.Sprintf("prompt source: %v", err))
	}
	return h.prober.Run(ctx, prompt)
}

// Run drives the sweep strictly level by level: each batch fully settles,
// then a cooldown passes before the next level starts. A fully failed level
// aborts the remaining sweep; its result is still included so the report can
// show what happened.
func (h *Harness) Run(ctx context.Context, levels []int, cooldown time.Duration) ([]metrics.LevelResult, error) {
	results := make([]metrics.LevelResult, 0, len(levels))

	for i, level := range levels {
		h.sink.LevelStarted(level, i, len(levels))

		result, err := h.RunLevel(ctx, level)
		results = append(results, result)
		h.sink.LevelCompleted(result)

		if err != nil {
			return results, err
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if cooldown > 0 && i < len(levels)-1 {
			select {
			case <-time.After(cooldown):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}
	return results, nil
}
