package sweep

import "github.com/tokensweep/tokensweep/internal/metrics"

// EventSink receives sweep progress events. It is injected at construction
// so the harness never writes to a process-wide logger; implementations must
// tolerate concurrent ProbeFailed calls.
type EventSink interface {
	LevelStarted(level, index, total int)
	LevelCompleted(result metrics.LevelResult)
	ProbeFailed(level int, outcome metrics.Outcome)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) LevelStarted(int, int, int)         {}
func (NopSink) LevelCompleted(metrics.LevelResult) {}
func (NopSink) ProbeFailed(int, metrics.Outcome)   {}
