package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tokensweep/tokensweep/internal/metrics"
)

// ConsoleReporter prints sweep progress to a writer. It satisfies the sweep
// event sink: a header when a level starts, a heartbeat while the batch runs,
// and a result line when the level settles. With error logging enabled it
// also prints one line per failed probe.
type ConsoleReporter struct {
	writer    io.Writer
	logErrors bool
	interval  time.Duration

	mu       sync.Mutex
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	active   int32
}

// NewConsoleReporter creates a reporter with a heartbeat at the given
// interval. A nil writer discards everything.
func NewConsoleReporter(writer io.Writer, interval time.Duration, logErrors bool) *ConsoleReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &ConsoleReporter{
		writer:    writer,
		interval:  interval,
		logErrors: logErrors,
	}
}

// LevelStarted announces a level and starts the heartbeat.
func (r *ConsoleReporter) LevelStarted(level, index, total int) {
	r.mu.Lock()
	fmt.Fprintf(r.writer, "Level %d/%d: launching %d concurrent probes\n", index+1, total, level)
	r.mu.Unlock()
	r.startHeartbeat()
}

// LevelCompleted stops the heartbeat and prints the settled level result.
func (r *ConsoleReporter) LevelCompleted(result metrics.LevelResult) {
	r.stopHeartbeat()
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.writer, "\r  level %d: %.2f tok/s | %d/%d ok | batch %.1fs\n",
		result.Level,
		result.TokensPerSec,
		result.Successes,
		result.Successes+result.Failures,
		result.BatchElapsedSec,
	)
}

// ProbeFailed prints one line per failure when error logging is enabled.
// It is called concurrently from probe goroutines.
func (r *ConsoleReporter) ProbeFailed(level int, outcome metrics.Outcome) {
	if !r.logErrors {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.writer, "\r  probe failed at level %d: %s\n", level, outcome)
}

func (r *ConsoleReporter) startHeartbeat() {
	if !atomic.CompareAndSwapInt32(&r.active, 0, 1) {
		return // already running
	}
	r.ticker = time.NewTicker(r.interval)
	r.done = make(chan struct{})
	r.finished = make(chan struct{})
	start := time.Now()
	go func() {
		defer close(r.finished)
		for {
			select {
			case <-r.ticker.C:
				r.mu.Lock()
				fmt.Fprintf(r.writer, "\r  waiting... %ds", int(time.Since(start).Seconds()))
				r.mu.Unlock()
			case <-r.done:
				return
			}
		}
	}()
}

func (r *ConsoleReporter) stopHeartbeat() {
	if atomic.CompareAndSwapInt32(&r.active, 1, 0) {
		close(r.done)
		r.ticker.Stop()
		<-r.finished
	}
}
