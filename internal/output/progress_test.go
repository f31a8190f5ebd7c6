package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tokensweep/tokensweep/internal/metrics"
)

func TestConsoleReporterLevelLifecycle(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporter(&buf, time.Hour, false)

	reporter.LevelStarted(4, 2, 5)
	result := metrics.NewLevelResult(4, 2*time.Second, []metrics.Outcome{
		metrics.Success(time.Second, 50, ""),
		metrics.Success(time.Second, 50, ""),
		metrics.Success(time.Second, 50, ""),
		metrics.Failure(time.Second, metrics.ReasonTimeout, ""),
	})
	reporter.LevelCompleted(result)

	out := buf.String()
	if !strings.Contains(out, "Level 3/5: launching 4 concurrent probes") {
		t.Errorf("missing level header:\n%s", out)
	}
	if !strings.Contains(out, "3/4 ok") {
		t.Errorf("missing result line:\n%s", out)
	}
}

func TestConsoleReporterFailureLogging(t *testing.T) {
	outcome := metrics.HTTPFailure(time.Second, 500, "boom")

	var quiet bytes.Buffer
	NewConsoleReporter(&quiet, time.Hour, false).ProbeFailed(2, outcome)
	if strings.Contains(quiet.String(), "probe failed") {
		t.Error("failure logged with logging disabled")
	}

	var loud bytes.Buffer
	NewConsoleReporter(&loud, time.Hour, true).ProbeFailed(2, outcome)
	if !strings.Contains(loud.String(), "probe failed at level 2") {
		t.Errorf("missing failure line:\n%s", loud.String())
	}
	if !strings.Contains(loud.String(), "status=500") {
		t.Errorf("missing status detail:\n%s", loud.String())
	}
}

func TestConsoleReporterHeartbeat(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporter(&buf, 5*time.Millisecond, false)

	reporter.LevelStarted(1, 0, 1)
	time.Sleep(30 * time.Millisecond)
	reporter.LevelCompleted(metrics.NewLevelResult(1, time.Second, []metrics.Outcome{
		metrics.Success(time.Second, 1, ""),
	}))

	if !strings.Contains(buf.String(), "waiting...") {
		t.Errorf("heartbeat never fired:\n%s", buf.String())
	}
}
