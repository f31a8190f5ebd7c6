package dashboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gizak/termui/v3/widgets"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// testDashboard builds a dashboard with widgets but without touching the
// terminal, mirroring how update() is exercised outside the render loop.
func testDashboard() *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		ctx:    ctx,
		cancel: cancel,
		cfg: &config.Config{
			Profile: config.Profile{
				Flavor:    config.FlavorOpenAIChat,
				TargetURL: "http://localhost:8000/v1/chat/completions",
				Model:     "test-model",
			},
			Levels: []int{1, 2},
		},
		startTime: time.Now(),
		failures:  make(map[metrics.FailureReason]int),
	}
	d.summaryPara = widgets.NewParagraph()
	sparkline := widgets.NewSparkline()
	sparkline.Data = []float64{0}
	d.rateSparkle = widgets.NewSparklineGroup(sparkline)
	d.levelList = widgets.NewList()
	d.failureList = widgets.NewList()
	return d
}

func TestUpdateReflectsLevelEvents(t *testing.T) {
	d := testDashboard()

	d.LevelStarted(2, 1, 2)
	d.LevelCompleted(metrics.NewLevelResult(2, time.Second, []metrics.Outcome{
		metrics.Success(time.Second, 60, ""),
		metrics.Success(time.Second, 40, ""),
	}))
	d.update()

	if !strings.Contains(d.summaryPara.Text, "test-model") {
		t.Errorf("summary missing model: %q", d.summaryPara.Text)
	}
	if !strings.Contains(d.summaryPara.Text, "Level 2/2") {
		t.Errorf("summary missing level progress: %q", d.summaryPara.Text)
	}
	if len(d.levelList.Rows) != 1 || !strings.Contains(d.levelList.Rows[0], "Level 2") {
		t.Errorf("level rows = %v", d.levelList.Rows)
	}
	if !strings.Contains(d.levelList.Rows[0], "100.00 tok/s") {
		t.Errorf("level row missing throughput: %q", d.levelList.Rows[0])
	}
	if d.rateSparkle.Sparklines[0].Data[0] != 100 {
		t.Errorf("sparkline data = %v, want [100]", d.rateSparkle.Sparklines[0].Data)
	}
}

func TestUpdateReflectsFailures(t *testing.T) {
	d := testDashboard()

	d.ProbeFailed(2, metrics.Failure(time.Second, metrics.ReasonTimeout, "slow"))
	d.ProbeFailed(2, metrics.Failure(time.Second, metrics.ReasonTimeout, "slow"))
	d.update()

	if len(d.failureList.Rows) != 1 {
		t.Fatalf("failure rows = %v", d.failureList.Rows)
	}
	if !strings.Contains(d.failureList.Rows[0], "Probe timeout") || !strings.Contains(d.failureList.Rows[0], "2") {
		t.Errorf("failure row = %q", d.failureList.Rows[0])
	}
}

func TestUpdateWithNoData(t *testing.T) {
	d := testDashboard()
	d.update()

	if len(d.levelList.Rows) != 1 || !strings.Contains(d.levelList.Rows[0], "Awaiting data") {
		t.Errorf("level rows = %v", d.levelList.Rows)
	}
	if !strings.Contains(d.failureList.Rows[0], "No failures") {
		t.Errorf("failure rows = %v", d.failureList.Rows)
	}
}
