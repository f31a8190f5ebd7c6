// Package dashboard renders a live terminal UI for a running sweep.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// Dashboard is a sweep event sink that renders live progress with termui.
// Events mutate its state under a mutex; a ticker loop redraws the widgets.
type Dashboard struct {
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid        *ui.Grid
	summaryPara *widgets.Paragraph
	rateSparkle *widgets.SparklineGroup
	levelList   *widgets.List
	failureList *widgets.List

	cfg       *config.Config
	startTime time.Time

	// Event-fed state.
	currentLevel int
	levelIndex   int
	levelTotal   int
	completed    []metrics.LevelResult
	rateHistory  []float64
	failures     map[metrics.FailureReason]int
}

// New creates a dashboard. shutdownFunc is invoked when the user quits.
func New(cfg *config.Config, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		cfg:          cfg,
		startTime:    time.Now(),
		rateHistory:  make([]float64, 0, len(cfg.Levels)),
		failures:     make(map[metrics.FailureReason]int),
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Sweep"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	sparkline := widgets.NewSparkline()
	sparkline.Title = "tok/s"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.rateSparkle = widgets.NewSparklineGroup(sparkline)
	d.rateSparkle.Title = "Throughput by Level"
	d.rateSparkle.BorderStyle.Fg = ui.ColorCyan

	d.levelList = widgets.NewList()
	d.levelList.Title = "Completed Levels"
	d.levelList.Rows = []string{"Awaiting data"}
	d.levelList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.levelList.BorderStyle.Fg = ui.ColorCyan

	d.failureList = widgets.NewList()
	d.failureList.Title = "Failures"
	d.failureList.Rows = []string{"No failures"}
	d.failureList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.failureList.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.3,
			ui.NewCol(1.0, d.rateSparkle),
		),
		ui.NewRow(0.5,
			ui.NewCol(0.6, d.levelList),
			ui.NewCol(0.4, d.failureList),
		),
	)
}

// Start begins the dashboard render loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// LevelStarted records the level now running.
func (d *Dashboard) LevelStarted(level, index, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.currentLevel = level
	d.levelIndex = index
	d.levelTotal = total
}

// LevelCompleted appends a settled level result.
func (d *Dashboard) LevelCompleted(result metrics.LevelResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completed = append(d.completed, result)
	d.rateHistory = append(d.rateHistory, result.TokensPerSec)
}

// ProbeFailed tallies a failure. Called concurrently from probe goroutines.
func (d *Dashboard) ProbeFailed(level int, outcome metrics.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[outcome.Reason]++
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes widget text from the event-fed state.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s | Model: %s | Flavor: %s\nLevel %d/%d (concurrency %d) | Elapsed: %s",
		d.cfg.Profile.TargetURL,
		d.cfg.Profile.Model,
		d.cfg.Profile.Flavor,
		d.levelIndex+1,
		d.levelTotal,
		d.currentLevel,
		elapsed.Round(time.Second),
	)

	if len(d.rateHistory) > 0 {
		d.rateSparkle.Sparklines[0].Data = d.rateHistory
		last := d.rateHistory[len(d.rateHistory)-1]
		d.rateSparkle.Title = fmt.Sprintf("Throughput by Level | Last: %.2f tok/s", last)
	}

	if len(d.completed) == 0 {
		d.levelList.Rows = []string{"[Awaiting data](fg:green)"}
	} else {
		rows := make([]string, 0, len(d.completed))
		for _, result := range d.completed {
			rows = append(rows, fmt.Sprintf("[Level %d](fg:cyan) | %7.2f tok/s | %d/%d ok | %.1fs",
				result.Level,
				result.TokensPerSec,
				result.Successes,
				result.Successes+result.Failures,
				result.BatchElapsedSec,
			))
		}
		d.levelList.Rows = rows
	}

	if len(d.failures) == 0 {
		d.failureList.Rows = []string{"[No failures](fg:green)"}
	} else {
		reasons := make(map[metrics.FailureReason]int, len(d.failures))
		for reason, count := range d.failures {
			reasons[reason] = count
		}
		rows := make([]string, 0, len(reasons))
		for _, row := range metrics.ReasonBreakdown(reasons) {
			rows = append(rows, fmt.Sprintf("[%s](fg:red) %d", row.Label, row.Count))
		}
		d.failureList.Rows = rows
	}
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}
