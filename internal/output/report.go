// Package output renders sweep results as text, JSON, and HTML, and writes
// report artifacts to disk.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// Report bundles everything the renderers need for one sweep.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Target      string          `json:"target"`
	Model       string          `json:"model"`
	Flavor      string          `json:"flavor"`
	Streaming   bool            `json:"streaming"`
	Summary     metrics.Summary `json:"summary"`
}

// NewReport assembles a report from the profile and the computed summary.
func NewReport(profile *config.Profile, streaming bool, summary metrics.Summary) Report {
	return Report{
		GeneratedAt: time.Now(),
		Target:      profile.TargetURL,
		Model:       profile.Model,
		Flavor:      string(profile.Flavor),
		Streaming:   streaming,
		Summary:     summary,
	}
}

// PrintReport outputs a human-readable sweep report.
func PrintReport(w io.Writer, report Report) {
	summary := report.Summary

	fmt.Fprintln(w, "\n--- Token Rate Sweep Results ---")
	fmt.Fprintf(w, "Target:            %s\n", report.Target)
	fmt.Fprintf(w, "Model:             %s\n", report.Model)
	fmt.Fprintf(w, "Flavor:            %s\n", report.Flavor)
	if report.Streaming {
		fmt.Fprintln(w, "Mode:              streaming")
	} else {
		fmt.Fprintln(w, "Mode:              non-streaming")
	}
	fmt.Fprintf(w, "Total Probes:      %d\n", summary.TotalProbes)
	fmt.Fprintf(w, "Successful:        %d\n", summary.TotalSuccesses)
	fmt.Fprintf(w, "Failed:            %d\n", summary.TotalFailures)
	fmt.Fprintf(w, "Success Rate:      %.1f%%\n", summary.SuccessRate)

	fmt.Fprintln(w, "\nPer-Level Results:")
	fmt.Fprintf(w, "  %-6s %-10s %-8s %-9s %-10s %-10s %-10s\n",
		"Level", "Tok/s", "Tokens", "Success", "Avg", "Min", "Max")
	for _, level := range summary.Levels {
		fmt.Fprintf(w, "  %-6d %-10.2f %-8d %-8.1f%% %-10s %-10s %-10s\n",
			level.Level,
			level.TokensPerSec,
			level.TotalTokens,
			level.SuccessRate,
			roundedDuration(level.AvgLatency),
			roundedDuration(level.MinLatency),
			roundedDuration(level.MaxLatency),
		)
	}

	if report.Streaming {
		fmt.Fprintln(w, "\nTime To First Token:")
		for _, level := range summary.Levels {
			if level.AvgFirstToken > 0 {
				fmt.Fprintf(w, "  Level %-4d avg %s\n", level.Level, roundedDuration(level.AvgFirstToken))
			}
		}
	}

	fmt.Fprintln(w, "\nScaling:")
	for _, level := range summary.Levels {
		fmt.Fprintf(w, "  Level %-4d efficiency %.1f%%\n", level.Level, level.Efficiency)
	}
	fmt.Fprintf(w, "\nBest Level:        %d (%.2f tok/s)\n", summary.BestLevel, summary.BestTokensPerSec)

	if len(summary.FailureReasons) > 0 {
		fmt.Fprintln(w, "\nFailure Breakdown:")
		for _, row := range metrics.ReasonBreakdown(summary.FailureReasons) {
			fmt.Fprintf(w, "  %s: %d\n", row.Label, row.Count)
		}
	}
}

// PrintJSONReport outputs the report as indented JSON.
func PrintJSONReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// roundedDuration trims durations to millisecond precision for display.
func roundedDuration(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
