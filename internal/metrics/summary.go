package metrics

import "time"

// LevelStats is the per-level slice of a sweep summary.
type LevelStats struct {
	Level        int           `json:"level"`
	TokensPerSec float64       `json:"tokens_per_sec"`
	TotalTokens  int           `json:"total_tokens"`
	BatchElapsed time.Duration `json:"-"`
	SuccessRate  float64       `json:"success_rate_pct"`

	// Latency stats over the success-only elapsed list; zero when the level
	// had no successes.
	AvgLatency time.Duration `json:"-"`
	MinLatency time.Duration `json:"-"`
	MaxLatency time.Duration `json:"-"`

	// AvgFirstToken is zero unless streaming probes recorded first-token times.
	AvgFirstToken time.Duration `json:"-"`

	// Efficiency is this level's throughput relative to the baseline level,
	// as a percentage. Values above 100 (super-linear scaling) are reported
	// as-is. Zero when the baseline rate is zero.
	Efficiency float64 `json:"efficiency_pct"`

	// Millisecond fields for JSON and chart consumption.
	BatchElapsedMs  float64 `json:"batch_elapsed_ms"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	MinLatencyMs    float64 `json:"min_latency_ms"`
	MaxLatencyMs    float64 `json:"max_latency_ms"`
	AvgFirstTokenMs float64 `json:"avg_first_token_ms,omitempty"`
}

// Summary condenses an ordered sweep of level results. The first level in
// the sequence is the scaling baseline.
type Summary struct {
	Levels []LevelStats `json:"levels"`

	BestLevel        int     `json:"best_level"`
	BestTokensPerSec float64 `json:"best_tokens_per_sec"`

	TotalProbes    int     `json:"total_probes"`
	TotalSuccesses int     `json:"total_successes"`
	TotalFailures  int     `json:"total_failures"`
	SuccessRate    float64 `json:"success_rate_pct"`

	// FailureReasons aggregates failure counts across all levels.
	FailureReasons map[FailureReason]int `json:"failure_reasons,omitempty"`
}

// Summarize computes the sweep summary from an ordered level sequence. It is
// a pure function: calling it twice on the same input yields the same summary.
func Summarize(levels []LevelResult) Summary {
	summary := Summary{Levels: make([]LevelStats, 0, len(levels))}
	if len(levels) == 0 {
		return summary
	}

	baselineRate := levels[0].TokensPerSecond()

	for i, level := range levels {
		stats := LevelStats{
			Level:        level.Level,
			TokensPerSec: level.TokensPerSecond(),
			TotalTokens:  level.TotalTokens,
			BatchElapsed: level.BatchElapsed,
			SuccessRate:  level.SuccessRate(),
		}

		stats.AvgLatency, stats.MinLatency, stats.MaxLatency = latencyStats(level.Elapsed)
		stats.AvgFirstToken, _, _ = latencyStats(level.FirstToken)

		switch {
		case baselineRate <= 0:
			stats.Efficiency = 0
		case i == 0:
			stats.Efficiency = 100
		default:
			stats.Efficiency = stats.TokensPerSec / baselineRate * 100
		}

		stats.BatchElapsedMs = durationMs(stats.BatchElapsed)
		stats.AvgLatencyMs = durationMs(stats.AvgLatency)
		stats.MinLatencyMs = durationMs(stats.MinLatency)
		stats.MaxLatencyMs = durationMs(stats.MaxLatency)
		stats.AvgFirstTokenMs = durationMs(stats.AvgFirstToken)

		// Stable max scan: ties keep the earliest (lowest concurrency) level.
		if stats.TokensPerSec > summary.BestTokensPerSec {
			summary.BestTokensPerSec = stats.TokensPerSec
			summary.BestLevel = stats.Level
		}

		summary.TotalProbes += level.Successes + level.Failures
		summary.TotalSuccesses += level.Successes
		summary.TotalFailures += level.Failures
		for reason, count := range level.FailureReasons {
			if summary.FailureReasons == nil {
				summary.FailureReasons = make(map[FailureReason]int)
			}
			summary.FailureReasons[reason] += count
		}
		summary.Levels = append(summary.Levels, stats)
	}

	if summary.BestLevel == 0 && len(summary.Levels) > 0 {
		summary.BestLevel = summary.Levels[0].Level
	}
	if summary.TotalProbes > 0 {
		summary.SuccessRate = float64(summary.TotalSuccesses) / float64(summary.TotalProbes) * 100
	}
	return summary
}

// latencyStats returns avg, min, max over the list; all zero when empty.
func latencyStats(values []time.Duration) (avg, min, max time.Duration) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	min = values[0]
	max = values[0]
	var sum time.Duration
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return sum / time.Duration(len(values)), min, max
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
