package metrics

import "time"

// LevelResult aggregates all probe outcomes from one concurrency level.
// It is created once after every probe in the batch has settled and is never
// mutated afterwards. Successes+Failures always equals the level.
type LevelResult struct {
	Level        int           `json:"level"`
	BatchElapsed time.Duration `json:"batch_elapsed_ns"`
	Successes    int           `json:"successes"`
	Failures     int           `json:"failures"`
	TotalTokens  int           `json:"total_tokens"`

	// Elapsed and FirstToken hold per-probe timings for successes only.
	// FirstToken is populated only for streaming probes.
	Elapsed    []time.Duration `json:"-"`
	FirstToken []time.Duration `json:"-"`

	FailureReasons map[FailureReason]int `json:"failure_reasons,omitempty"`

	// JSON-friendly derived fields.
	BatchElapsedSec float64 `json:"batch_elapsed_sec"`
	TokensPerSec    float64 `json:"tokens_per_sec"`
	SuccessRatePct  float64 `json:"success_rate_pct"`
}

// NewLevelResult folds settled outcomes into an immutable LevelResult.
// Token accounting counts Success outcomes only.
func NewLevelResult(level int, batchElapsed time.Duration, outcomes []Outcome) LevelResult {
	result := LevelResult{
		Level:        level,
		BatchElapsed: batchElapsed,
	}

	for _, outcome := range outcomes {
		if outcome.OK {
			result.Successes++
			result.TotalTokens += outcome.Tokens
			result.Elapsed = append(result.Elapsed, outcome.Elapsed)
			if outcome.FirstToken > 0 {
				result.FirstToken = append(result.FirstToken, outcome.FirstToken)
			}
			continue
		}
		result.Failures++
		if result.FailureReasons == nil {
			result.FailureReasons = make(map[FailureReason]int)
		}
		result.FailureReasons[outcome.Reason]++
	}

	result.BatchElapsedSec = batchElapsed.Seconds()
	result.TokensPerSec = result.TokensPerSecond()
	result.SuccessRatePct = result.SuccessRate()
	return result
}

// TokensPerSecond is the level throughput: successful tokens over the batch
// wall clock. Zero when the batch elapsed is not positive.
func (r LevelResult) TokensPerSecond() float64 {
	if r.BatchElapsed <= 0 {
		return 0
	}
	return float64(r.TotalTokens) / r.BatchElapsed.Seconds()
}

// SuccessRate is the percentage of probes that succeeded. Zero when the
// level recorded no outcomes.
func (r LevelResult) SuccessRate() float64 {
	total := r.Successes + r.Failures
	if total == 0 {
		return 0
	}
	return float64(r.Successes) / float64(total) * 100
}
