package metrics

import (
	"testing"
	"time"
)

func TestNewLevelResultFoldsOutcomes(t *testing.T) {
	outcomes := []Outcome{
		Success(2*time.Second, 100, "alpha"),
		StreamSuccess(3*time.Second, 500*time.Millisecond, 150, "beta"),
		Failure(time.Second, ReasonTimeout, "deadline exceeded"),
		HTTPFailure(time.Second, 503, "overloaded"),
	}

	result := NewLevelResult(4, 4*time.Second, outcomes)

	if got := result.Successes + result.Failures; got != 4 {
		t.Fatalf("successes+failures = %d, want 4", got)
	}
	if result.Successes != 2 {
		t.Errorf("Successes = %d, want 2", result.Successes)
	}
	if result.TotalTokens != 250 {
		t.Errorf("TotalTokens = %d, want 250", result.TotalTokens)
	}
	if len(result.Elapsed) != 2 {
		t.Errorf("Elapsed has %d entries, want 2", len(result.Elapsed))
	}
	if len(result.FirstToken) != 1 {
		t.Errorf("FirstToken has %d entries, want 1", len(result.FirstToken))
	}
	if result.FailureReasons[ReasonTimeout] != 1 || result.FailureReasons[ReasonHTTP] != 1 {
		t.Errorf("FailureReasons = %v, want one timeout and one http-error", result.FailureReasons)
	}
}

func TestTokensPerSecond(t *testing.T) {
	result := NewLevelResult(1, 2*time.Second, []Outcome{Success(2*time.Second, 100, "")})
	if got := result.TokensPerSecond(); got != 50 {
		t.Errorf("TokensPerSecond = %f, want 50", got)
	}
}

func TestTokensPerSecondZeroElapsed(t *testing.T) {
	result := NewLevelResult(1, 0, []Outcome{Success(0, 100, "")})
	if got := result.TokensPerSecond(); got != 0 {
		t.Errorf("TokensPerSecond with zero elapsed = %f, want 0", got)
	}
}

func TestSuccessRate(t *testing.T) {
	outcomes := []Outcome{
		Success(time.Second, 10, ""),
		Failure(time.Second, ReasonTransport, "refused"),
	}
	result := NewLevelResult(2, time.Second, outcomes)
	if got := result.SuccessRate(); got != 50 {
		t.Errorf("SuccessRate = %f, want 50", got)
	}
}

func TestSuccessRateNoOutcomes(t *testing.T) {
	result := LevelResult{}
	if got := result.SuccessRate(); got != 0 {
		t.Errorf("SuccessRate with no outcomes = %f, want 0", got)
	}
}

func TestFailedTokensDoNotCount(t *testing.T) {
	outcomes := []Outcome{
		Success(time.Second, 40, ""),
		{OK: false, Elapsed: time.Second, Tokens: 99, Reason: ReasonCorrupted},
	}
	result := NewLevelResult(2, time.Second, outcomes)
	if result.TotalTokens != 40 {
		t.Errorf("TotalTokens = %d, want 40 (failed probes contribute nothing)", result.TotalTokens)
	}
}
