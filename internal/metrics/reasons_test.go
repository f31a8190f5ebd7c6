package metrics

import "testing"

func TestReasonBreakdownOrdering(t *testing.T) {
	rows := ReasonBreakdown(map[FailureReason]int{
		ReasonTimeout:   2,
		ReasonHTTP:      5,
		ReasonTransport: 2,
	})

	if rows[0].Reason != ReasonHTTP {
		t.Errorf("rows[0] = %s, want http-error (highest count first)", rows[0].Reason)
	}
	// Equal counts order by reason name.
	if rows[1].Reason != ReasonTimeout || rows[2].Reason != ReasonTransport {
		t.Errorf("tie order = %s, %s; want timeout then transport-error", rows[1].Reason, rows[2].Reason)
	}
}

func TestFriendlyReasonName(t *testing.T) {
	if got := FriendlyReasonName(ReasonNoOutput); got != "Stream produced no output" {
		t.Errorf("FriendlyReasonName(no-output) = %q", got)
	}
	if got := FriendlyReasonName("mystery"); got != "mystery" {
		t.Errorf("unknown reason = %q, want passthrough", got)
	}
	if got := FriendlyReasonName(""); got != "Unknown failure" {
		t.Errorf("empty reason = %q, want Unknown failure", got)
	}
}
