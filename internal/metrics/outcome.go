// Package metrics defines probe outcomes, per-level results and the sweep
// summary computed from them.
package metrics

import (
	"fmt"
	"time"
)

// FailureReason classifies why a probe failed. Raw transport or parsing
// errors never cross the probe boundary; they are mapped onto one of these.
type FailureReason string

const (
	// ReasonTransport covers connection, DNS and reset failures before a
	// response was received.
	ReasonTransport FailureReason = "transport-error"
	// ReasonTimeout means no complete response arrived within the profile timeout.
	ReasonTimeout FailureReason = "timeout"
	// ReasonHTTP is a non-2xx status; the body is retained for diagnostics.
	ReasonHTTP FailureReason = "http-error"
	// ReasonDecode means the response bytes are not valid UTF-8.
	ReasonDecode FailureReason = "decode-error"
	// ReasonMalformed means valid text missing fields required by the flavor.
	ReasonMalformed FailureReason = "malformed-response"
	// ReasonCorrupted means the content parsed but contains U+FFFD,
	// indicating upstream mojibake.
	ReasonCorrupted FailureReason = "corrupted-content"
	// ReasonNoOutput means a streaming probe finished without emitting a fragment.
	ReasonNoOutput FailureReason = "no-output"
	// ReasonUnsupportedFlavor means configuration named a flavor with no adapter.
	ReasonUnsupportedFlavor FailureReason = "unsupported-flavor"
)

// Outcome is the settled result of a single probe. It is created once by the
// executor and never mutated afterwards.
type Outcome struct {
	OK      bool          `json:"ok"`
	Elapsed time.Duration `json:"elapsed_ns"`

	// Success fields.
	FirstToken time.Duration `json:"first_token_ns,omitempty"` // streaming probes only
	Tokens     int           `json:"tokens,omitempty"`
	Content    string        `json:"-"`

	// Failure fields.
	Reason FailureReason `json:"reason,omitempty"`
	Status int           `json:"status,omitempty"` // http-error only
	Detail string        `json:"detail,omitempty"`
}

// Success builds a successful non-streaming outcome.
func Success(elapsed time.Duration, tokens int, content string) Outcome {
	return Outcome{OK: true, Elapsed: elapsed, Tokens: tokens, Content: content}
}

// StreamSuccess builds a successful streaming outcome with its first-token latency.
func StreamSuccess(elapsed, firstToken time.Duration, tokens int, content string) Outcome {
	return Outcome{OK: true, Elapsed: elapsed, FirstToken: firstToken, Tokens: tokens, Content: content}
}

// Failure builds a classified failed outcome.
func Failure(elapsed time.Duration, reason FailureReason, detail string) Outcome {
	return Outcome{Elapsed: elapsed, Reason: reason, Detail: detail}
}

// HTTPFailure builds a failed outcome for a non-2xx response, retaining a
// body snippet for diagnostics.
func HTTPFailure(elapsed time.Duration, status int, body string) Outcome {
	return Outcome{Elapsed: elapsed, Reason: ReasonHTTP, Status: status, Detail: body}
}

// String renders a short diagnostic form used by failure logging.
func (o Outcome) String() string {
	if o.OK {
		return fmt.Sprintf("ok tokens=%d elapsed=%s", o.Tokens, o.Elapsed)
	}
	if o.Reason == ReasonHTTP {
		return fmt.Sprintf("%s status=%d elapsed=%s", o.Reason, o.Status, o.Elapsed)
	}
	return fmt.Sprintf("%s elapsed=%s", o.Reason, o.Elapsed)
}
