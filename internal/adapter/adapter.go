// Package adapter translates between endpoint flavors and the wire. Each
// flavor variant builds request payloads and classifies raw responses into
// probe outcomes; nothing in this package performs network I/O.
package adapter

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// maxDetailBytes caps the response snippet retained on failures.
const maxDetailBytes = 1024

// StreamFraming describes how a flavor frames its streamed fragments.
type StreamFraming int

const (
	// FramingSSE is "data: {json}" server-sent events terminated by [DONE].
	FramingSSE StreamFraming = iota
	// FramingNDJSON is one JSON object per line with a terminal done marker.
	FramingNDJSON
)

// StreamEvent is one normalized fragment from a streaming response.
type StreamEvent struct {
	Fragment string // generated text piece, may be empty
	Done     bool   // terminal event for the stream
	Tokens   int    // authoritative token count from a terminal event, 0 if absent
}

// Adapter is the per-flavor translation contract. Implementations are
// stateless and safe for concurrent use.
type Adapter interface {
	// BuildRequest constructs the JSON payload for one probe.
	BuildRequest(prompt string, stream bool) ([]byte, error)
	// Headers returns the request headers for the flavor, including
	// authorization when the profile is credentialed.
	Headers() http.Header
	// ParseResponse classifies a complete non-streaming response. The
	// returned outcome carries no elapsed time; the executor stamps it.
	ParseResponse(status int, body []byte) metrics.Outcome
	// StreamFraming reports how streamed fragments are framed on the wire.
	StreamFraming() StreamFraming
	// ParseStreamEvent normalizes one streamed event. Unparseable events
	// yield a zero StreamEvent and are skipped by the executor.
	ParseStreamEvent(data []byte) StreamEvent
}

// ForProfile resolves the adapter variant for the profile's flavor. The
// dispatch happens once here, not per call.
func ForProfile(profile *config.Profile) (Adapter, error) {
	switch profile.Flavor {
	case config.FlavorOpenAIChat, config.FlavorCompatChat:
		return &chatAdapter{profile: profile}, nil
	case config.FlavorVLLMCompletion:
		return &completionAdapter{profile: profile}, nil
	case config.FlavorOllamaGenerate:
		return &generateAdapter{profile: profile}, nil
	default:
		return nil, fmt.Errorf("no adapter for flavor %q", profile.Flavor)
	}
}

// baseHeaders builds the shared header set; credentialed profiles get a
// bearer token.
func baseHeaders(profile *config.Profile) http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if profile.APIKey != "" && profile.Flavor.Credentialed() {
		headers.Set("Authorization", "Bearer "+profile.APIKey)
	}
	return headers
}

// classifyBody runs the checks shared by every flavor before field
// extraction: status, UTF-8 validity. Returns a failure outcome and false
// when the response cannot be parsed further.
func classifyBody(status int, body []byte) (metrics.Outcome, bool) {
	if !utf8.Valid(body) {
		return metrics.Failure(0, metrics.ReasonDecode, "response is not valid UTF-8"), false
	}
	if status < 200 || status >= 300 {
		return metrics.HTTPFailure(0, status, snippet(body)), false
	}
	return metrics.Outcome{}, true
}

// checkContent applies the shared mojibake check to extracted content.
func checkContent(content string, tokens int) metrics.Outcome {
	if strings.ContainsRune(content, '�') {
		return metrics.Failure(0, metrics.ReasonCorrupted, "content contains replacement characters")
	}
	return metrics.Success(0, tokens, content)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxDetailBytes {
		s = s[:maxDetailBytes]
	}
	return s
}
