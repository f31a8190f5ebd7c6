package adapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// chatAdapter speaks the chat-completions convention, covering both the
// standard flavor and third-party endpoints that mimic it.
type chatAdapter struct {
	profile *config.Profile
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

func (a *chatAdapter) BuildRequest(prompt string, stream bool) ([]byte, error) {
	return json.Marshal(chatRequest{
		Model:       a.profile.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   a.profile.MaxTokens,
		Temperature: a.profile.Temperature,
		Stream:      stream,
	})
}

func (a *chatAdapter) Headers() http.Header {
	return baseHeaders(a.profile)
}

func (a *chatAdapter) ParseResponse(status int, body []byte) metrics.Outcome {
	if outcome, ok := classifyBody(status, body); !ok {
		return outcome
	}
	if !gjson.ValidBytes(body) {
		return metrics.Failure(0, metrics.ReasonMalformed, snippet(body))
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return metrics.Failure(0, metrics.ReasonMalformed, "missing choices.0.message.content")
	}
	tokens := int(gjson.GetBytes(body, "usage.total_tokens").Int())

	return checkContent(content.String(), tokens)
}

func (a *chatAdapter) StreamFraming() StreamFraming {
	return FramingSSE
}

// ParseStreamEvent handles one SSE data payload: either the "[DONE]"
// sentinel or a chunk carrying choices.0.delta.content. Final chunks from
// some servers include a usage block with the authoritative token count.
func (a *chatAdapter) ParseStreamEvent(data []byte) StreamEvent {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return StreamEvent{}
	}
	if trimmed == "[DONE]" {
		return StreamEvent{Done: true}
	}
	if !gjson.Valid(trimmed) {
		return StreamEvent{}
	}

	event := StreamEvent{
		Fragment: gjson.Get(trimmed, "choices.0.delta.content").String(),
	}
	if usage := gjson.Get(trimmed, "usage.total_tokens"); usage.Exists() {
		event.Tokens = int(usage.Int())
	}
	// Termination waits for the [DONE] sentinel; finish_reason chunks may
	// still be followed by a usage-only chunk.
	return event
}
