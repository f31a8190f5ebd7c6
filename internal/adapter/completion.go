package adapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// completionAdapter speaks the vLLM raw-prompt completion convention.
type completionAdapter struct {
	profile *config.Profile
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

func (a *completionAdapter) BuildRequest(prompt string, stream bool) ([]byte, error) {
	return json.Marshal(completionRequest{
		Model:       a.profile.Model,
		Prompt:      prompt,
		MaxTokens:   a.profile.MaxTokens,
		Temperature: a.profile.Temperature,
		Stream:      stream,
	})
}

func (a *completionAdapter) Headers() http.Header {
	return baseHeaders(a.profile)
}

// ParseResponse extracts content from "text", falling back to "output", and
// the token count from "num_tokens". Both default to empty/zero when absent.
func (a *completionAdapter) ParseResponse(status int, body []byte) metrics.Outcome {
	if outcome, ok := classifyBody(status, body); !ok {
		return outcome
	}
	if !gjson.ValidBytes(body) {
		return metrics.Failure(0, metrics.ReasonMalformed, snippet(body))
	}

	content := gjson.GetBytes(body, "text")
	if !content.Exists() {
		content = gjson.GetBytes(body, "output")
	}
	tokens := int(gjson.GetBytes(body, "num_tokens").Int())

	return checkContent(content.String(), tokens)
}

func (a *completionAdapter) StreamFraming() StreamFraming {
	return FramingSSE
}

// ParseStreamEvent handles completion-style SSE chunks carrying
// choices.0.text fragments.
func (a *completionAdapter) ParseStreamEvent(data []byte) StreamEvent {
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
		Fragment: gjson.Get(trimmed, "choices.0.text").String(),
	}
	if usage := gjson.Get(trimmed, "usage.total_tokens"); usage.Exists() {
		event.Tokens = int(usage.Int())
	}
	return event
}
