package adapter

import (
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

// generateAdapter speaks the Ollama /api/generate convention: generation
// options nest under an options object and the token count is the
// evaluation count reported by the server.
type generateAdapter struct {
	profile *config.Profile
}

type generateOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

func (a *generateAdapter) BuildRequest(prompt string, stream bool) ([]byte, error) {
	return json.Marshal(generateRequest{
		Model:  a.profile.Model,
		Prompt: prompt,
		Stream: stream,
		Options: generateOptions{
			NumPredict:  a.profile.MaxTokens,
			Temperature: a.profile.Temperature,
		},
	})
}

func (a *generateAdapter) Headers() http.Header {
	return baseHeaders(a.profile)
}

// ParseResponse extracts content from "response" and the token count from
// "eval_count". A missing eval_count defaults to zero and the outcome stays
// a success as long as the body parses.
func (a *generateAdapter) ParseResponse(status int, body []byte) metrics.Outcome {
	if outcome, ok := classifyBody(status, body); !ok {
		return outcome
	}
	if !gjson.ValidBytes(body) {
		return metrics.Failure(0, metrics.ReasonMalformed, snippet(body))
	}

	content := gjson.GetBytes(body, "response").String()
	tokens := int(gjson.GetBytes(body, "eval_count").Int())

	return checkContent(content, tokens)
}

func (a *generateAdapter) StreamFraming() StreamFraming {
	return FramingNDJSON
}

// ParseStreamEvent handles one NDJSON line: intermediate lines carry a
// "response" fragment, the final line has done=true and eval_count.
func (a *generateAdapter) ParseStreamEvent(data []byte) StreamEvent {
	if !gjson.ValidBytes(data) {
		return StreamEvent{}
	}
	event := StreamEvent{
		Fragment: gjson.GetBytes(data, "response").String(),
		Done:     gjson.GetBytes(data, "done").Bool(),
	}
	if count := gjson.GetBytes(data, "eval_count"); count.Exists() {
		event.Tokens = int(count.Int())
	}
	return event
}
