package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
)

func testProfile(url string, flavor config.Flavor) *config.Profile {
	return &config.Profile{
		Flavor:      flavor,
		TargetURL:   url,
		Model:       "test-model",
		APIKey:      "sk-test",
		MaxTokens:   64,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	}
}

func newExecutor(t *testing.T, profile *config.Profile) *Executor {
	t.Helper()
	exec, err := New(profile, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return exec
}

func TestRunSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"result"}}],"usage":{"total_tokens":12}}`)
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.Run(context.Background(), "prompt")

	if !outcome.OK {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Tokens != 12 {
		t.Errorf("Tokens = %d, want 12", outcome.Tokens)
	}
	if outcome.Elapsed <= 0 {
		t.Errorf("Elapsed = %s, want > 0", outcome.Elapsed)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestRunHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.Run(context.Background(), "prompt")

	if outcome.OK || outcome.Reason != metrics.ReasonHTTP {
		t.Fatalf("outcome = %+v, want http-error", outcome)
	}
	if outcome.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", outcome.Status)
	}
}

func TestRunTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	profile := testProfile(server.URL, config.FlavorOpenAIChat)
	profile.Timeout = 50 * time.Millisecond
	exec := newExecutor(t, profile)

	outcome := exec.Run(context.Background(), "prompt")
	if outcome.OK || outcome.Reason != metrics.ReasonTimeout {
		t.Fatalf("outcome = %+v, want timeout", outcome)
	}
}

func TestRunTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.Run(context.Background(), "prompt")

	if outcome.OK || outcome.Reason != metrics.ReasonTransport {
		t.Fatalf("outcome = %+v, want transport-error", outcome)
	}
}

func TestRunStreamSSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		flusher.Flush()
		fmt.Fprint(w, "data: {\"choices\":[],\"usage\":{\"total_tokens\":9}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.RunStream(context.Background(), "prompt")

	if !outcome.OK {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Tokens != 9 {
		t.Errorf("Tokens = %d, want 9 (server count overrides fragment count)", outcome.Tokens)
	}
	if outcome.Content != "hello" {
		t.Errorf("Content = %q", outcome.Content)
	}
	if outcome.FirstToken <= 0 || outcome.FirstToken > outcome.Elapsed {
		t.Errorf("FirstToken = %s, Elapsed = %s", outcome.FirstToken, outcome.Elapsed)
	}
}

func TestRunStreamFragmentCountFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.RunStream(context.Background(), "prompt")

	if !outcome.OK {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Tokens != 2 {
		t.Errorf("Tokens = %d, want 2 (fragment count when the server reports none)", outcome.Tokens)
	}
}

func TestRunStreamNDJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"loc","done":false}`)
		fmt.Fprintln(w, `{"response":"al","done":false}`)
		fmt.Fprintln(w, `{"response":"","done":true,"eval_count":17}`)
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOllamaGenerate))
	outcome := exec.RunStream(context.Background(), "prompt")

	if !outcome.OK {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Tokens != 17 {
		t.Errorf("Tokens = %d, want 17", outcome.Tokens)
	}
	if outcome.Content != "local" {
		t.Errorf("Content = %q", outcome.Content)
	}
}

func TestRunStreamNoOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.RunStream(context.Background(), "prompt")

	if outcome.OK || outcome.Reason != metrics.ReasonNoOutput {
		t.Fatalf("outcome = %+v, want no-output", outcome)
	}
}

func TestRunStreamHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.RunStream(context.Background(), "prompt")

	if outcome.OK || outcome.Reason != metrics.ReasonHTTP {
		t.Fatalf("outcome = %+v, want http-error", outcome)
	}
	if outcome.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", outcome.Status)
	}
}

func TestRunStreamCorruptedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"oops �\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	exec := newExecutor(t, testProfile(server.URL, config.FlavorOpenAIChat))
	outcome := exec.RunStream(context.Background(), "prompt")

	if outcome.OK || outcome.Reason != metrics.ReasonCorrupted {
		t.Fatalf("outcome = %+v, want corrupted-content", outcome)
	}
}
