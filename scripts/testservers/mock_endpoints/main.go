// Mock text-generation endpoints for manual testing. Each mode mimics one
// endpoint flavor closely enough to exercise the full probe path, including
// streaming, token pacing and failure injection.
//
// Usage:
//
//	go run ./scripts/testservers/mock_endpoints -mode chat -port 8080
//	tokensweep --target http://localhost:8080/v1/chat/completions \
//	    --model mock --api-key test --stream
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

type serverMode string

const (
	modeChat       serverMode = "chat"
	modeCompletion serverMode = "completion"
	modeGenerate   serverMode = "generate"
)

var words = strings.Fields("the quick brown fox jumps over the lazy dog and keeps running until the field ends")

func main() {
	mode := flag.String("mode", "chat", "Server mode: chat, completion, generate")
	port := flag.Int("port", 8080, "Listening port")
	tokenDelay := flag.Duration("token-delay", 20*time.Millisecond, "Pause between streamed tokens")
	tokens := flag.Int("tokens", 32, "Tokens emitted per response")
	failRate := flag.Float64("fail-rate", 0, "Fraction of requests answered with HTTP 500")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	srv := &mockServer{
		tokenDelay: *tokenDelay,
		tokens:     *tokens,
		failRate:   *failRate,
	}

	mux := http.NewServeMux()
	switch serverMode(*mode) {
	case modeChat:
		mux.HandleFunc("/v1/chat/completions", srv.handleChat)
	case modeCompletion:
		mux.HandleFunc("/v1/completions", srv.handleCompletion)
	case modeGenerate:
		mux.HandleFunc("/api/generate", srv.handleGenerate)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock %s endpoint listening on %s", *mode, addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

type mockServer struct {
	tokenDelay time.Duration
	tokens     int
	failRate   float64
}

func (s *mockServer) injectFailure(w http.ResponseWriter) bool {
	if s.failRate > 0 && rand.Float64() < s.failRate {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "injected failure"})
		return true
	}
	return false
}

func (s *mockServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if s.injectFailure(w) {
		return
	}

	var req struct {
		Model  string `json:"model"`
		Stream bool   `json:"stream"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if !req.Stream {
		respondJSON(w, http.StatusOK, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": s.sampleText()}},
			},
			"usage": map[string]any{"total_tokens": s.tokens},
		})
		return
	}

	flusher, ok := beginEventStream(w)
	if !ok {
		return
	}
	for i := 0; i < s.tokens; i++ {
		chunk := map[string]any{
			"choices": []map[string]any{
				{"delta": map[string]any{"content": words[i%len(words)] + " "}},
			},
		}
		writeEvent(w, chunk)
		flusher.Flush()
		time.Sleep(s.tokenDelay)
	}
	usage := map[string]any{
		"choices": []map[string]any{},
		"usage":   map[string]any{"total_tokens": s.tokens},
	}
	writeEvent(w, usage)
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (s *mockServer) handleCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if s.injectFailure(w) {
		return
	}

	var req struct {
		Stream bool `json:"stream"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if !req.Stream {
		respondJSON(w, http.StatusOK, map[string]any{
			"text":       s.sampleText(),
			"num_tokens": s.tokens,
		})
		return
	}

	flusher, ok := beginEventStream(w)
	if !ok {
		return
	}
	for i := 0; i < s.tokens; i++ {
		writeEvent(w, map[string]any{
			"choices": []map[string]any{{"text": words[i%len(words)] + " "}},
		})
		flusher.Flush()
		time.Sleep(s.tokenDelay)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (s *mockServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if s.injectFailure(w) {
		return
	}

	var req struct {
		Stream bool `json:"stream"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if !req.Stream {
		respondJSON(w, http.StatusOK, map[string]any{
			"response":   s.sampleText(),
			"eval_count": s.tokens,
			"done":       true,
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	for i := 0; i < s.tokens; i++ {
		_ = enc.Encode(map[string]any{"response": words[i%len(words)] + " ", "done": false})
		flusher.Flush()
		time.Sleep(s.tokenDelay)
	}
	_ = enc.Encode(map[string]any{"response": "", "done": true, "eval_count": s.tokens})
	flusher.Flush()
}

func (s *mockServer) sampleText() string {
	var b strings.Builder
	for i := 0; i < s.tokens; i++ {
		b.WriteString(words[i%len(words)])
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String())
}

func beginEventStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

func writeEvent(w http.ResponseWriter, payload any) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
