// Package probe issues single measured calls against a text-generation
// endpoint. Every failure is classified inside this boundary and returned as
// an outcome value; nothing escapes as a raw error.
package probe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tokensweep/tokensweep/internal/adapter"
	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
	"github.com/tokensweep/tokensweep/internal/stream"
	"github.com/tokensweep/tokensweep/internal/tracing"
)

// maxErrorBodyBytes caps how much of an error response body is retained.
const maxErrorBodyBytes = 4096

// Executor runs probes against one endpoint profile. It holds no mutable
// state; invocations are independent and safe to run concurrently.
type Executor struct {
	profile *config.Profile
	adapter adapter.Adapter
	client  *http.Client
	tracer  trace.Tracer
}

// New builds an executor for the profile, resolving the flavor adapter once.
func New(profile *config.Profile, tracer trace.Tracer) (*Executor, error) {
	ad, err := adapter.ForProfile(profile)
	if err != nil {
		return nil, err
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("tokensweep")
	}
	return &Executor{
		profile: profile,
		adapter: ad,
		client:  newClient(),
		tracer:  tracer,
	}, nil
}

// newClient builds the shared HTTP client. Timeouts are enforced per probe
// via context deadlines, so the client itself carries none.
func newClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}

// Run issues one non-streaming probe, bounded by the profile timeout.
func (e *Executor) Run(ctx context.Context, prompt string) metrics.Outcome {
	ctx, span := e.startSpan(ctx, "probe")
	outcome := e.run(ctx, prompt)
	e.endSpan(span, outcome)
	return outcome
}

func (e *Executor) run(ctx context.Context, prompt string) metrics.Outcome {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	payload, err := e.adapter.BuildRequest(prompt, false)
	if err != nil {
		return classifyTransportErr(err, time.Since(start))
	}
	req, err := e.newRequest(ctx, payload)
	if err != nil {
		return classifyTransportErr(err, time.Since(start))
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return classifyTransportErr(err, time.Since(start))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return classifyTransportErr(err, elapsed)
	}

	outcome := e.adapter.ParseResponse(resp.StatusCode, body)
	outcome.Elapsed = elapsed
	return outcome
}

// RunStream issues one streaming probe, recording the time of the first
// non-empty fragment and counting fragments as the token proxy. A terminal
// event carrying a server-side token count overrides the proxy.
func (e *Executor) RunStream(ctx context.Context, prompt string) metrics.Outcome {
	ctx, span := e.startSpan(ctx, "probe.stream")
	outcome := e.runStream(ctx, prompt)
	e.endSpan(span, outcome)
	return outcome
}

func (e *Executor) runStream(ctx context.Context, prompt string) metrics.Outcome {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	payload, err := e.adapter.BuildRequest(prompt, true)
	if err != nil {
		return classifyTransportErr(err, time.Since(start))
	}
	req, err := e.newRequest(ctx, payload)
	if err != nil {
		return classifyTransportErr(err, time.Since(start))
	}
	if e.adapter.StreamFraming() == adapter.FramingSSE {
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Cache-Control", "no-cache")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return classifyTransportErr(err, time.Since(start))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		elapsed := time.Since(start)
		outcome := e.adapter.ParseResponse(resp.StatusCode, body)
		outcome.Elapsed = elapsed
		return outcome
	}

	var (
		firstToken   time.Duration
		fragments    int
		serverTokens int
		content      strings.Builder
	)

	next := e.nextEventFunc(resp.Body)
	for {
		data, err := next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return classifyTransportErr(err, time.Since(start))
		}

		event := e.adapter.ParseStreamEvent(data)
		if event.Fragment != "" {
			if firstToken == 0 {
				firstToken = time.Since(start)
			}
			fragments++
			content.WriteString(event.Fragment)
		}
		if event.Tokens > 0 {
			serverTokens = event.Tokens
		}
		if event.Done {
			break
		}
	}

	elapsed := time.Since(start)

	if fragments == 0 {
		return metrics.Failure(elapsed, metrics.ReasonNoOutput, "stream closed before any fragment arrived")
	}
	text := content.String()
	if strings.ContainsRune(text, '�') {
		return metrics.Failure(elapsed, metrics.ReasonCorrupted, "content contains replacement characters")
	}

	tokens := fragments
	if serverTokens > 0 {
		tokens = serverTokens
	}
	return metrics.StreamSuccess(elapsed, firstToken, tokens, text)
}

// nextEventFunc selects the stream framing reader for the flavor.
func (e *Executor) nextEventFunc(body io.Reader) func(context.Context) ([]byte, error) {
	if e.adapter.StreamFraming() == adapter.FramingNDJSON {
		reader := stream.NewLineReader(body)
		return reader.ReadLine
	}
	reader := stream.NewSSEReader(body)
	return func(ctx context.Context) ([]byte, error) {
		event, err := reader.ReadEvent(ctx)
		if err != nil {
			return nil, err
		}
		return []byte(event.Data), nil
	}
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.profile.Timeout > 0 {
		return context.WithTimeout(ctx, e.profile.Timeout)
	}
	return context.WithCancel(ctx)
}

func (e *Executor) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.profile.TargetURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header = e.adapter.Headers()
	tracing.InjectHTTPHeaders(ctx, req.Header)
	return req, nil
}

func (e *Executor) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("flavor", string(e.profile.Flavor)),
		attribute.String("model", e.profile.Model),
	))
}

func (e *Executor) endSpan(span trace.Span, outcome metrics.Outcome) {
	span.SetAttributes(
		attribute.Bool("ok", outcome.OK),
		attribute.Int("tokens", outcome.Tokens),
	)
	if !outcome.OK {
		span.SetAttributes(attribute.String("reason", string(outcome.Reason)))
	}
	span.End()
}

// classifyTransportErr maps request-side errors onto the failure taxonomy:
// deadline expiry is a timeout, everything else before a complete response is
// a transport failure.
func classifyTransportErr(err error, elapsed time.Duration) metrics.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return metrics.Failure(elapsed, metrics.ReasonTimeout, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return metrics.Failure(elapsed, metrics.ReasonTimeout, err.Error())
	}
	return metrics.Failure(elapsed, metrics.ReasonTransport, err.Error())
}
