// Package preflight verifies a target is reachable and responsive before a
// sweep spends minutes hammering it.
package preflight

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tokensweep/tokensweep/internal/config"
	"github.com/tokensweep/tokensweep/internal/metrics"
	"github.com/tokensweep/tokensweep/internal/probe"
)

const dialTimeout = 5 * time.Second

// Report captures what the preflight observed.
type Report struct {
	Address     string
	DialElapsed time.Duration
	Probe       metrics.Outcome
}

// Run performs the two-stage check: a TCP dial against the target host, then
// a single streaming one-token probe. The probe uses a trimmed copy of the
// profile so the check stays cheap regardless of the sweep settings.
func Run(ctx context.Context, profile *config.Profile, tracer trace.Tracer) (*Report, error) {
	addr, err := targetAddress(profile.TargetURL)
	if err != nil {
		return nil, err
	}

	report := &Report{Address: addr}

	dialStart := time.Now()
	conn, err := (&net.Dialer{Timeout: dialTimeout}).DialContext(ctx, "tcp", addr)
	report.DialElapsed = time.Since(dialStart)
	if err != nil {
		return report, fmt.Errorf("target %s is unreachable: %w", addr, err)
	}
	conn.Close()

	trimmed := *profile
	trimmed.MaxTokens = 1
	trimmed.Temperature = 0.1

	exec, err := probe.New(&trimmed, tracer)
	if err != nil {
		return report, err
	}

	report.Probe = exec.RunStream(ctx, "ping")
	if !report.Probe.OK {
		if report.Probe.Status == 401 {
			return report, fmt.Errorf("authentication rejected (HTTP 401): check the API key")
		}
		return report, fmt.Errorf("probe failed (%s): %s", report.Probe.Reason, report.Probe.Detail)
	}
	return report, nil
}

// targetAddress extracts host:port from the target URL, filling in the
// scheme's default port when none is given.
func targetAddress(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse target url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("target url %q has no host", target)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(host, port), nil
}
