package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// maxLineBytes bounds a single NDJSON line; generation fragments are small
// but a final event can carry full server timings.
const maxLineBytes = 1 << 20

// LineReader parses newline-delimited JSON objects from a response body.
type LineReader struct {
	scanner *bufio.Scanner
}

// NewLineReader wraps a streaming response body.
func NewLineReader(r io.Reader) *LineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &LineReader{scanner: scanner}
}

// ReadLine returns the next non-empty line. It returns io.EOF when the
// stream closes cleanly.
func (l *LineReader) ReadLine(ctx context.Context) ([]byte, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !l.scanner.Scan() {
			if err := l.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read line: %w", err)
			}
			return nil, io.EOF
		}
		line := l.scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}
		// Copy out: the scanner reuses its buffer on the next Scan.
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
}
