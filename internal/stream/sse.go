// Package stream reads incremental generation output from a response body,
// in either server-sent-event or newline-delimited JSON framing.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Event represents one server-sent event.
type Event struct {
	ID    string
	Event string
	Data  string
}

// SSEReader parses server-sent events from a response body.
type SSEReader struct {
	reader *bufio.Reader
}

// NewSSEReader wraps a streaming response body.
func NewSSEReader(r io.Reader) *SSEReader {
	return &SSEReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next event from the stream. It returns io.EOF when the
// stream closes cleanly.
func (s *SSEReader) ReadEvent(ctx context.Context) (Event, error) {
	event := Event{}
	var dataLines []string

	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// A final event without a trailing blank line still counts.
				if len(dataLines) > 0 {
					event.Data = strings.Join(dataLines, "\n")
					return event, nil
				}
				return Event{}, io.EOF
			}
			return Event{}, fmt.Errorf("read line: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")

		// Empty line marks end of event.
		if line == "" {
			if len(dataLines) > 0 || event.Event != "" || event.ID != "" {
				event.Data = strings.Join(dataLines, "\n")
				return event, nil
			}
			continue
		}

		// Comment line, ignore.
		if strings.HasPrefix(line, ":") {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}

		field := line[:colonIdx]
		value := line[colonIdx+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}

		switch field {
		case "id":
			event.ID = value
		case "event":
			event.Event = value
		case "data":
			dataLines = append(dataLines, value)
		}
	}
}
