package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLineReaderSkipsBlankLines(t *testing.T) {
	input := "{\"a\":1}\n\n  \n{\"b\":2}\n"
	reader := NewLineReader(strings.NewReader(input))
	ctx := context.Background()

	line, err := reader.ReadLine(ctx)
	if err != nil {
		t.Fatalf("first line: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("first line = %q", line)
	}

	line, err = reader.ReadLine(ctx)
	if err != nil {
		t.Fatalf("second line: %v", err)
	}
	if string(line) != `{"b":2}` {
		t.Errorf("second line = %q", line)
	}

	if _, err := reader.ReadLine(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestLineReaderCopiesOut(t *testing.T) {
	reader := NewLineReader(strings.NewReader("{\"first\":true}\n{\"second\":true}\n"))
	ctx := context.Background()

	first, err := reader.ReadLine(ctx)
	if err != nil {
		t.Fatalf("first line: %v", err)
	}
	if _, err := reader.ReadLine(ctx); err != nil {
		t.Fatalf("second line: %v", err)
	}
	// The first slice must survive subsequent reads.
	if string(first) != `{"first":true}` {
		t.Errorf("first line mutated: %q", first)
	}
}

func TestLineReaderCanceledContext(t *testing.T) {
	reader := NewLineReader(strings.NewReader("{}\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := reader.ReadLine(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
