package prompts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPoolSeededOrderIsReproducible(t *testing.T) {
	list := []string{"a", "b", "c", "d", "e"}
	ctx := context.Background()

	first := NewPool(list, 99)
	second := NewPool(list, 99)

	for i := 0; i < 20; i++ {
		p1, err := first.Next(ctx)
		if err != nil {
			t.Fatalf("first.Next: %v", err)
		}
		p2, err := second.Next(ctx)
		if err != nil {
			t.Fatalf("second.Next: %v", err)
		}
		if p1 != p2 {
			t.Fatalf("draw %d diverged: %q vs %q", i, p1, p2)
		}
	}
}

func TestPoolEmptyFallsBackToDefaults(t *testing.T) {
	pool := NewPool(nil, 1)
	if pool.Len() != len(DefaultPrompts()) {
		t.Errorf("Len = %d, want %d", pool.Len(), len(DefaultPrompts()))
	}
}

func TestPoolCanceledContext(t *testing.T) {
	pool := NewPool([]string{"x"}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := pool.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	if err := os.WriteFile(path, []byte(`["first prompt", "second prompt"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	prompts, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(prompts) != 2 || prompts[0] != "first prompt" {
		t.Errorf("prompts = %v", prompts)
	}
}

func TestLoadJSONRejectsEmptyAndBlank(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJSON(empty); err == nil {
		t.Error("expected error for empty array")
	}

	blank := filepath.Join(dir, "blank.json")
	if err := os.WriteFile(blank, []byte(`["ok", "  "]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadJSON(blank); err == nil {
		t.Error("expected error for blank prompt")
	}

	if _, err := LoadJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
