package config

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	cfg := validConfig()
	cfg.Levels = []int{1, 3}
	cfg.Cooldown = 1500 * time.Millisecond
	cfg.Stream = true
	cfg.Seed = 11
	cfg.Tracing.Endpoint = "collector:4317"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Profile.TargetURL != cfg.Profile.TargetURL {
		t.Errorf("TargetURL = %q", loaded.Profile.TargetURL)
	}
	if loaded.Profile.Flavor != cfg.Profile.Flavor {
		t.Errorf("Flavor = %q", loaded.Profile.Flavor)
	}
	if loaded.Profile.APIKey != cfg.Profile.APIKey {
		t.Errorf("APIKey = %q", loaded.Profile.APIKey)
	}
	if loaded.Profile.Timeout != cfg.Profile.Timeout {
		t.Errorf("Timeout = %s, want %s", loaded.Profile.Timeout, cfg.Profile.Timeout)
	}
	if !reflect.DeepEqual(loaded.Levels, cfg.Levels) {
		t.Errorf("Levels = %v, want %v", loaded.Levels, cfg.Levels)
	}
	if loaded.Cooldown != cfg.Cooldown {
		t.Errorf("Cooldown = %s, want %s", loaded.Cooldown, cfg.Cooldown)
	}
	if !loaded.Stream {
		t.Error("Stream = false, want true")
	}
	if loaded.Seed != 11 {
		t.Errorf("Seed = %d, want 11", loaded.Seed)
	}
	if loaded.Tracing.Endpoint != "collector:4317" {
		t.Errorf("Tracing.Endpoint = %q", loaded.Tracing.Endpoint)
	}
}
