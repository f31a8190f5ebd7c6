package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Save writes the effective configuration to path as YAML, using the same
// keys Load accepts so the file can be fed back via --config.
func (c Config) Save(path string) error {
	doc := map[string]interface{}{
		"target":      c.Profile.TargetURL,
		"flavor":      string(c.Profile.Flavor),
		"model":       c.Profile.Model,
		"max_tokens":  c.Profile.MaxTokens,
		"temperature": c.Profile.Temperature,
		"timeout":     c.Profile.Timeout.String(),

		"levels":         c.Levels,
		"cooldown":       c.Cooldown.String(),
		"stream":         c.Stream,
		"output_dir":     c.OutputDir,
		"json_output":    c.JSONOutput,
		"dashboard":      c.Dashboard,
		"log_errors":     c.LogErrors,
		"skip_preflight": c.SkipPreflight,
	}
	if c.Profile.APIKey != "" {
		doc["api_key"] = c.Profile.APIKey
	}
	if c.PromptsFile != "" {
		doc["prompts_file"] = c.PromptsFile
	}
	if c.Seed != 0 {
		doc["seed"] = c.Seed
	}
	if c.Tracing.Enabled() {
		doc["tracing"] = map[string]interface{}{
			"endpoint":     c.Tracing.Endpoint,
			"protocol":     c.Tracing.Protocol,
			"service_name": c.Tracing.ServiceName,
			"sample_rate":  c.Tracing.SampleRate,
			"insecure":     c.Tracing.Insecure,
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
