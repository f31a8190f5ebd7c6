package config

import (
	"fmt"
	"strings"
	"time"
)

// Flavor identifies the wire convention a text-generation endpoint speaks.
type Flavor string

const (
	// FlavorOpenAIChat is the standard chat-completions convention.
	FlavorOpenAIChat Flavor = "openai-chat"
	// FlavorCompatChat is a third-party endpoint that mimics the chat convention.
	FlavorCompatChat Flavor = "compat-chat"
	// FlavorVLLMCompletion is a local vLLM raw-prompt completion endpoint.
	FlavorVLLMCompletion Flavor = "vllm-completion"
	// FlavorOllamaGenerate is a local Ollama /api/generate endpoint.
	FlavorOllamaGenerate Flavor = "ollama-generate"
)

// flavorAliases maps shorthand names accepted in config files and flags.
var flavorAliases = map[string]Flavor{
	"openai":          FlavorOpenAIChat,
	"openai-chat":     FlavorOpenAIChat,
	"thirdparty":      FlavorCompatChat,
	"compat":          FlavorCompatChat,
	"compat-chat":     FlavorCompatChat,
	"vllm":            FlavorVLLMCompletion,
	"vllm-completion": FlavorVLLMCompletion,
	"ollama":          FlavorOllamaGenerate,
	"ollama-generate": FlavorOllamaGenerate,
}

// ParseFlavor resolves a flavor name or alias to its canonical Flavor.
func ParseFlavor(s string) (Flavor, error) {
	if f, ok := flavorAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unsupported flavor %q (supported: openai-chat, compat-chat, vllm-completion, ollama-generate)", s)
}

// Credentialed reports whether the flavor requires an API key.
func (f Flavor) Credentialed() bool {
	return f == FlavorOpenAIChat || f == FlavorCompatChat
}

// Profile describes one target text-generation service. It is immutable once
// a sweep starts; every component receives it by read-only pointer.
type Profile struct {
	Flavor      Flavor        `mapstructure:"flavor"`
	TargetURL   string        `mapstructure:"target"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Enabled reports whether span export is configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// Config is the full benchmark configuration: the endpoint profile plus the
// sweep plan and output options.
type Config struct {
	Profile     Profile       `mapstructure:"profile"`
	Levels      []int         `mapstructure:"levels"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
	Stream      bool          `mapstructure:"stream"`
	PromptsFile string        `mapstructure:"prompts_file"`
	Seed        int64         `mapstructure:"seed"`

	OutputDir     string `mapstructure:"output_dir"`
	JSONOutput    bool   `mapstructure:"json_output"`
	Dashboard     bool   `mapstructure:"dashboard"`
	LogErrors     bool   `mapstructure:"log_errors"`
	SkipPreflight bool   `mapstructure:"skip_preflight"`

	Tracing    TracingConfig `mapstructure:"tracing"`
	ConfigFile string        `mapstructure:"-"`

	// SaveConfig, when set, writes the effective configuration to this path
	// before the sweep starts.
	SaveConfig string `mapstructure:"-"`
}

// DefaultLevels is the concurrency sweep used when none is configured.
var DefaultLevels = []int{1, 2, 4, 8, 10}

// ValidationError aggregates every configuration issue found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual validation problems.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Profile.TargetURL) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}
	if strings.TrimSpace(c.Profile.Model) == "" {
		issues = append(issues, "model is required")
	}
	if _, err := ParseFlavor(string(c.Profile.Flavor)); err != nil {
		issues = append(issues, err.Error())
	} else if c.Profile.Flavor.Credentialed() && strings.TrimSpace(c.Profile.APIKey) == "" {
		issues = append(issues, fmt.Sprintf("api_key is required for flavor %q", c.Profile.Flavor))
	}
	if c.Profile.MaxTokens < 1 {
		issues = append(issues, "max_tokens must be >= 1")
	}
	if c.Profile.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}

	if len(c.Levels) == 0 {
		issues = append(issues, "levels must not be empty")
	}
	for idx, level := range c.Levels {
		if level < 1 {
			issues = append(issues, fmt.Sprintf("levels[%d]: concurrency must be >= 1", idx))
		}
	}
	if c.Cooldown < 0 {
		issues = append(issues, "cooldown must be >= 0")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		issues = append(issues, "output dir must not be empty")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing.sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
