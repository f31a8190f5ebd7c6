package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a Config.
// Flag values override config file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Profile: Profile{
			Flavor:      FlavorOpenAIChat,
			MaxTokens:   2000,
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		Levels:     append([]int(nil), DefaultLevels...),
		Cooldown:   2 * time.Second,
		OutputDir:  "outputs",
		ConfigFile: configPath,
		Tracing:    TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Profile.TargetURL = strings.TrimSpace(cfg.Profile.TargetURL)
	cfg.Profile.Model = strings.TrimSpace(cfg.Profile.Model)
	if flavor, err := ParseFlavor(string(cfg.Profile.Flavor)); err == nil {
		cfg.Profile.Flavor = flavor
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	profileSettings := settings
	if raw, ok := lookupSetting(settings, "profile"); ok {
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("profile: expected a mapping, got %T", raw)
		}
		profileSettings = nested
	}

	if err := applyProfileSettings(&cfg.Profile, profileSettings); err != nil {
		return err
	}

	if raw, ok := lookupSetting(settings, "levels", "concurrency_levels"); ok {
		levels, err := asIntSlice(raw)
		if err != nil {
			return fmt.Errorf("levels: %w", err)
		}
		if len(levels) > 0 {
			cfg.Levels = levels
		}
	}

	if raw, ok := lookupSetting(settings, "cooldown"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("cooldown: %w", err)
		}
		cfg.Cooldown = dur
	}

	if raw, ok := lookupSetting(settings, "stream"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("stream: %w", err)
		}
		cfg.Stream = val
	}

	if raw, ok := lookupSetting(settings, "prompts_file", "prompts-file", "promptsfile"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("prompts_file: %w", err)
		}
		cfg.PromptsFile = val
	}

	if raw, ok := lookupSetting(settings, "seed"); ok {
		val, err := asInt64(raw)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		cfg.Seed = val
	}

	if raw, ok := lookupSetting(settings, "output_dir", "output-dir", "outputdir"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("output_dir: %w", err)
		}
		if strings.TrimSpace(val) != "" {
			cfg.OutputDir = val
		}
	}

	if raw, ok := lookupSetting(settings, "json_output", "json-output", "jsonoutput"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("json_output: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "log_errors", "log-errors", "logerrors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("log_errors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "skip_preflight", "skip-preflight", "skippreflight"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("skip_preflight: %w", err)
		}
		cfg.SkipPreflight = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("tracing: expected a mapping, got %T", raw)
		}
		if err := applyTracingSettings(&cfg.Tracing, nested); err != nil {
			return err
		}
	}

	return nil
}

// applyProfileSettings applies endpoint profile fields from a settings map.
func applyProfileSettings(profile *Profile, settings map[string]interface{}) error {
	if raw, ok := lookupSetting(settings, "target", "model_url", "url"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		profile.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "flavor", "api_type"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("flavor: %w", err)
		}
		if val != "" {
			profile.Flavor = Flavor(val)
		}
	}

	if raw, ok := lookupSetting(settings, "model", "model_name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("model: %w", err)
		}
		profile.Model = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "api_key", "api-key", "apikey"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("api_key: %w", err)
		}
		profile.APIKey = val
	}

	if raw, ok := lookupSetting(settings, "max_tokens", "max-tokens", "maxtokens"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("max_tokens: %w", err)
		}
		profile.MaxTokens = val
	}

	if raw, ok := lookupSetting(settings, "temperature"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("temperature: %w", err)
		}
		profile.Temperature = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		profile.Timeout = dur
	}

	return nil
}

// applyTracingSettings applies tracing fields from a nested settings map.
func applyTracingSettings(tc *TracingConfig, settings map[string]interface{}) error {
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("tracing.endpoint: %w", err)
		}
		tc.Endpoint = val
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("tracing.protocol: %w", err)
		}
		if val != "" {
			tc.Protocol = val
		}
	}
	if raw, ok := lookupSetting(settings, "service_name", "service-name", "servicename"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("tracing.service_name: %w", err)
		}
		tc.ServiceName = val
	}
	if raw, ok := lookupSetting(settings, "sample_rate", "sample-rate", "samplerate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("tracing.sample_rate: %w", err)
		}
		tc.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("tracing.insecure: %w", err)
		}
		tc.Insecure = val
	}
	return nil
}
