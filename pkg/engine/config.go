package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/germanamz/promptcall/pkg/providers/anthropic"
	"github.com/germanamz/promptcall/pkg/providers/claudecli"
	"github.com/germanamz/promptcall/pkg/providers/gemini"
	"gopkg.in/yaml.v3"
)

// Config is the top-level engine configuration.
type Config struct {
	DefaultProvider string           `yaml:"default_provider"`
	Logging         invoker.Logging  `yaml:"logging"`
	Providers       []ProviderConfig `yaml:"providers"`
}

// ProviderConfig describes one named invoker. Fields that do not apply to the
// provider kind are ignored (the CLI surface has no API key, the HTTP
// surfaces have no command).
type ProviderConfig struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`

	Command    string `yaml:"command"`
	MaxRetries *int   `yaml:"max_retries"` // Nil keeps the default of 3.
	RetryWait  string `yaml:"retry_wait"`  // Duration string, e.g. "65s".
}

// Params returns the configured generation defaults for the provider.
func (p ProviderConfig) Params() invoker.Params {
	return invoker.Params{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
}

// RetryWaitDuration parses RetryWait. An empty value yields zero, which the
// CLI invoker treats as "use the default".
func (p ProviderConfig) RetryWaitDuration() (time.Duration, error) {
	if p.RetryWait == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(p.RetryWait)
	if err != nil {
		return 0, fmt.Errorf("provider %q: retry_wait: %w", p.Name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("provider %q: retry_wait must not be negative", p.Name)
	}

	return d, nil
}

// DefaultConfig returns the configuration used when no file is present: one
// provider of each kind, credentials taken from the environment.
func DefaultConfig() Config {
	return Config{
		DefaultProvider: "claude-api",
		Logging:         invoker.DefaultLogging,
		Providers: []ProviderConfig{
			{
				Name:   "claude-api",
				Kind:   anthropic.Kind,
				APIKey: os.Getenv("ANTHROPIC_API_KEY"),
				Model:  anthropic.DefaultModel,
			},
			{
				Name:    "claude-cli",
				Kind:    claudecli.Kind,
				Command: claudecli.DefaultCommand,
				Model:   claudecli.DefaultModel,
			},
			{
				Name:   "gemini",
				Kind:   gemini.Kind,
				APIKey: os.Getenv("GEMINI_API_KEY"),
				Model:  gemini.DefaultModel,
			},
		},
	}
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so API keys can live in the environment (or a .env file)
// instead of the config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Config{Logging: invoker.DefaultLogging}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// LoadConfigOrDefault behaves like LoadConfig but falls back to DefaultConfig
// when path does not exist.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return cfg, err
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("engine: config: at least one provider is required")
	}

	names := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("engine: config: provider name is required")
		}
		if p.Kind == "" {
			return fmt.Errorf("engine: config: provider %q: kind is required", p.Name)
		}
		if _, ok := getFactory(p.Kind); !ok {
			return fmt.Errorf("engine: config: provider %q: unknown kind %q", p.Name, p.Kind)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("engine: config: duplicate provider name %q", p.Name)
		}
		if _, err := p.RetryWaitDuration(); err != nil {
			return fmt.Errorf("engine: config: %w", err)
		}
		if p.MaxRetries != nil && *p.MaxRetries < 0 {
			return fmt.Errorf("engine: config: provider %q: max_retries must not be negative", p.Name)
		}
		names[p.Name] = struct{}{}
	}

	if c.DefaultProvider != "" {
		if _, ok := names[c.DefaultProvider]; !ok {
			return fmt.Errorf("engine: config: default provider %q not found", c.DefaultProvider)
		}
	}

	return nil
}
