package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load for fields left empty in the file.
const (
	DefaultListenAddr     = ":8080"
	DefaultProvider       = "deepseek"
	DefaultBaseURL        = "https://api.deepseek.com"
	DefaultModel          = "deepseek-chat"
	DefaultReasoningModel = "deepseek-reasoner"
)

// ValidProviderNames lists the backends known to work with the assistant.
// Other names are accepted but logged as a warning, since any-llm can route
// to providers beyond this list.
var ValidProviderNames = []string{
	"deepseek", "openai", "anthropic", "gemini", "ollama", "mistral", "groq",
}

// Load reads and validates the configuration file at path, applying defaults
// for unset fields.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: load %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes, defaults, and validates a configuration read from r.
// Unknown YAML fields are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Provider == DefaultProvider && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.Provider == DefaultProvider && c.LLM.ReasoningModel == "" {
		c.LLM.ReasoningModel = DefaultReasoningModel
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageSQLite
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "farm.db"
	}

	c.LLM.APIKey = os.ExpandEnv(c.LLM.APIKey)
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
}

// Validate checks the configuration for inconsistencies. All problems are
// reported at once via a joined error.
func (c *Config) Validate() error {
	var errs []error

	if !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level: unknown level %q", c.Server.LogLevel))
	}
	if !slices.Contains(ValidProviderNames, c.LLM.Provider) {
		slog.Warn("unrecognised llm provider, passing through as-is", "provider", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature: %v outside [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.MaxRounds < 0 {
		errs = append(errs, fmt.Errorf("llm.max_rounds: must not be negative, got %d", c.LLM.MaxRounds))
	}
	if !c.Storage.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == StoragePostgres && c.Storage.DSN == "" {
		errs = append(errs, errors.New("storage.dsn: required for the postgres driver"))
	}
	if c.Collector.IntervalSeconds < 0 {
		errs = append(errs, fmt.Errorf("collector.interval_seconds: must not be negative, got %d", c.Collector.IntervalSeconds))
	}

	return errors.Join(errs...)
}
