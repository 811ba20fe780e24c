// Package config provides the configuration schema, loader, file watcher, and
// LLM provider registry for the Nongzhi farm assistant.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the Nongzhi server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Slog maps l to the corresponding slog level. Unknown values map to info.
func (l LogLevel) Slog() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

// StorageDriver selects the farm data backend.
type StorageDriver string

const (
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

// IsValid reports whether d is a recognised storage driver.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	}
	return false
}

// Config is the root configuration structure for Nongzhi.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Collector CollectorConfig `yaml:"collector"`
}

// ServerConfig holds network and logging settings for the Nongzhi server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// LLMConfig selects and configures the model backend driving the assistant.
type LLMConfig struct {
	// Provider selects the backend implementation registered in the
	// [Registry] (e.g., "deepseek", "openai", "ollama").
	Provider string `yaml:"provider"`

	// APIKey authenticates against the provider's API. Environment variable
	// references like ${DEEPSEEK_API_KEY} are expanded at load time.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model is the default chat model (e.g., "deepseek-chat").
	Model string `yaml:"model"`

	// ReasoningModel is used for sessions with reasoning mode enabled
	// (e.g., "deepseek-reasoner"). Empty falls back to Model.
	ReasoningModel string `yaml:"reasoning_model"`

	// Temperature controls output randomness in [0.0, 2.0]. Zero means the
	// provider default.
	Temperature float64 `yaml:"temperature"`

	// MaxRounds caps model rounds per chat turn. Zero means the built-in
	// default.
	MaxRounds int `yaml:"max_rounds"`
}

// StorageConfig selects where sensor readings and operation logs live.
type StorageConfig struct {
	// Driver selects the backend. Empty defaults to sqlite.
	Driver StorageDriver `yaml:"driver"`

	// Path is the SQLite database file. Empty defaults to "farm.db".
	Path string `yaml:"path"`

	// DSN is the PostgreSQL connection string, required when Driver is
	// "postgres". Environment variable references are expanded at load time.
	DSN string `yaml:"dsn"`
}

// CollectorConfig controls the background sensor sampling loop.
type CollectorConfig struct {
	// Enabled switches the collector on. Unset means enabled.
	Enabled *bool `yaml:"enabled"`

	// IntervalSeconds is the sampling period. Zero means the built-in
	// default of 30 seconds.
	IntervalSeconds int `yaml:"interval_seconds"`
}

// IsEnabled reports whether the collector should run.
func (c CollectorConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Interval returns the sampling period as a duration, zero when unset.
func (c CollectorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
