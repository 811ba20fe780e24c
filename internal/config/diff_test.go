package config_test

import (
	"testing"

	"github.com/nongzhi-ai/nongzhi/internal/config"
)

func boolPtr(b bool) *bool { return &b }

func baseConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{ListenAddr: ":8080", LogLevel: config.LogInfo},
		LLM: config.LLMConfig{
			Provider:       "deepseek",
			Model:          "deepseek-chat",
			ReasoningModel: "deepseek-reasoner",
			Temperature:    0.7,
			MaxRounds:      10,
		},
		Collector: config.CollectorConfig{IntervalSeconds: 30},
	}
}

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()

	d := config.Diff(old, new)
	if d.LogLevelChanged || d.LLMChanged || d.CollectorChanged {
		t.Errorf("expected empty diff, got %+v", d)
	}
}

func TestDiff_LogLevel(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()
	new.Server.LogLevel = config.LogDebug

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("LogLevelChanged should be true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("NewLogLevel = %q, want debug", d.NewLogLevel)
	}
	if d.LLMChanged || d.CollectorChanged {
		t.Error("unrelated sections should not be flagged")
	}
}

func TestDiff_LLMParameters(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"model", func(c *config.Config) { c.LLM.Model = "deepseek-chat-v2" }},
		{"reasoning_model", func(c *config.Config) { c.LLM.ReasoningModel = "deepseek-r1" }},
		{"temperature", func(c *config.Config) { c.LLM.Temperature = 1.2 }},
		{"max_rounds", func(c *config.Config) { c.LLM.MaxRounds = 5 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			old := baseConfig()
			new := baseConfig()
			tc.mutate(new)

			d := config.Diff(old, new)
			if !d.LLMChanged {
				t.Error("LLMChanged should be true")
			}
		})
	}
}

func TestDiff_ProviderChangeNotHotReloadable(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()
	new.LLM.Provider = "openai"
	new.LLM.APIKey = "sk-other"
	new.LLM.BaseURL = "https://api.openai.com/v1"

	d := config.Diff(old, new)
	if d.LLMChanged {
		t.Error("provider, key, and endpoint changes should not flag LLMChanged")
	}
}

func TestDiff_Collector(t *testing.T) {
	t.Parallel()
	old := baseConfig()
	new := baseConfig()
	new.Collector.Enabled = boolPtr(false)

	d := config.Diff(old, new)
	if !d.CollectorChanged {
		t.Error("CollectorChanged should be true when collector is disabled")
	}

	new2 := baseConfig()
	new2.Collector.IntervalSeconds = 60
	d2 := config.Diff(old, new2)
	if !d2.CollectorChanged {
		t.Error("CollectorChanged should be true when the interval changes")
	}
}

func TestCollector_IsEnabled(t *testing.T) {
	t.Parallel()
	var c config.CollectorConfig
	if !c.IsEnabled() {
		t.Error("unset Enabled should mean enabled")
	}
	c.Enabled = boolPtr(false)
	if c.IsEnabled() {
		t.Error("Enabled=false should mean disabled")
	}
}
