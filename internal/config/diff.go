package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// LLMChanged reports changes to the generation parameters that apply
	// per turn (model, reasoning model, temperature, round cap). Provider,
	// key, and endpoint changes require a restart and are not tracked.
	LLMChanged bool

	// CollectorChanged reports changes to the sampling loop settings.
	CollectorChanged bool
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.LLM.Model != new.LLM.Model ||
		old.LLM.ReasoningModel != new.LLM.ReasoningModel ||
		old.LLM.Temperature != new.LLM.Temperature ||
		old.LLM.MaxRounds != new.LLM.MaxRounds {
		d.LLMChanged = true
	}

	if old.Collector.IsEnabled() != new.Collector.IsEnabled() ||
		old.Collector.IntervalSeconds != new.Collector.IntervalSeconds {
		d.CollectorChanged = true
	}

	return d
}
