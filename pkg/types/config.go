// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package types

// LogFormat selects the slog handler used by the CLI.
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// LogConfig holds logging settings for the CLI.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects text or json output on stderr (default text).
	Format LogFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// MergeConfig holds the conflict policy applied when rendering onto an
// existing document.
type MergeConfig struct {
	// Mode is overwrite, preserve, increment or error (default preserve).
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Warn controls whether conflicting non-empty cells produce warnings.
	Warn bool `json:"warn" yaml:"warn" mapstructure:"warn"`
}

// BatchConfig holds settings for running a file of conversion jobs.
type BatchConfig struct {
	// Parallel is the maximum number of jobs run at once (default 1).
	Parallel int `json:"parallel" yaml:"parallel" mapstructure:"parallel"`
}

// Config groups all settings read from the config file and environment.
type Config struct {
	Log   LogConfig   `json:"log" yaml:"log" mapstructure:"log"`
	Merge MergeConfig `json:"merge" yaml:"merge" mapstructure:"merge"`
	Batch BatchConfig `json:"batch" yaml:"batch" mapstructure:"batch"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: LogText},
		Merge: MergeConfig{Mode: "preserve", Warn: true},
		Batch: BatchConfig{Parallel: 1},
	}
}
