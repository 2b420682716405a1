// Package config provides configuration management for the strscan CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	Verbose     bool              `koanf:"verbose"`
	Output      string            `koanf:"output"`
	Recipe      string            `koanf:"recipe"`
	Named       string            `koanf:"named"`
	Recipes     map[string]string `koanf:"recipes"`
	TrimRest    bool              `koanf:"trim_rest"`
	KeepGoing   bool              `koanf:"keep_going"`
	HistoryFile string            `koanf:"history_file"`
	DB          string            `koanf:"db"`
	Color       string            `koanf:"color"`
}

// Default configuration values.
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=table, non-TTY=text
	DefaultHistoryFile = ".strscan_history"
	DefaultNamed       = "http-status"
	DefaultColor       = "auto"
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Output:      DefaultOutput,
		Named:       DefaultNamed,
		TrimRest:    true,
		HistoryFile: DefaultHistoryFile,
		Color:       DefaultColor,
	}
}
