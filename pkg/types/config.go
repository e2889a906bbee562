package types

import "time"

// HTTPConfig holds shared HTTP settings used by every source.
type HTTPConfig struct {
	// Timeout bounds each page request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent to providers
	// (e.g. "carsearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	// Sources lists the source names to query. Empty means all registered sources.
	Sources []string `json:"sources" yaml:"sources" mapstructure:"sources"`

	// Deadline bounds the whole fan-out. Zero means no deadline.
	Deadline time.Duration `json:"deadline" yaml:"deadline" mapstructure:"deadline"`
}

// OutputFormat selects the renderer.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatYAML OutputFormat = "yaml"
)

// OutputConfig holds settings for rendering results.
type OutputConfig struct {
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// ArchiveConfig holds settings for the optional run archive.
type ArchiveConfig struct {
	// DSN is "sqlite:<path>" or a postgres:// URL. Empty disables archiving.
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// MetricsConfig holds settings for the metrics textfile.
type MetricsConfig struct {
	// File is written in Prometheus textfile format after each run.
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a logrus level name (debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all configuration read from file, environment and flags.
type Config struct {
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Output  OutputConfig  `json:"output" yaml:"output" mapstructure:"output"`
	Archive ArchiveConfig `json:"archive" yaml:"archive" mapstructure:"archive"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
