// Package config provides centralized configuration for the licor tool.
// It loads settings from environment variables with defaults and validates
// them on startup so a bad device/config pairing or output format fails
// before any file is read. Command-line flags override the loaded values.
package config

import "time"

// Config holds all tool configuration.
// All settings can be configured via environment variables.
type Config struct {
	Convert ConvertConfig
	Batch   BatchConfig
	Logging LoggingConfig
	Metrics MetricsConfig
}

// ConvertConfig holds per-file parse and encode settings.
type ConvertConfig struct {
	// Device is the instrument model, e.g. 6800 (default: 6800)
	Device string `env:"LICOR_DEVICE" default:"6800"`

	// Config is the measurement configuration (default: standard)
	Config string `env:"LICOR_CONFIG" default:"standard"`

	// Format is the output format: parquet, csv or json (default: parquet)
	Format string `env:"LICOR_FORMAT" default:"parquet"`

	// Compression is the parquet codec (default: snappy)
	Compression string `env:"LICOR_COMPRESSION" default:"snappy"`

	// PreserveNames keeps instrument names as identifiers (default: true)
	PreserveNames bool `env:"LICOR_PRESERVE_NAMES" default:"true"`

	// Strict rejects unparseable values instead of falling back to text
	Strict bool `env:"LICOR_STRICT" default:"false"`

	// MaxFileSize is the largest input accepted, in bytes (default: 512MB)
	MaxFileSize int64 `env:"LICOR_MAX_FILE_SIZE" default:"536870912"`
}

// BatchConfig holds multi-file conversion settings.
type BatchConfig struct {
	// OutputDir receives one output file per input (default: .)
	OutputDir string `env:"LICOR_OUTPUT_DIR" envAlt:"LICOR_OUTPUT" default:"."`

	// Workers is the number of files converted in parallel (default: 4)
	Workers int `env:"LICOR_WORKERS" default:"4"`

	// FailFast stops scheduling new files after the first failure
	FailFast bool `env:"LICOR_FAIL_FAST" default:"false"`

	// Timeout bounds a whole batch run; 0 disables it (default: 0s)
	Timeout time.Duration `env:"LICOR_TIMEOUT" default:"0s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	// File is the node-exporter textfile written after a batch.
	// Empty disables metrics output.
	File string `env:"LICOR_METRICS_FILE"`
}
