package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/licor/internal/core"
	"github.com/JonMunkholm/licor/internal/export"
)

// LookupFunc returns the value of a named variable and whether it is set.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup instead of the process
// environment.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from variables.
func loadStruct(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary name, then alternate
		value, _ := lookup(envName)
		if value == "" && envAlt != "" {
			value, _ = lookup(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if _, err := core.CheckCombination(c.Convert.Device, c.Convert.Config); err != nil {
		errs = append(errs, fmt.Sprintf("LICOR_DEVICE/LICOR_CONFIG: %v", err))
	}
	if _, err := export.ParseFormat(c.Convert.Format); err != nil {
		errs = append(errs, fmt.Sprintf("LICOR_FORMAT (%q) must be one of: %s",
			c.Convert.Format, strings.Join(export.Formats(), ", ")))
	}
	if _, err := export.ParseCompression(c.Convert.Compression); err != nil {
		errs = append(errs, fmt.Sprintf("LICOR_COMPRESSION: %v", err))
	}
	if c.Convert.MaxFileSize <= 0 {
		errs = append(errs, "LICOR_MAX_FILE_SIZE must be positive")
	}

	if c.Batch.Workers <= 0 {
		errs = append(errs, fmt.Sprintf("LICOR_WORKERS (%d) must be positive", c.Batch.Workers))
	}
	if c.Batch.OutputDir == "" {
		errs = append(errs, "LICOR_OUTPUT_DIR must not be empty")
	}
	if c.Batch.Timeout < 0 {
		errs = append(errs, "LICOR_TIMEOUT must be non-negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a one-line representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Convert: {Device: %q, Config: %q, Format: %q, Compression: %q, PreserveNames: %v, Strict: %v}, ",
		c.Convert.Device, c.Convert.Config, c.Convert.Format, c.Convert.Compression,
		c.Convert.PreserveNames, c.Convert.Strict))
	b.WriteString(fmt.Sprintf("Batch: {OutputDir: %q, Workers: %d, FailFast: %v, Timeout: %s}, ",
		c.Batch.OutputDir, c.Batch.Workers, c.Batch.FailFast, c.Batch.Timeout))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Metrics: {File: %q}", c.Metrics.File))
	b.WriteString("}")
	return b.String()
}
