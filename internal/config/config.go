package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dpup/latconv/internal/lib/encoder"
)

// EnvPrefix is the prefix of environment overrides, e.g. LATCONV_CONVERT__FORMAT=gpx
const EnvPrefix = "LATCONV_"

// Config represents the complete converter configuration
type Config struct {
	Convert  ConvertConfig `koanf:"convert"`
	Log      LogConfig     `koanf:"log"`
	Progress bool          `koanf:"progress"` // Show a byte counter on stderr while writing
}

// ConvertConfig holds the output settings
type ConvertConfig struct {
	Format   string `koanf:"format"`   // One of kml, json, csv, js, gpx
	Variable string `koanf:"variable"` // Global variable name for js output
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `koanf:"level"` // zerolog level name
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Convert: ConvertConfig{
			Format:   string(encoder.DefaultFormat),
			Variable: encoder.DefaultVariable,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and LATCONV_ environment variables, in increasing order of precedence.
// Callers apply command line overrides and then call Validate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	err := k.Load(confmap.Provider(map[string]interface{}{
		"convert.format":   defaults.Convert.Format,
		"convert.variable": defaults.Convert.Variable,
		"log.level":        defaults.Log.Level,
		"progress":         defaults.Progress,
	}, "."), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// LATCONV_CONVERT__VARIABLE -> convert.variable
	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the output settings
func (c *Config) Validate() error {
	if _, err := encoder.ParseFormat(c.Convert.Format); err != nil {
		return err
	}
	if c.Convert.Format == string(encoder.JS) && c.Convert.Variable == "" {
		return encoder.ErrEmptyVariable
	}
	return nil
}
