package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/dittohttp/internal/logger"
	httpadapter "github.com/marmos91/dittohttp/pkg/adapter/http"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config represents the complete DittoHTTP configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DITTOHTTP_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each statistics store defines its own configuration type. The Stats
// section holds one map per store type and only the one matching Type is
// decoded.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains process-wide settings
	Server ServerConfig `mapstructure:"server"`

	// Adapters contains protocol adapter configurations
	Adapters AdaptersConfig `mapstructure:"adapters"`

	// Stats selects and configures the access statistics store
	Stats StatsConfig `mapstructure:"stats"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains process-wide settings.
type ServerConfig struct {
	// ShutdownTimeout bounds how long adapters get to stop
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// Metrics configures the Prometheus/statistics HTTP endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig controls the metrics server.
type MetricsConfig struct {
	// Enabled starts the metrics server and Prometheus collection
	Enabled bool `mapstructure:"enabled"`

	// Port the metrics server listens on
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// AdaptersConfig contains all protocol adapter configurations.
type AdaptersConfig struct {
	// HTTP uses the adapter's own config type directly to avoid duplication.
	HTTP httpadapter.HTTPConfig `mapstructure:"http"`
}

// StatsConfig selects the access statistics store.
type StatsConfig struct {
	// Type specifies which store implementation to use
	// Valid values: none, memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=none memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// Load loads configuration from file, environment, and defaults.
//
// When no configuration file exists, defaults are used and a commented
// template is written where the file was expected, so the next run has
// something to edit. Failing to write the template is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	normalizeMillis(v, "adapters.http.timeout")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The HTTP adapter is the only one; it stays on unless turned off.
	if !v.IsSet("adapters.http.enabled") {
		cfg.Adapters.HTTP.Enabled = true
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	if !found {
		target := configPath
		if target == "" {
			target = GetDefaultConfigPath()
		}
		if err := InitConfigAt(target, false); err != nil {
			logger.Warn("Config file not found and template could not be written: %v", err)
		} else {
			logger.Info("Config file not found: default configuration written to %s", target)
		}
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DITTOHTTP_ADAPTERS_HTTP_PORT=8080
	v.SetEnvPrefix("DITTOHTTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	// Default location: $XDG_CONFIG_HOME/dittohttp/config.{yaml,toml}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// bindEnvKeys registers every known key so that environment overrides
// apply even when the key is absent from the file. AutomaticEnv alone
// only consults keys viper already knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"logging.level", "logging.format", "logging.output",
		"server.shutdown_timeout", "server.metrics.enabled", "server.metrics.port",
		"adapters.http.enabled", "adapters.http.name", "adapters.http.html_root",
		"adapters.http.port", "adapters.http.threads", "adapters.http.timeout",
		"adapters.http.backlog", "adapters.http.buffer_size", "adapters.http.teapot",
		"adapters.http.rate_limit.requests_per_second", "adapters.http.rate_limit.burst",
		"adapters.http.shutdown_timeout", "adapters.http.metrics_log_interval",
		"stats.type",
	} {
		_ = v.BindEnv(key)
	}
}

// normalizeMillis rewrites a bare number under key (timeout: 1000) as that
// many milliseconds. Values with a unit ("1s", "250ms") are left alone.
func normalizeMillis(v *viper.Viper, key string) {
	if !v.IsSet(key) {
		return
	}
	raw := v.Get(key)
	if _, ok := raw.(time.Duration); ok {
		return
	}
	n, err := cast.ToInt64E(raw)
	if err != nil {
		return
	}
	v.Set(key, time.Duration(n)*time.Millisecond)
}

// readConfigFile reads the configuration file. A missing file is not an
// error; found reports whether one was read.
func readConfigFile(v *viper.Viper) (found bool, err error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dittohttp")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "dittohttp")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// ConfigExists checks if a config file exists at the default location.
func ConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
