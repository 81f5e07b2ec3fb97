package config

import (
	"strings"
	"time"

	httpadapter "github.com/marmos91/dittohttp/pkg/adapter/http"
	"github.com/marmos91/dittohttp/pkg/metrics"
	statsMemory "github.com/marmos91/dittohttp/pkg/stats/memory"
)

// Defaults not owned by a component package.
const (
	DefaultHTTPPort        = 4080
	DefaultShutdownTimeout = 30 * time.Second
	DefaultStatsType       = "memory"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyAdaptersDefaults(&cfg.Adapters, cfg.Server.ShutdownTimeout)
	applyStatsDefaults(&cfg.Stats)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = metrics.DefaultPort
	}
}

// applyAdaptersDefaults enables the HTTP adapter when it looks unconfigured
// (no port given), so a config-less run still serves. An explicit
// enabled: false next to a port keeps it off.
func applyAdaptersDefaults(cfg *AdaptersConfig, shutdownTimeout time.Duration) {
	if !cfg.HTTP.Enabled && cfg.HTTP.Port == 0 {
		cfg.HTTP.Enabled = true
	}

	applyHTTPDefaults(&cfg.HTTP, shutdownTimeout)
}

func applyHTTPDefaults(cfg *httpadapter.HTTPConfig, shutdownTimeout time.Duration) {
	if cfg.Name == "" {
		cfg.Name = httpadapter.DefaultName
	}
	if cfg.HTMLRoot == "" {
		cfg.HTMLRoot = httpadapter.DefaultHTMLRoot
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultHTTPPort
	}
	if cfg.Threads == 0 {
		cfg.Threads = httpadapter.DefaultThreads
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = httpadapter.DefaultTimeout
	}
	if cfg.Backlog == 0 {
		cfg.Backlog = httpadapter.DefaultBacklog
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = httpadapter.DefaultBufferSize
	}
	if cfg.BufferSize < httpadapter.MinBufferSize {
		cfg.BufferSize = httpadapter.MinBufferSize
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = shutdownTimeout
	}
	if cfg.MetricsLogInterval == 0 {
		cfg.MetricsLogInterval = httpadapter.DefaultMetricsLogInterval
	}
}

func applyStatsDefaults(cfg *StatsConfig) {
	if cfg.Type == "" {
		cfg.Type = DefaultStatsType
	}
	cfg.Type = strings.ToLower(cfg.Type)
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if _, ok := cfg.Memory["max_paths"]; !ok {
		cfg.Memory["max_paths"] = statsMemory.DefaultMaxPaths
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Adapters: AdaptersConfig{
			HTTP: httpadapter.HTTPConfig{Enabled: true},
		},
		Stats: StatsConfig{
			Badger: map[string]any{
				"db_path": "/var/lib/dittohttp/stats",
			},
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
