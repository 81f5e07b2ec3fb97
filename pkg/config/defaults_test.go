package config

import (
	"testing"
	"time"

	httpadapter "github.com/marmos91/dittohttp/pkg/adapter/http"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "warn"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level normalized to WARN, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Output != "stdout" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestApplyDefaults_HTTP(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	h := cfg.Adapters.HTTP
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"enabled", h.Enabled, true},
		{"name", h.Name, "HTTP Server"},
		{"html_root", h.HTMLRoot, "/var/www/html"},
		{"port", h.Port, 4080},
		{"threads", h.Threads, 20},
		{"timeout", h.Timeout, 1000 * time.Millisecond},
		{"backlog", h.Backlog, 100},
		{"buffer_size", h.BufferSize, 4096},
		{"teapot", h.Teapot, false},
		{"shutdown_timeout", h.ShutdownTimeout, 30 * time.Second},
		{"metrics_log_interval", h.MetricsLogInterval, 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, tt.got)
			}
		})
	}
}

func TestApplyDefaults_BufferSizeFloor(t *testing.T) {
	cfg := &Config{Adapters: AdaptersConfig{HTTP: httpadapter.HTTPConfig{BufferSize: 100}}}
	ApplyDefaults(cfg)

	if cfg.Adapters.HTTP.BufferSize != httpadapter.MinBufferSize {
		t.Errorf("Expected buffer size raised to %d, got %d", httpadapter.MinBufferSize, cfg.Adapters.HTTP.BufferSize)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ShutdownTimeout: 3 * time.Second},
		Adapters: AdaptersConfig{HTTP: httpadapter.HTTPConfig{
			Port:            8080,
			Threads:         2,
			Timeout:         50 * time.Millisecond,
			ShutdownTimeout: 7 * time.Second,
		}},
		Stats: StatsConfig{Type: "BADGER"},
	}
	ApplyDefaults(cfg)

	h := cfg.Adapters.HTTP
	if h.Port != 8080 || h.Threads != 2 || h.Timeout != 50*time.Millisecond {
		t.Errorf("Explicit values overwritten: %+v", h)
	}
	if h.ShutdownTimeout != 7*time.Second {
		t.Errorf("Expected explicit adapter shutdown timeout kept, got %v", h.ShutdownTimeout)
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Expected explicit server shutdown timeout kept, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Stats.Type != "badger" {
		t.Errorf("Expected stats type normalized, got %q", cfg.Stats.Type)
	}
}

func TestApplyDefaults_HTTPExplicitlyDisabled(t *testing.T) {
	cfg := &Config{Adapters: AdaptersConfig{HTTP: httpadapter.HTTPConfig{Port: 8080}}}
	ApplyDefaults(cfg)

	if cfg.Adapters.HTTP.Enabled {
		t.Error("Adapter with an explicit port and enabled=false must stay disabled")
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Fatalf("Default config failed validation: %v", err)
	}
}
