package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "log level",
			mutate:  func(c *Config) { c.Logging.Level = "LOUD" },
			wantErr: "Level",
		},
		{
			name:    "log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "Format",
		},
		{
			name:    "shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "ShutdownTimeout",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Adapters.HTTP.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "no adapter",
			mutate:  func(c *Config) { c.Adapters.HTTP.Enabled = false },
			wantErr: "at least one adapter",
		},
		{
			name:    "zero threads",
			mutate:  func(c *Config) { c.Adapters.HTTP.Threads = 0 },
			wantErr: "threads",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Adapters.HTTP.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "unitless timeout",
			mutate:  func(c *Config) { c.Adapters.HTTP.Timeout = 1000 },
			wantErr: "give a unit",
		},
		{
			name: "metrics port clash",
			mutate: func(c *Config) {
				c.Server.Metrics.Enabled = true
				c.Server.Metrics.Port = c.Adapters.HTTP.Port
			},
			wantErr: "already used",
		},
		{
			name:    "stats type",
			mutate:  func(c *Config) { c.Stats.Type = "redis" },
			wantErr: "Type",
		},
		{
			name: "badger without path",
			mutate: func(c *Config) {
				c.Stats.Type = "badger"
				c.Stats.Badger = map[string]any{}
			},
			wantErr: "db_path",
		},
		{
			name: "badger in memory",
			mutate: func(c *Config) {
				c.Stats.Type = "badger"
				c.Stats.Badger = map[string]any{"in_memory": true}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_HTMLRootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := GetDefaultConfig()
	cfg.Adapters.HTTP.HTMLRoot = file
	if err := Validate(cfg); err == nil {
		t.Error("Expected error for html_root pointing at a file")
	}
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Server.ShutdownTimeout = time.Second

	if err := Validate(cfg); err != nil {
		t.Errorf("Lowercase level should validate: %v", err)
	}
}
