package http

import (
	"fmt"
	"time"
)

// Defaults applied to zero-valued fields.
const (
	DefaultName               = "HTTP Server"
	DefaultHTMLRoot           = "/var/www/html"
	DefaultThreads            = 20
	DefaultTimeout            = 1000 * time.Millisecond
	DefaultBacklog            = 100
	DefaultBufferSize         = 4096
	MinBufferSize             = 2048
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultMetricsLogInterval = 5 * time.Minute
)

// HTTPConfig holds configuration parameters for the HTTP adapter.
//
// These values control listener behavior, the worker pool and per-request
// limits. Zero values are replaced with defaults by applyDefaults.
type HTTPConfig struct {
	// Enabled controls whether the HTTP adapter is active.
	Enabled bool `mapstructure:"enabled"`

	// Name is sent in the Server header of every response.
	Name string `mapstructure:"name"`

	// HTMLRoot is the directory files are served from. It is canonicalized
	// at startup; nothing outside it is ever served.
	HTMLRoot string `mapstructure:"html_root"`

	// Port is the TCP port to listen on. 0 picks a free port.
	Port int `mapstructure:"port" validate:"min=0,max=65535"`

	// Threads is the number of pool workers.
	Threads int `mapstructure:"threads" validate:"min=0"`

	// Timeout bounds each read and the whole request head.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	// Backlog is the kernel accept queue length.
	Backlog int `mapstructure:"backlog" validate:"min=0"`

	// BufferSize is the request buffer capacity and the body chunk size.
	// Values below MinBufferSize are raised to it.
	BufferSize int `mapstructure:"buffer_size" validate:"min=0"`

	// Teapot answers a fixed subset of connections with 418.
	Teapot bool `mapstructure:"teapot"`

	// RateLimit throttles accepts. Zero rate means unlimited.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// ShutdownTimeout is how long Serve waits for in-flight connections
	// before force-closing them.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`

	// MetricsLogInterval is how often pool metrics are logged. 0 disables it.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0"`
}

// RateLimitConfig configures the accept rate limiter.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained accept rate. 0 means unlimited.
	RequestsPerSecond uint `mapstructure:"requests_per_second"`

	// Burst is the number of accepts allowed above the sustained rate.
	Burst uint `mapstructure:"burst"`
}

// applyDefaults fills in zero values with sensible defaults.
//
// Port is left alone: 0 is a valid request for an ephemeral port.
func (c *HTTPConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.HTMLRoot == "" {
		c.HTMLRoot = DefaultHTMLRoot
	}
	if c.Threads <= 0 {
		c.Threads = DefaultThreads
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Backlog <= 0 {
		c.Backlog = DefaultBacklog
	}
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.BufferSize < MinBufferSize {
		c.BufferSize = MinBufferSize
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// validate checks the configuration after defaults have been applied.
func (c *HTTPConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.Threads < 1 {
		return fmt.Errorf("invalid threads %d: must be >= 1", c.Threads)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v: must be > 0", c.Timeout)
	}
	if c.Backlog < 1 {
		return fmt.Errorf("invalid backlog %d: must be >= 1", c.Backlog)
	}
	if c.BufferSize < MinBufferSize {
		return fmt.Errorf("invalid buffer_size %d: must be >= %d", c.BufferSize, MinBufferSize)
	}
	if c.MetricsLogInterval < 0 {
		return fmt.Errorf("invalid metrics_log_interval %v: must be >= 0", c.MetricsLogInterval)
	}
	return nil
}
