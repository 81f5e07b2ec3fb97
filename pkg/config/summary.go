package config

import (
	"fmt"
	"strings"
)

// RunningSummary renders the effective HTTP settings for the startup banner.
func RunningSummary(cfg *Config) string {
	h := cfg.Adapters.HTTP

	var b strings.Builder
	b.WriteString("Running Config:\n")
	fmt.Fprintf(&b, " - Server Name:               %s\n", h.Name)
	fmt.Fprintf(&b, " - HTML Root:                 %s\n", h.HTMLRoot)
	fmt.Fprintf(&b, " - Server Port:               %d\n", h.Port)
	fmt.Fprintf(&b, " - Number of Threads:         %d\n", h.Threads)
	fmt.Fprintf(&b, " - Connection Timeout Length: %dms\n", h.Timeout.Milliseconds())
	fmt.Fprintf(&b, " - Backlog length:            %d\n", h.Backlog)
	fmt.Fprintf(&b, " - Buffer size:               %d\n", h.BufferSize)
	if h.Teapot {
		b.WriteString(" - Teapot:                    on\n")
	}
	if h.RateLimit.RequestsPerSecond > 0 {
		fmt.Fprintf(&b, " - Accept rate limit:         %d/s (burst %d)\n", h.RateLimit.RequestsPerSecond, h.RateLimit.Burst)
	}
	fmt.Fprintf(&b, " - Access statistics:         %s\n", cfg.Stats.Type)
	if cfg.Server.Metrics.Enabled {
		fmt.Fprintf(&b, " - Metrics port:              %d\n", cfg.Server.Metrics.Port)
	}
	return b.String()
}
