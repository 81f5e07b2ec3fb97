package config

import (
	"github.com/marmos91/dittohttp/pkg/metrics"
	promMetrics "github.com/marmos91/dittohttp/pkg/metrics/prometheus"
	"github.com/marmos91/dittohttp/pkg/stats"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server exposes /metrics and /stats (nil if disabled)
	Server *metrics.Server

	// HTTPMetrics is the collector for the HTTP adapter (never nil, no-op if disabled)
	HTTPMetrics metrics.HTTPMetrics
}

// InitializeMetrics creates the metrics components described by cfg.
//
// If metrics are enabled the global Prometheus registry is initialized and
// a metrics server is created, exposing store at /stats when it is non-nil.
// Otherwise a nil server and no-op collectors are returned.
func InitializeMetrics(cfg *Config, store stats.Store) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{
			HTTPMetrics: metrics.NewNoopHTTPMetrics(),
		}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port:  cfg.Server.Metrics.Port,
		Stats: store,
	})

	return &MetricsResult{
		Server:      server,
		HTTPMetrics: promMetrics.NewHTTPMetrics(),
	}
}
