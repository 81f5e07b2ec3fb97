package config

import (
	"fmt"

	"github.com/marmos91/dittohttp/pkg/adapter"
	httpadapter "github.com/marmos91/dittohttp/pkg/adapter/http"
	"github.com/marmos91/dittohttp/pkg/metrics"
)

// CreateAdapters creates all enabled protocol adapters from the configuration.
//
// httpMetrics may be nil, which disables adapter metrics.
func CreateAdapters(cfg *Config, httpMetrics metrics.HTTPMetrics) ([]adapter.Adapter, error) {
	var adapters []adapter.Adapter

	if cfg.Adapters.HTTP.Enabled {
		adapters = append(adapters, httpadapter.New(cfg.Adapters.HTTP, httpMetrics))
	}

	if len(adapters) == 0 {
		return nil, fmt.Errorf("no adapters enabled in configuration")
	}

	return adapters, nil
}
