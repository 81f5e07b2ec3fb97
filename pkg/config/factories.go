package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittohttp/pkg/stats"
	statsBadger "github.com/marmos91/dittohttp/pkg/stats/badger"
	statsMemory "github.com/marmos91/dittohttp/pkg/stats/memory"
	"github.com/mitchellh/mapstructure"
)

// CreateStatsStore creates the access statistics store selected by cfg.Type,
// decoding the matching type-specific map into the store's config.
//
// Supported types:
//   - "none": statistics disabled, returns a nil store
//   - "memory": pkg/stats/memory (lost on restart)
//   - "badger": pkg/stats/badger (persistent)
func CreateStatsStore(ctx context.Context, cfg *StatsConfig) (stats.Store, error) {
	switch cfg.Type {
	case "none":
		return nil, nil
	case "memory":
		return createMemoryStatsStore(ctx, cfg.Memory)
	case "badger":
		return createBadgerStatsStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown stats store type: %q", cfg.Type)
	}
}

func createMemoryStatsStore(ctx context.Context, options map[string]any) (stats.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeCfg statsMemory.MemoryStatsStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory stats store options: %w", err)
	}
	if storeCfg.MaxPaths < 0 {
		return nil, fmt.Errorf("memory stats store: max_paths must be >= 0")
	}

	return statsMemory.NewMemoryStatsStore(storeCfg), nil
}

func createBadgerStatsStore(ctx context.Context, options map[string]any) (stats.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var storeCfg statsBadger.BadgerStatsStoreConfig
	if err := decodeOptions(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger stats store options: %w", err)
	}
	if storeCfg.DBPath == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger stats store: db_path is required")
	}

	store, err := statsBadger.NewBadgerStatsStore(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger stats store: %w", err)
	}
	return store, nil
}

// decodeOptions decodes a loosely typed config map, accepting strings for
// numbers, booleans and durations as they arrive from env overrides.
func decodeOptions(options map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	return decoder.Decode(options)
}
