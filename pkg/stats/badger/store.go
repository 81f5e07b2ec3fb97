// Package badger implements stats.Store on top of BadgerDB so access
// statistics survive restarts.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/dittohttp/pkg/stats"
)

// maxConflictRetries bounds retries of a Record transaction that lost a
// race with a concurrent Record on the same path.
const maxConflictRetries = 32

// BadgerStatsStoreConfig configures the persistent store.
type BadgerStatsStoreConfig struct {
	// DBPath is the directory BadgerDB keeps its files in.
	DBPath string `mapstructure:"db_path"`

	// InMemory runs BadgerDB without touching disk (DBPath is ignored).
	InMemory bool `mapstructure:"in_memory"`

	// SyncWrites fsyncs every Record. Off by default.
	SyncWrites bool `mapstructure:"sync_writes"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 16).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`
}

// BadgerStatsStore persists one JSON-encoded stats.PathStats per path.
//
// BadgerDB transactions are serializable; concurrent Records for the same
// path conflict and are retried.
type BadgerStatsStore struct {
	db *badger.DB
}

// NewBadgerStatsStore opens (creating if needed) the database.
func NewBadgerStatsStore(ctx context.Context, config BadgerStatsStoreConfig) (*BadgerStatsStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(config.DBPath)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 16
	}

	opts = opts.
		WithLoggingLevel(badger.WARNING).
		WithCompression(options.None).
		WithSyncWrites(config.SyncWrites).
		WithBlockCacheSize(blockCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &BadgerStatsStore{db: db}, nil
}

func (s *BadgerStatsStore) Record(ctx context.Context, hit stats.Hit) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		err = s.db.Update(func(txn *badger.Txn) error {
			ps, err := getPathStats(txn, hit.Path)
			if errors.Is(err, stats.ErrNotFound) {
				ps = &stats.PathStats{}
			} else if err != nil {
				return err
			}

			ps.Apply(hit)

			data, err := json.Marshal(ps)
			if err != nil {
				return fmt.Errorf("failed to encode stats for %s: %w", hit.Path, err)
			}
			return txn.Set(keyHits(hit.Path), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("record %s: %w", hit.Path, err)
}

func (s *BadgerStatsStore) Get(ctx context.Context, path string) (*stats.PathStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ps *stats.PathStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		ps, err = getPathStats(txn, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *BadgerStatsStore) List(ctx context.Context) ([]stats.PathStats, error) {
	var list []stats.PathStats

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         []byte(prefixHits),
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var ps stats.PathStats
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ps)
			}); err != nil {
				return fmt.Errorf("failed to decode stats for %s: %w", pathFromKey(item.Key()), err)
			}
			list = append(list, ps)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.SortByHits(list)
	return list, nil
}

func (s *BadgerStatsStore) Close() error {
	return s.db.Close()
}

func getPathStats(txn *badger.Txn, path string) (*stats.PathStats, error) {
	item, err := txn.Get(keyHits(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, stats.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ps stats.PathStats
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &ps)
	}); err != nil {
		return nil, fmt.Errorf("failed to decode stats for %s: %w", path, err)
	}
	return &ps, nil
}
