// Package memory implements stats.Store in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/dittohttp/pkg/stats"
)

// DefaultMaxPaths is the path cap the config layer applies when none is set.
const DefaultMaxPaths = 10000

// MemoryStatsStoreConfig configures the in-memory store.
type MemoryStatsStoreConfig struct {
	// MaxPaths caps the number of distinct paths tracked. Hits for new
	// paths beyond the cap are dropped. 0 means unlimited.
	MaxPaths int `mapstructure:"max_paths"`
}

// MemoryStatsStore keeps statistics in a map guarded by a RWMutex.
type MemoryStatsStore struct {
	mu       sync.RWMutex
	paths    map[string]*stats.PathStats
	maxPaths int
	dropped  uint64
}

// NewMemoryStatsStore creates an empty store.
func NewMemoryStatsStore(config MemoryStatsStoreConfig) *MemoryStatsStore {
	return &MemoryStatsStore{
		paths:    make(map[string]*stats.PathStats),
		maxPaths: config.MaxPaths,
	}
}

func (s *MemoryStatsStore) Record(ctx context.Context, hit stats.Hit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.paths[hit.Path]
	if !ok {
		if s.maxPaths > 0 && len(s.paths) >= s.maxPaths {
			s.dropped++
			return nil
		}
		ps = &stats.PathStats{}
		s.paths[hit.Path] = ps
	}
	ps.Apply(hit)
	return nil
}

func (s *MemoryStatsStore) Get(ctx context.Context, path string) (*stats.PathStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ps, ok := s.paths[path]
	if !ok {
		return nil, stats.ErrNotFound
	}
	return ps.Clone(), nil
}

func (s *MemoryStatsStore) List(ctx context.Context) ([]stats.PathStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	list := make([]stats.PathStats, 0, len(s.paths))
	for _, ps := range s.paths {
		list = append(list, *ps.Clone())
	}
	s.mu.RUnlock()

	stats.SortByHits(list)
	return list, nil
}

// Dropped returns how many hits were discarded because of MaxPaths.
func (s *MemoryStatsStore) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *MemoryStatsStore) Close() error {
	return nil
}
