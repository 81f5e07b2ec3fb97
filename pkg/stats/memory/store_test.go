package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittohttp/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStatsStore_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatsStore(MemoryStatsStoreConfig{})
	defer s.Close()

	t0 := time.Date(2024, 11, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/index.html", Status: 200, Bytes: 100, At: t0}))
	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/index.html", Status: 200, Bytes: 100, At: t0.Add(time.Second)}))
	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/index.html", Status: 403, Bytes: 30, At: t0.Add(2 * time.Second)}))

	ps, err := s.Get(ctx, "/index.html")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ps.Hits)
	assert.Equal(t, uint64(230), ps.Bytes)
	assert.Equal(t, 403, ps.LastStatus)
	assert.Equal(t, t0.Add(2*time.Second), ps.LastAccess)
	assert.Equal(t, map[int]uint64{200: 2, 403: 1}, ps.Statuses)

	// Returned values are copies.
	ps.Statuses[200] = 99
	again, err := s.Get(ctx, "/index.html")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), again.Statuses[200])

	_, err = s.Get(ctx, "/missing")
	assert.ErrorIs(t, err, stats.ErrNotFound)
}

func TestMemoryStatsStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatsStore(MemoryStatsStoreConfig{})

	for _, p := range []string{"/b", "/a", "/c", "/c", "/a", "/c"} {
		require.NoError(t, s.Record(ctx, stats.Hit{Path: p, Status: 200}))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "/c", list[0].Path)
	assert.Equal(t, "/a", list[1].Path)
	assert.Equal(t, "/b", list[2].Path)
}

func TestMemoryStatsStore_MaxPaths(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatsStore(MemoryStatsStoreConfig{MaxPaths: 2})

	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/a", Status: 200}))
	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/b", Status: 200}))
	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/c", Status: 200}))
	require.NoError(t, s.Record(ctx, stats.Hit{Path: "/a", Status: 200}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, uint64(1), s.Dropped())
}

func TestMemoryStatsStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStatsStore(MemoryStatsStoreConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Record(ctx, stats.Hit{Path: "/hot", Status: 200, Bytes: 1})
			}
		}()
	}
	wg.Wait()

	ps, err := s.Get(ctx, "/hot")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), ps.Hits)
}

func TestMemoryStatsStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStatsStore(MemoryStatsStoreConfig{})
	assert.ErrorIs(t, s.Record(ctx, stats.Hit{Path: "/a"}), context.Canceled)
}
