// Package stats records per-path access statistics for served requests.
//
// A Store is fed one Hit per answered request and can be queried for a
// single path or for everything it knows. Implementations live in
// sub-packages: memory (lost on restart) and badger (persistent).
package stats

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned by Get for a path that was never recorded.
var ErrNotFound = errors.New("stats: path not found")

// Hit is one answered request.
type Hit struct {
	// Path is the request target, e.g. "/index.html".
	Path string

	// Status is the status code sent.
	Status int

	// Bytes is the number of bytes written to the client.
	Bytes int64

	// At is when the response was completed.
	At time.Time
}

// PathStats aggregates every hit recorded for one path.
type PathStats struct {
	Path       string         `json:"path"`
	Hits       uint64         `json:"hits"`
	Bytes      uint64         `json:"bytes"`
	LastStatus int            `json:"last_status"`
	LastAccess time.Time      `json:"last_access"`
	Statuses   map[int]uint64 `json:"statuses"`
}

// Apply folds h into s.
func (s *PathStats) Apply(h Hit) {
	if s.Statuses == nil {
		s.Statuses = make(map[int]uint64)
	}
	s.Path = h.Path
	s.Hits++
	if h.Bytes > 0 {
		s.Bytes += uint64(h.Bytes)
	}
	s.LastStatus = h.Status
	if h.At.After(s.LastAccess) {
		s.LastAccess = h.At
	}
	s.Statuses[h.Status]++
}

// Clone returns a deep copy of s.
func (s *PathStats) Clone() *PathStats {
	c := *s
	c.Statuses = make(map[int]uint64, len(s.Statuses))
	for k, v := range s.Statuses {
		c.Statuses[k] = v
	}
	return &c
}

// Store persists access statistics.
type Store interface {
	// Record adds one hit.
	Record(ctx context.Context, hit Hit) error

	// Get returns the statistics for path, or ErrNotFound.
	Get(ctx context.Context, path string) (*PathStats, error)

	// List returns every recorded path, most hit first.
	List(ctx context.Context) ([]PathStats, error)

	// Close releases the store's resources.
	Close() error
}

// SortByHits orders list by descending hit count, then by path.
func SortByHits(list []PathStats) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Hits != list[j].Hits {
			return list[i].Hits > list[j].Hits
		}
		return list[i].Path < list[j].Path
	})
}
