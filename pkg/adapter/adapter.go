// Package adapter defines the lifecycle contract between protocol servers
// and the orchestrating Server.
package adapter

import (
	"context"

	"github.com/marmos91/dittohttp/pkg/stats"
)

// Adapter represents a protocol-specific server that can be managed by Server.
//
// Lifecycle:
//  1. Creation: the adapter is created with protocol-specific configuration
//  2. Store injection: SetStatsStore() provides the shared statistics store
//  3. Startup: Serve() binds and blocks until shutdown
//  4. Shutdown: Stop() initiates graceful shutdown with timeout
//
// Thread safety:
// Implementations must be safe for concurrent use. SetStatsStore() is called
// once before Serve(), but Stop() may be called concurrently with Serve().
type Adapter interface {
	// Serve starts the protocol server and blocks until the context is cancelled
	// or an unrecoverable error occurs.
	//
	// When the context is cancelled, Serve must initiate graceful shutdown:
	// stop accepting, let in-flight work finish within its timeout, then
	// release resources.
	//
	// Returns:
	//   - nil on graceful shutdown
	//   - error if startup fails or shutdown is not graceful
	Serve(ctx context.Context) error

	// SetStatsStore injects the access statistics store. A nil store
	// disables recording.
	SetStatsStore(store stats.Store)

	// Stop initiates graceful shutdown and waits for Serve to return or
	// ctx to expire. Safe to call more than once, and before Serve.
	Stop(ctx context.Context) error

	// Protocol returns the human-readable protocol name for logging and metrics.
	Protocol() string

	// Port returns the TCP port the adapter listens on. Before Serve binds
	// this is the configured port, which may be 0.
	Port() int
}
