// Package pool implements the fixed-size worker pool that drains accepted
// connections.
//
// The pool is a classic producer/consumer: one acceptor calls Submit, N
// long-lived workers block on a condition variable until an entry is
// available, then process that connection synchronously to completion.
// A worker owns the connection it dequeued exclusively; nothing else in the
// pool touches it afterwards.
//
// Shutdown is cooperative. The running flag is cleared, then exactly one
// sentinel entry per worker is pushed through the same queue and signal
// path, so every blocked worker wakes, sees the sentinel and exits. Once all
// workers have returned, whatever is still queued is drained and closed.
package pool

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/dittohttp/internal/logger"
	"github.com/marmos91/dittohttp/internal/queue"
)

// ErrClosed is returned by Submit after Shutdown has started.
var ErrClosed = errors.New("pool: shut down")

// Connection is an accepted client socket together with the client's address.
type Connection struct {
	// Conn is the accepted socket. Closed by whoever ends up owning the entry.
	Conn net.Conn

	// IP is the client's address in string form (no port).
	IP string

	// ID correlates log lines for this connection.
	ID string

	// AcceptedAt is when the acceptor handed the socket over.
	AcceptedAt time.Time
}

// Handler processes exactly one connection and must close it before returning.
type Handler interface {
	Handle(ctx context.Context, conn Connection)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, conn Connection)

// Handle calls f(ctx, conn).
func (f HandlerFunc) Handle(ctx context.Context, conn Connection) {
	f(ctx, conn)
}

// entry is what travels through the queue: a connection or a sentinel.
type entry struct {
	conn     Connection
	sentinel bool
}

// Pool is a fixed set of workers draining a shared FIFO.
type Pool struct {
	size    int
	handler Handler

	// mu guards queue; cond is signalled once per enqueued entry.
	mu    sync.Mutex
	cond  *sync.Cond
	queue *queue.Queue[entry]

	running atomic.Bool
	busy    atomic.Int32

	workers   sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	drained   int
}

// New creates a pool of size workers dispatching to handler.
//
// Panics if size < 1 or handler is nil; both indicate a configuration bug
// that validation should have caught.
func New(size int, handler Handler) *Pool {
	if size < 1 {
		panic("pool: size must be >= 1")
	}
	if handler == nil {
		panic("pool: handler cannot be nil")
	}

	p := &Pool{
		size:    size,
		handler: handler,
		queue:   queue.New[entry](),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start launches the workers. Calling it more than once has no effect.
//
// ctx is handed to every Handle call; cancelling it does not stop the
// workers by itself, Shutdown does.
func (p *Pool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.running.Store(true)
		p.workers.Add(p.size)
		for i := 0; i < p.size; i++ {
			go p.worker(ctx, i)
		}
		logger.Debug("Worker pool started with %d worker(s)", p.size)
	})
}

// Submit enqueues conn and wakes one waiting worker. It never blocks on
// capacity; backpressure comes from the listen backlog once every worker
// is busy.
//
// After Shutdown has started the connection is closed and ErrClosed returned.
func (p *Pool) Submit(conn Connection) error {
	if !p.running.Load() {
		_ = conn.Conn.Close()
		return ErrClosed
	}

	p.mu.Lock()
	p.queue.Enqueue(entry{conn: conn})
	p.cond.Signal()
	p.mu.Unlock()
	return nil
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.workers.Done()

	for p.running.Load() {
		p.mu.Lock()
		e, ok := p.queue.Dequeue()
		for !ok {
			p.cond.Wait()
			e, ok = p.queue.Dequeue()
		}
		p.mu.Unlock()

		if e.sentinel {
			logger.Debug("Worker %d received shutdown sentinel", id)
			return
		}

		p.busy.Add(1)
		p.handler.Handle(ctx, e.conn)
		p.busy.Add(-1)
	}
}

// Shutdown stops the pool: it clears the running flag, pushes one sentinel
// per worker, waits for every worker to exit, then closes any connection
// still queued. It returns how many queued connections were dropped.
//
// Safe to call multiple times; later calls return the first result.
func (p *Pool) Shutdown() int {
	p.stopOnce.Do(func() {
		p.running.Store(false)

		for i := 0; i < p.size; i++ {
			p.mu.Lock()
			p.queue.Enqueue(entry{sentinel: true})
			p.cond.Signal()
			p.mu.Unlock()
		}

		p.workers.Wait()

		p.mu.Lock()
		leftover := p.queue.Drain()
		p.mu.Unlock()

		for _, e := range leftover {
			if e.sentinel {
				continue
			}
			_ = e.conn.Conn.Close()
			p.drained++
		}

		logger.Debug("Worker pool stopped (%d pending connection(s) dropped)", p.drained)
	})
	return p.drained
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Busy returns how many workers are currently handling a connection.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// QueueLen returns the number of connections waiting for a worker.
func (p *Pool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}
