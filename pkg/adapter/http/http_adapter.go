// Package http implements the HTTP/1.1 static file adapter.
//
// One acceptor goroutine accepts TCP connections and hands them to a fixed
// pool of workers through a mutex/condition-variable queue. Each worker
// serves exactly one request per connection: read the head, validate it,
// resolve the target under the document root, write the response, close.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittohttp/internal/logger"
	"github.com/marmos91/dittohttp/internal/protocol/http1"
	"github.com/marmos91/dittohttp/internal/ratelimiter"
	"github.com/marmos91/dittohttp/internal/teapot"
	"github.com/marmos91/dittohttp/pkg/metrics"
	"github.com/marmos91/dittohttp/pkg/pool"
	"github.com/marmos91/dittohttp/pkg/resource"
	"github.com/marmos91/dittohttp/pkg/stats"
)

// HTTPAdapter is the shared server context: configuration, listener, pool
// and the bookkeeping every connection reports into.
type HTTPAdapter struct {
	config HTTPConfig

	// listenerMu orders binding in Serve against closing in initiateShutdown.
	listenerMu sync.Mutex
	listener   net.Listener
	resolver   *resource.Resolver
	reader     *http1.Reader
	pool       *pool.Pool
	limiter    *ratelimiter.Limiter

	// teapot is nil unless the toggle is on.
	teapot *teapot.Counter

	stats   stats.Store
	metrics metrics.HTTPMetrics

	// shutdown is closed once shutdown starts; running mirrors it for the
	// hot paths that only need a flag.
	shutdown     chan struct{}
	shutdownOnce sync.Once
	running      atomic.Bool

	// ready is closed when the listener is bound.
	ready chan struct{}

	// stopped is closed when Serve returns.
	stopped chan struct{}
	started atomic.Bool

	// connCount counts connections between accept and close.
	connCount atomic.Int32

	// served counts connections that reached a worker.
	served atomic.Uint64

	port atomic.Int32

	// activeConnections tracks every live connection by ID for the
	// worker handoff and for forced closure on shutdown.
	activeConnections sync.Map

	// requestCtx is handed to workers; cancelled after the pool drains, so
	// in-flight and queued requests always finish with a live context.
	requestCtx     context.Context
	cancelRequests context.CancelFunc
}

// New creates an HTTP adapter.
//
// Panics if the configuration is invalid after defaults are applied; the
// config package validates earlier, so reaching this is a programming error.
//
// Pass nil for httpMetrics to disable metrics collection.
func New(config HTTPConfig, httpMetrics metrics.HTTPMetrics) *HTTPAdapter {
	config.applyDefaults()

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid HTTP config: %v", err))
	}

	if httpMetrics == nil {
		httpMetrics = metrics.NewNoopHTTPMetrics()
	}

	var counter *teapot.Counter
	if config.Teapot {
		counter = &teapot.Counter{}
	}

	requestCtx, cancelRequests := context.WithCancel(context.Background())

	s := &HTTPAdapter{
		config:         config,
		reader:         http1.NewReader(config.BufferSize, config.Timeout),
		limiter:        ratelimiter.New(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst),
		teapot:         counter,
		metrics:        httpMetrics,
		shutdown:       make(chan struct{}),
		ready:          make(chan struct{}),
		stopped:        make(chan struct{}),
		requestCtx:     requestCtx,
		cancelRequests: cancelRequests,
	}
	s.port.Store(int32(config.Port))
	return s
}

// SetStatsStore injects the access statistics store. Called once before Serve.
func (s *HTTPAdapter) SetStatsStore(store stats.Store) {
	s.stats = store
	logger.Debug("HTTP access statistics store configured")
}

// Serve binds the listener, starts the worker pool and runs the accept loop
// until ctx is cancelled or Stop is called.
func (s *HTTPAdapter) Serve(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("HTTP adapter already started")
	}
	defer close(s.stopped)

	if s.shuttingDown() {
		logger.Debug("HTTP adapter stopped before serving")
		return nil
	}

	resolver, err := resource.NewResolver(s.config.HTMLRoot, s.config.BufferSize)
	if err != nil {
		return fmt.Errorf("failed to open document root: %w", err)
	}
	s.resolver = resolver

	listener, err := listen(s.config.Port, s.config.Backlog)
	if err != nil {
		return fmt.Errorf("failed to create HTTP listener on port %d: %w", s.config.Port, err)
	}
	if !s.setListener(listener) {
		logger.Debug("HTTP adapter stopped while binding")
		return nil
	}
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port.Store(int32(addr.Port))
	}

	s.pool = pool.New(s.config.Threads, s)
	s.pool.Start(s.requestCtx)
	s.running.Store(true)
	close(s.ready)

	logger.Info("HTTP server listening on port %d", s.Port())
	logger.Debug("HTTP config: root=%s threads=%d timeout=%v backlog=%d buffer_size=%d teapot=%v",
		resolver.Root(), s.config.Threads, s.config.Timeout, s.config.Backlog, s.config.BufferSize, s.config.Teapot)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("HTTP shutdown signal received: %v", ctx.Err())
			s.initiateShutdown()
		case <-s.shutdown:
		}
	}()

	if s.config.MetricsLogInterval > 0 {
		go s.logMetrics(ctx)
	}

	for {
		if err := s.throttle(ctx); err != nil {
			return s.gracefulShutdown()
		}

		tcpConn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return s.gracefulShutdown()
			default:
				logger.Debug("Error accepting HTTP connection: %v", err)
				continue
			}
		}

		s.enqueue(tcpConn)
	}
}

// setListener publishes the bound listener. When shutdown already started
// the listener is closed instead and false is returned.
func (s *HTTPAdapter) setListener(listener net.Listener) bool {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	if s.shuttingDown() {
		if err := listener.Close(); err != nil {
			logger.Debug("Error closing HTTP listener: %v", err)
		}
		return false
	}
	s.listener = listener
	return true
}

func (s *HTTPAdapter) shuttingDown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

// throttle waits on the accept rate limiter. It returns an error only when
// shutdown started while waiting.
func (s *HTTPAdapter) throttle(ctx context.Context) error {
	if s.limiter.Unlimited() || s.limiter.Allow() {
		return nil
	}

	s.metrics.RecordAcceptThrottled()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.shutdown:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	return s.limiter.Wait(waitCtx)
}

// enqueue registers an accepted socket and submits it to the pool.
func (s *HTTPAdapter) enqueue(tcpConn net.Conn) {
	pc := pool.Connection{
		Conn:       tcpConn,
		IP:         clientIP(tcpConn.RemoteAddr()),
		ID:         uuid.NewString(),
		AcceptedAt: time.Now(),
	}

	c := newHTTPConnection(s, pc)
	s.activeConnections.Store(pc.ID, c)

	current := s.connCount.Add(1)
	s.metrics.RecordConnectionAccepted()
	s.metrics.SetActiveConnections(current)
	logger.Debug("HTTP connection %s accepted from %s (active: %d)", pc.ID, pc.IP, current)

	c.transition(http1.StateQueued)
	if err := s.pool.Submit(pc); err != nil {
		logger.Debug("HTTP connection %s dropped: %v", pc.ID, err)
		s.release(c)
		return
	}
	s.metrics.SetQueueDepth(s.pool.QueueLen())
}

// Handle is the pool.Handler entry point, run on a worker goroutine.
func (s *HTTPAdapter) Handle(ctx context.Context, pc pool.Connection) {
	v, ok := s.activeConnections.Load(pc.ID)
	if !ok {
		// Not registered through enqueue; serve it anyway.
		v = newHTTPConnection(s, pc)
		s.activeConnections.Store(pc.ID, v)
		s.connCount.Add(1)
	}
	c := v.(*HTTPConnection)

	s.served.Add(1)
	if s.pool != nil {
		s.metrics.SetQueueDepth(s.pool.QueueLen())
		s.metrics.SetBusyWorkers(s.pool.Busy())
	}

	defer s.release(c)
	c.Serve(ctx)
}

// release finishes bookkeeping for a connection that has been closed,
// whether it was served or dropped from the queue.
func (s *HTTPAdapter) release(c *HTTPConnection) {
	if _, loaded := s.activeConnections.LoadAndDelete(c.id); !loaded {
		return
	}
	c.close()

	current := s.connCount.Add(-1)
	s.metrics.RecordConnectionClosed()
	s.metrics.SetActiveConnections(current)
	if s.pool != nil {
		s.metrics.SetBusyWorkers(s.pool.Busy())
	}
	logger.Debug("HTTP connection %s closed (active: %d)", c.id, current)
}

// initiateShutdown stops accepting. Safe to call more than once.
func (s *HTTPAdapter) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Debug("HTTP shutdown initiated")

		s.running.Store(false)
		close(s.shutdown)

		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("Error closing HTTP listener: %v", err)
			}
		}
	})
}

// gracefulShutdown joins the worker pool, drains the queue, and force-closes
// whatever is still open once ShutdownTimeout expires.
func (s *HTTPAdapter) gracefulShutdown() error {
	s.initiateShutdown()

	logger.Info("HTTP graceful shutdown: waiting for %d active connection(s) (timeout: %v)",
		s.connCount.Load(), s.config.ShutdownTimeout)

	done := make(chan int, 1)
	go func() {
		done <- s.pool.Shutdown()
	}()

	var result error
	select {
	case dropped := <-done:
		s.releaseDrained()
		if dropped > 0 {
			logger.Info("HTTP graceful shutdown: %d queued connection(s) closed unserved", dropped)
		}
		logger.Info("HTTP graceful shutdown complete: all workers stopped")

	case <-time.After(s.config.ShutdownTimeout):
		remaining := s.connCount.Load()
		logger.Warn("HTTP shutdown timeout exceeded: %d connection(s) still active after %v - forcing closure",
			remaining, s.config.ShutdownTimeout)
		s.forceCloseConnections()
		<-done
		s.releaseDrained()
		result = fmt.Errorf("HTTP shutdown timeout: %d connections force-closed", remaining)
	}

	s.cancelRequests()
	return result
}

// releaseDrained settles connections the pool closed without serving.
func (s *HTTPAdapter) releaseDrained() {
	s.activeConnections.Range(func(_, value any) bool {
		s.release(value.(*HTTPConnection))
		return true
	})
}

func (s *HTTPAdapter) forceCloseConnections() {
	logger.Info("Force-closing active HTTP connections")

	closedCount := 0
	s.activeConnections.Range(func(key, value any) bool {
		c := value.(*HTTPConnection)
		if err := c.conn.Conn.Close(); err != nil {
			logger.Debug("Error force-closing connection %s: %v", key, err)
		} else {
			closedCount++
		}
		return true
	})

	logger.Info("Force-closed %d connection(s)", closedCount)
}

// Stop initiates shutdown and waits for Serve to return or ctx to expire.
func (s *HTTPAdapter) Stop(ctx context.Context) error {
	s.initiateShutdown()

	if !s.started.Load() {
		return nil
	}

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		logger.Warn("HTTP shutdown context cancelled: %d connection(s) still active: %v",
			s.connCount.Load(), ctx.Err())
		return ctx.Err()
	}
}

func (s *HTTPAdapter) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(s.config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			logger.Info("HTTP metrics: active_connections=%d queued=%d busy_workers=%d/%d served=%d",
				s.connCount.Load(), s.pool.QueueLen(), s.pool.Busy(), s.pool.Size(), s.served.Load())
		}
	}
}

// Ready is closed once the listener is bound and Port reports the real port.
func (s *HTTPAdapter) Ready() <-chan struct{} {
	return s.ready
}

// GetActiveConnections returns the number of connections between accept and close.
func (s *HTTPAdapter) GetActiveConnections() int32 {
	return s.connCount.Load()
}

// Port returns the bound port (the configured one until Serve binds).
func (s *HTTPAdapter) Port() int {
	return int(s.port.Load())
}

// Protocol returns "HTTP".
func (s *HTTPAdapter) Protocol() string {
	return "HTTP"
}

// Config returns the effective configuration, defaults applied.
func (s *HTTPAdapter) Config() HTTPConfig {
	return s.config
}

func clientIP(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
