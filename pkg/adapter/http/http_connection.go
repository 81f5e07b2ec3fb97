package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/marmos91/dittohttp/internal/logger"
	"github.com/marmos91/dittohttp/internal/protocol/http1"
	"github.com/marmos91/dittohttp/pkg/pool"
	"github.com/marmos91/dittohttp/pkg/stats"
)

// HTTPConnection is one accepted socket and the single exchange served on it.
type HTTPConnection struct {
	server *HTTPAdapter
	conn   pool.Connection
	id     string

	mu      sync.Mutex
	state   http1.State
	history []http1.State

	closeOnce sync.Once

	method http1.Method
	target string

	// resource is the root-relative path of what was served, empty unless
	// resolution succeeded.
	resource string
}

func newHTTPConnection(server *HTTPAdapter, pc pool.Connection) *HTTPConnection {
	return &HTTPConnection{
		server:  server,
		conn:    pc,
		id:      pc.ID,
		state:   http1.StateAccepted,
		history: []http1.State{http1.StateAccepted},
	}
}

// State returns the current state.
func (c *HTTPConnection) State() http1.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns every state the connection has passed through, in order.
func (c *HTTPConnection) History() []http1.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]http1.State, len(c.history))
	copy(out, c.history)
	return out
}

func (c *HTTPConnection) transition(to http1.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Terminal() {
		return
	}
	c.state = to
	c.history = append(c.history, to)
}

// close shuts the socket and moves to CLOSED. Only the first call has any effect.
func (c *HTTPConnection) close() {
	c.closeOnce.Do(func() {
		if err := c.conn.Conn.Close(); err != nil {
			logger.Debug("Error closing connection %s from %s: %v", c.id, c.conn.IP, err)
		}
		c.transition(http1.StateClosed)
	})
}

// Serve handles the one request carried by this connection and closes it.
func (c *HTTPConnection) Serve(ctx context.Context) {
	start := time.Now()
	w := http1.NewResponseWriter(c.conn.Conn, c.server.config.Name, c.server.config.BufferSize)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic serving connection %s from %s: %v\n%s", c.id, c.conn.IP, r, debug.Stack())
		}
		c.close()
		c.finish(ctx, w, time.Since(start))
	}()

	c.transition(http1.StateDequeued)

	if c.server.teapot != nil && c.server.teapot.Next() {
		logger.Info("Brewing tea for %s", c.conn.IP)
		c.respond(w, w.WriteError(http1.StatusTeapot))
		return
	}

	c.transition(http1.StateReading)
	req, err := c.server.reader.ReadRequest(c.conn.Conn, c.conn.IP)
	if err != nil {
		c.readFailed(w, err)
		return
	}

	c.transition(http1.StateParsed)
	c.method = req.Method
	logger.Info("%s", req.LogLine())

	if !http1.ValidVersion(req.Raw) {
		logger.Warn("%s", http1.TruncateLine("Unsupported version from "+c.conn.IP+": ", req.Line, false))
		c.respond(w, w.WriteError(http1.StatusHTTPVersionNotSupported))
		return
	}
	c.transition(http1.StateVersionChecked)

	c.transition(http1.StateDispatched)
	switch req.Method {
	case http1.MethodGet, http1.MethodHead:
		c.target = req.Target()
		c.serveResource(w, req)
	case http1.MethodOptions:
		c.transition(http1.StateResponding)
		c.respond(w, w.WriteOptions())
	default:
		c.respond(w, w.WriteError(http1.StatusMethodNotAllowed))
	}
}

// readFailed answers a request head that could not be read. A peer that
// vanished gets nothing.
func (c *HTTPConnection) readFailed(w *http1.ResponseWriter, err error) {
	if errors.Is(err, http1.ErrConnectionLost) {
		logger.Debug("Connection %s from %s lost before a request arrived", c.id, c.conn.IP)
		return
	}

	status := http1.StatusOf(err)
	switch status {
	case http1.StatusRequestTimeout:
		c.transition(http1.StateTimeout)
	case http1.StatusContentTooLarge:
		c.transition(http1.StateOversize)
	default:
		c.transition(http1.StateMalformed)
	}

	logger.Warn("Request from %s rejected with %d: %v", c.conn.IP, status, err)
	c.respond(w, w.WriteError(status))
}

func (c *HTTPConnection) serveResource(w *http1.ResponseWriter, req *http1.Request) {
	c.transition(http1.StateResolving)

	res, err := c.server.resolver.Resolve(c.target)
	if err != nil {
		status := http1.StatusOf(err)
		preamble := fmt.Sprintf("ERROR(%d %s): ", status, http1.StatusText(status))
		logger.Warn("%s", http1.TruncateLine(preamble, c.target, false))
		c.respond(w, w.WriteError(status))
		return
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Debug("Error closing %s: %v", res.Path, err)
		}
	}()

	c.resource = res.URLPath
	c.transition(http1.StateResponding)
	c.respond(w, w.WriteContent(req.Method, res.ContentType, res.Size, res.Body))
}

// respond logs a failed write. The peer is gone either way, so there is
// nothing else to do.
func (c *HTTPConnection) respond(w *http1.ResponseWriter, err error) {
	if err != nil {
		logger.Debug("Response %d to %s incomplete after %d bytes: %v", w.Status(), c.conn.IP, w.BytesWritten(), err)
	}
}

// finish reports the exchange to metrics and, for resources that resolved,
// to the statistics store under their root-relative path.
func (c *HTTPConnection) finish(ctx context.Context, w *http1.ResponseWriter, elapsed time.Duration) {
	status := w.Status()
	if status == 0 {
		return
	}

	c.server.metrics.RecordRequest(c.method.String(), status, elapsed)
	c.server.metrics.RecordBytesSent(w.BytesWritten())

	if c.server.stats == nil || c.resource == "" {
		return
	}
	hit := stats.Hit{
		Path:   c.resource,
		Status: status,
		Bytes:  w.BytesWritten(),
		At:     time.Now(),
	}
	if err := c.server.stats.Record(ctx, hit); err != nil {
		logger.Debug("Failed to record access statistics for %s: %v", c.resource, err)
	}
}
