package pool

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeConn returns the server side of an in-memory connection. The client
// side is closed when the test ends.
func pipeConn(t *testing.T, id string) Connection {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	return Connection{Conn: server, IP: "127.0.0.1", ID: id, AcceptedAt: time.Now()}
}

func TestPool_ProcessesEveryConnection(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]int{}
		wg   sync.WaitGroup
	)

	h := HandlerFunc(func(_ context.Context, c Connection) {
		defer wg.Done()
		mu.Lock()
		seen[c.ID]++
		mu.Unlock()
		_ = c.Conn.Close()
	})

	p := New(4, h)
	p.Start(context.Background())
	defer p.Shutdown()

	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	wg.Add(len(ids))
	for _, id := range ids {
		require.NoError(t, p.Submit(pipeConn(t, id)))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, len(ids))
	for _, id := range ids {
		assert.Equal(t, 1, seen[id], "connection %s handled more than once", id)
	}
}

func TestPool_FIFOWithSingleWorker(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
		wg    sync.WaitGroup
	)
	release := make(chan struct{})

	h := HandlerFunc(func(_ context.Context, c Connection) {
		defer wg.Done()
		if c.ID == "first" {
			<-release
		}
		mu.Lock()
		order = append(order, c.ID)
		mu.Unlock()
		_ = c.Conn.Close()
	})

	p := New(1, h)
	p.Start(context.Background())
	defer p.Shutdown()

	wg.Add(4)
	require.NoError(t, p.Submit(pipeConn(t, "first")))
	require.Eventually(t, func() bool { return p.Busy() == 1 }, time.Second, time.Millisecond)

	for _, id := range []string{"second", "third", "fourth"} {
		require.NoError(t, p.Submit(pipeConn(t, id)))
	}
	assert.Equal(t, 3, p.QueueLen())

	close(release)
	wg.Wait()

	assert.Equal(t, []string{"first", "second", "third", "fourth"}, order)
}

func TestPool_ShutdownIdleWorkers(t *testing.T) {
	p := New(8, HandlerFunc(func(_ context.Context, c Connection) { _ = c.Conn.Close() }))
	p.Start(context.Background())

	done := make(chan int)
	go func() { done <- p.Shutdown() }()

	select {
	case dropped := <-done:
		assert.Zero(t, dropped)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not join idle workers")
	}

	// Idempotent.
	assert.Zero(t, p.Shutdown())
}

func TestPool_ShutdownWaitsForInFlightAndDrainsRest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var handled atomic.Int32

	h := HandlerFunc(func(_ context.Context, c Connection) {
		if handled.Add(1) == 1 {
			close(started)
			<-release
		}
		_ = c.Conn.Close()
	})

	p := New(1, h)
	p.Start(context.Background())

	require.NoError(t, p.Submit(pipeConn(t, "busy")))
	<-started

	pending := pipeConn(t, "pending")
	require.NoError(t, p.Submit(pending))

	done := make(chan int)
	go func() { done <- p.Shutdown() }()

	select {
	case <-done:
		t.Fatal("shutdown returned while a worker was still busy")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case dropped := <-done:
		assert.Equal(t, 1, dropped)
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	assert.Equal(t, int32(1), handled.Load())

	// The drained connection has been closed.
	_, err := pending.Conn.Write([]byte("x"))
	assert.Error(t, err)
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(1, HandlerFunc(func(_ context.Context, c Connection) { _ = c.Conn.Close() }))
	p.Start(context.Background())
	p.Shutdown()

	c := pipeConn(t, "late")
	assert.ErrorIs(t, p.Submit(c), ErrClosed)

	_, err := c.Conn.Write([]byte("x"))
	assert.Error(t, err)
}

func TestNew_PanicsOnInvalidArguments(t *testing.T) {
	h := HandlerFunc(func(context.Context, Connection) {})
	assert.Panics(t, func() { New(0, h) })
	assert.Panics(t, func() { New(1, nil) })
}
