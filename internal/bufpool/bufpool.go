// Package bufpool recycles the byte slices used for request reads and
// response body chunks.
//
// Every connection needs one read buffer of the configured size and, when a
// file is served, one chunk buffer of the same size. Connections are short
// lived, so without pooling each request would allocate and discard both.
// Buffers are grouped into size classes; a request is served from the
// smallest class that fits and anything above the largest class is
// allocated directly and left to the garbage collector.
package bufpool

import (
	"sync"
)

// Size classes. The configured buffer size is clamped to at least 2KB, so
// the first class covers the common defaults.
const (
	SmallSize  = 4 << 10  // 4KB
	MediumSize = 64 << 10 // 64KB
	LargeSize  = 1 << 20  // 1MB
)

type class struct {
	size int
	pool sync.Pool
}

func newClass(size int) *class {
	c := &class{size: size}
	c.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return c
}

// Pool hands out byte slices grouped by size class.
type Pool struct {
	classes []*class
}

// New returns a Pool with the small, medium and large classes.
func New() *Pool {
	return &Pool{
		classes: []*class{
			newClass(SmallSize),
			newClass(MediumSize),
			newClass(LargeSize),
		},
	}
}

// Get returns a slice of length size. Its capacity may be larger when it
// comes from a pooled class. Pair every Get with a Put.
func (p *Pool) Get(size int) []byte {
	for _, c := range p.classes {
		if size <= c.size {
			buf := *(c.pool.Get().(*[]byte))
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns buf to the class matching its capacity. Slices that did not
// come from a class are dropped.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for _, c := range p.classes {
		if cap(buf) == c.size {
			full := buf[:c.size]
			c.pool.Put(&full)
			return
		}
	}
}

var global = New()

// Get acquires a buffer from the process-wide pool.
//
//	buf := bufpool.Get(size)
//	defer bufpool.Put(buf)
func Get(size int) []byte {
	return global.Get(size)
}

// Put releases a buffer obtained from Get.
func Put(buf []byte) {
	global.Put(buf)
}
