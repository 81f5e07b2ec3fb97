// Package teapot decides which connections get a 418 when the teapot
// toggle is on.
//
// The trigger is a 16-bit connection counter compared against three fixed
// periods derived from the magic value 0x7134.
package teapot

import "sync"

const (
	magic uint16 = 0x7134

	// periodBlaze is (0x7134 >> 6) - (2 << 4).
	periodBlaze = (magic >> 6) - (2 << 4)

	// periodNice is (0x7134 >> 8) ^ 0x34.
	periodNice = (magic >> 8) ^ 0x34
)

// Counter counts dequeued connections. Safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	count uint16
}

// Next records one more connection and reports whether it should be
// answered with 418.
func (c *Counter) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	brew := Brews(c.count)
	if c.count == magic {
		c.count = 0
	}
	return brew
}

// Brews reports whether connection number count gets a 418.
func Brews(count uint16) bool {
	return count%magic == 0 || count%periodBlaze == 0 || count%periodNice == 0
}
