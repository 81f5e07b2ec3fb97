package resource

// Buffer is an append-only byte buffer that doubles its capacity whenever
// an append would not fit, and can be shrunk to its exact length once
// rendering is done.
type Buffer struct {
	buf []byte
}

// NewBuffer returns an empty Buffer with the given initial capacity.
func NewBuffer(initial int) *Buffer {
	if initial < 1 {
		initial = 1
	}
	return &Buffer{buf: make([]byte, 0, initial)}
}

// Write appends p, growing the buffer first if needed. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteString appends s.
func (b *Buffer) WriteString(s string) (int, error) {
	b.grow(len(s))
	b.buf = append(b.buf, s...)
	return len(s), nil
}

func (b *Buffer) grow(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	c := cap(b.buf)
	for c < need {
		c *= 2
	}
	grown := make([]byte, len(b.buf), c)
	copy(grown, b.buf)
	b.buf = grown
}

// ShrinkToFit drops unused capacity.
func (b *Buffer) ShrinkToFit() {
	if cap(b.buf) == len(b.buf) {
		return
	}
	exact := make([]byte, len(b.buf))
	copy(exact, b.buf)
	b.buf = exact
}

// Bytes returns the buffered content. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Cap returns the current capacity.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}
