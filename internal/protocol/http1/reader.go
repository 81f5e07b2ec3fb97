package http1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/marmos91/dittohttp/internal/bufpool"
)

var terminator = []byte("\r\n\r\n")

// Reader reads one request head per connection into a bounded buffer.
type Reader struct {
	// BufferSize is the read buffer capacity. One byte is always kept free,
	// so a head of BufferSize bytes or more is rejected as oversize.
	BufferSize int

	// Timeout bounds both each individual read (through the socket read
	// deadline) and the whole head (through a monotonic elapsed check).
	Timeout time.Duration

	now func() time.Time
}

// NewReader returns a Reader with the given limits.
func NewReader(bufferSize int, timeout time.Duration) *Reader {
	return &Reader{BufferSize: bufferSize, Timeout: timeout, now: time.Now}
}

// ReadRequest accumulates bytes from conn until the CRLFCRLF terminator
// shows up, then parses the request line.
//
// After every read the checks run in a fixed order: elapsed time (408),
// buffer full (413), terminator present. A peer that half-closes after
// sending a partial head gets 400; one that closes before sending anything,
// or a socket that fails outright, yields ErrConnectionLost.
func (r *Reader) ReadRequest(conn net.Conn, ip string) (*Request, error) {
	buf := bufpool.Get(r.BufferSize)
	defer bufpool.Put(buf)

	now := r.now
	if now == nil {
		now = time.Now
	}

	start := now()
	total := 0

	for {
		if err := conn.SetReadDeadline(now().Add(r.Timeout)); err != nil {
			return nil, fmt.Errorf("%w: set read deadline: %v", ErrConnectionLost, err)
		}

		n, err := conn.Read(buf[total:])
		if n > 0 {
			prev := total
			total += n

			if now().Sub(start) >= r.Timeout {
				return nil, newError(KindTimeout, StatusRequestTimeout, "read", nil)
			}
			if total > r.BufferSize-1 {
				return nil, newError(KindOversize, StatusContentTooLarge, "read",
					fmt.Errorf("request head exceeds %d bytes", r.BufferSize-1))
			}

			// The terminator may straddle two reads.
			from := max(prev-len(terminator)+1, 0)
			if i := bytes.Index(buf[from:total], terminator); i >= 0 {
				end := from + i + len(terminator)
				raw := make([]byte, end)
				copy(raw, buf[:end])
				return parseRequest(ip, raw), nil
			}
		}

		if err != nil {
			return nil, r.readError(err, total)
		}
	}
}

func (r *Reader) readError(err error, total int) error {
	var ne net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return newError(KindTimeout, StatusRequestTimeout, "read", err)
	case errors.Is(err, io.EOF) && total > 0:
		return newError(KindProtocol, StatusBadRequest, "read",
			fmt.Errorf("peer closed after %d bytes without terminator", total))
	default:
		return fmt.Errorf("%w: %v", ErrConnectionLost, err)
	}
}
