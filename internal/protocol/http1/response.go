package http1

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/marmos91/dittohttp/internal/bufpool"
)

// ErrorContentType is sent with every generated error page.
const ErrorContentType = "text/html; charset=UTF-8"

// ResponseWriter frames exactly one response onto a connection.
//
// It does not close the connection; the caller does that once the response
// has been written, whatever the outcome.
type ResponseWriter struct {
	conn       net.Conn
	serverName string
	chunkSize  int
	now        func() time.Time

	status  int
	written int64
}

// NewResponseWriter returns a writer that identifies itself as serverName
// and streams bodies in chunkSize pieces.
func NewResponseWriter(conn net.Conn, serverName string, chunkSize int) *ResponseWriter {
	return &ResponseWriter{
		conn:       conn,
		serverName: serverName,
		chunkSize:  chunkSize,
		now:        time.Now,
	}
}

// Status returns the status code of the response written so far, or 0.
func (w *ResponseWriter) Status() int {
	return w.status
}

// BytesWritten returns how many bytes reached the socket.
func (w *ResponseWriter) BytesWritten() int64 {
	return w.written
}

// WriteError sends the minimal HTML error page for status.
func (w *ResponseWriter) WriteError(status int) error {
	body := fmt.Sprintf("<h1>%d %s</h1>\n", status, StatusText(status))

	var b bytes.Buffer
	w.writeHead(&b, status)
	fmt.Fprintf(&b, "Content-Type: %s\r\n", ErrorContentType)
	fmt.Fprintf(&b, "Content-Length: %d\r\n", len(body))
	b.WriteString("Connection: close\r\n\r\n")
	b.WriteString(body)

	return w.send(b.Bytes())
}

// WriteOptions answers OPTIONS with 204 and the fixed Allow list.
func (w *ResponseWriter) WriteOptions() error {
	names := make([]string, len(SupportedMethods))
	for i, m := range SupportedMethods {
		names[i] = m.String()
	}

	var b bytes.Buffer
	b.WriteString("HTTP/1.1 204 No Content\r\n")
	fmt.Fprintf(&b, "Allow: %s\r\n", strings.Join(names, ", "))
	w.writeCommon(&b)
	b.WriteString("Connection: close\r\n\r\n")

	w.status = StatusNoContent
	return w.send(b.Bytes())
}

// WriteContent sends a 200 for GET or HEAD. The headers are identical for
// both; only GET streams body, in chunks of the configured size.
func (w *ResponseWriter) WriteContent(method Method, contentType string, size int64, body io.Reader) error {
	var b bytes.Buffer
	w.writeHead(&b, StatusOK)
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Length: " + strconv.FormatInt(size, 10) + "\r\n")
	b.WriteString("Connection: close\r\n\r\n")

	if err := w.send(b.Bytes()); err != nil {
		return err
	}
	if method == MethodHead || body == nil {
		return nil
	}

	chunk := bufpool.Get(w.chunkSize)
	defer bufpool.Put(chunk)

	for {
		n, rerr := body.Read(chunk)
		if n > 0 {
			if err := w.send(chunk[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read body: %w", rerr)
		}
	}
}

func (w *ResponseWriter) writeHead(b *bytes.Buffer, status int) {
	w.status = status
	fmt.Fprintf(b, "HTTP/1.1 %d %s\r\n", status, StatusText(status))
	w.writeCommon(b)
}

func (w *ResponseWriter) writeCommon(b *bytes.Buffer) {
	fmt.Fprintf(b, "Date: %s\r\n", FormatDate(w.now()))
	fmt.Fprintf(b, "Server: %s\r\n", w.serverName)
}

func (w *ResponseWriter) send(p []byte) error {
	n, err := w.conn.Write(p)
	w.written += int64(n)
	if err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
