package http1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	statusLine string
	headers    map[string]string
	body       string
}

// capture runs write against the server end of a pipe and parses whatever
// the client end receives.
func capture(t *testing.T, write func(w *ResponseWriter) error) response {
	t.Helper()
	server, client := pipe(t)

	w := NewResponseWriter(server, "Test Server", 8)
	w.now = func() time.Time { return time.Date(2024, 11, 14, 15, 4, 45, 0, time.Local) }

	errc := make(chan error, 1)
	go func() {
		errc <- write(w)
		_ = server.Close()
	}()

	br := bufio.NewReader(client)
	line, err := br.ReadString('\n')
	require.NoError(t, err)

	resp := response{statusLine: strings.TrimRight(line, "\r\n"), headers: map[string]string{}}
	for {
		h, err := br.ReadString('\n')
		require.NoError(t, err)
		h = strings.TrimRight(h, "\r\n")
		if h == "" {
			break
		}
		k, v, ok := strings.Cut(h, ": ")
		require.True(t, ok, "malformed header %q", h)
		resp.headers[k] = v
	}

	body, err := io.ReadAll(br)
	require.NoError(t, err)
	resp.body = string(body)

	require.NoError(t, <-errc)
	return resp
}

func TestWriteError(t *testing.T) {
	codes := []int{
		StatusBadRequest, StatusForbidden, StatusNotFound, StatusMethodNotAllowed,
		StatusRequestTimeout, StatusContentTooLarge, StatusTeapot,
		StatusRequestHeaderFieldsTooLarge, StatusInternalServerError, StatusHTTPVersionNotSupported,
	}

	for _, code := range codes {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			resp := capture(t, func(w *ResponseWriter) error { return w.WriteError(code) })

			wantBody := fmt.Sprintf("<h1>%d %s</h1>\n", code, StatusText(code))
			assert.Equal(t, fmt.Sprintf("HTTP/1.1 %d %s", code, StatusText(code)), resp.statusLine)
			assert.Equal(t, ErrorContentType, resp.headers["Content-Type"])
			assert.Equal(t, strconv.Itoa(len(wantBody)), resp.headers["Content-Length"])
			assert.Equal(t, "Test Server", resp.headers["Server"])
			assert.Equal(t, "close", resp.headers["Connection"])
			assert.Equal(t, "Thu, 14 Nov 24, 15:04:45 "+time.Date(2024, 11, 14, 0, 0, 0, 0, time.Local).Format("MST"), resp.headers["Date"])
			assert.Equal(t, wantBody, resp.body)
		})
	}
}

func TestWriteOptions(t *testing.T) {
	resp := capture(t, func(w *ResponseWriter) error { return w.WriteOptions() })

	assert.Equal(t, "HTTP/1.1 204 No Content", resp.statusLine)
	assert.Equal(t, "GET, HEAD, OPTIONS", resp.headers["Allow"])
	assert.Empty(t, resp.body)
	assert.NotContains(t, resp.headers, "Content-Length")
}

func TestWriteContent(t *testing.T) {
	content := "body streamed in several small chunks"

	t.Run("GET", func(t *testing.T) {
		resp := capture(t, func(w *ResponseWriter) error {
			return w.WriteContent(MethodGet, "text/css", int64(len(content)), strings.NewReader(content))
		})

		assert.Equal(t, "HTTP/1.1 200 OK", resp.statusLine)
		assert.Equal(t, "text/css", resp.headers["Content-Type"])
		assert.Equal(t, strconv.Itoa(len(content)), resp.headers["Content-Length"])
		assert.Equal(t, content, resp.body)
	})

	t.Run("HEAD", func(t *testing.T) {
		resp := capture(t, func(w *ResponseWriter) error {
			return w.WriteContent(MethodHead, "text/css", int64(len(content)), strings.NewReader(content))
		})

		assert.Equal(t, "HTTP/1.1 200 OK", resp.statusLine)
		assert.Equal(t, "text/css", resp.headers["Content-Type"])
		assert.Equal(t, strconv.Itoa(len(content)), resp.headers["Content-Length"])
		assert.Empty(t, resp.body)
	})
}

func TestWriteContent_PeerGone(t *testing.T) {
	server, client := net.Pipe()
	_ = client.Close()
	defer server.Close()

	w := NewResponseWriter(server, "Test Server", 8)
	err := w.WriteContent(MethodGet, "text/plain", 3, strings.NewReader("abc"))
	assert.Error(t, err)
	assert.Equal(t, StatusOK, w.Status())
	assert.Zero(t, w.BytesWritten())
}

type codedErr struct{ code int }

func (c codedErr) Error() string   { return "coded" }
func (c codedErr) HTTPStatus() int { return c.code }

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"protocol error", newError(KindProtocol, StatusBadRequest, "parse", nil), StatusBadRequest},
		{"wrapped", fmt.Errorf("outer: %w", newError(KindTimeout, StatusRequestTimeout, "read", nil)), StatusRequestTimeout},
		{"foreign status coder", codedErr{StatusForbidden}, StatusForbidden},
		{"unknown code", codedErr{999}, StatusInternalServerError},
		{"plain error", errors.New("boom"), StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 11, 14, 15, 4, 45, 0, time.Local)
	assert.True(t, strings.HasPrefix(FormatDate(ts), "Thu, 14 Nov 24, 15:04:45 "))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "VERSION_CHECKED", StateVersionChecked.String())
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.True(t, StateClosed.Terminal())
	assert.False(t, StateResponding.Terminal())
}
