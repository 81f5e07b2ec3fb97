package http1

import (
	"bytes"
	"strings"
)

// Version is the only protocol version accepted on the request line.
const Version = "HTTP/1.1"

// Request is one parsed request head.
type Request struct {
	// IP is the client address the request came from.
	IP string

	// Raw holds exactly the bytes read off the socket, terminator included.
	Raw []byte

	// Method is the first token of the request line.
	Method Method

	// Line is the request line without its line ending.
	Line string
}

// ParseMethod matches the first space-delimited token of raw against the
// known methods. Anything else, including a lowercase spelling, is
// MethodInvalid.
func ParseMethod(raw []byte) Method {
	raw = bytes.TrimLeft(raw, " ")
	if i := bytes.IndexByte(raw, ' '); i >= 0 {
		raw = raw[:i]
	}
	return lookupMethod(string(raw))
}

// RequestLine returns the bytes of raw up to the first CR.
func RequestLine(raw []byte) string {
	if i := bytes.IndexByte(raw, '\r'); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// ValidVersion reports whether the request line ends with HTTP/1.1.
func ValidVersion(raw []byte) bool {
	return strings.HasSuffix(RequestLine(raw), Version)
}

// Target rebuilds the request target from the request line: every token
// between the method and the version, joined by single spaces so that a
// name containing spaces survives tokenisation.
func (r *Request) Target() string {
	fields := strings.FieldsFunc(r.Line, func(c rune) bool { return c == ' ' })
	if len(fields) < 2 {
		return ""
	}

	parts := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		if f == Version {
			break
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

func parseRequest(ip string, raw []byte) *Request {
	return &Request{
		IP:     ip,
		Raw:    raw,
		Method: ParseMethod(raw),
		Line:   RequestLine(raw),
	}
}
