package http1

import "strings"

// ConsoleWidth is the widest request log line ever emitted.
const ConsoleWidth = 80

const ellipsis = " ... "

// TruncateLine joins preamble and text and, when the result would not fit
// in ConsoleWidth columns, cuts it and appends an ellipsis. When keepVersion
// is set the protocol version is re-appended after the ellipsis so the line
// still reads as a request line.
func TruncateLine(preamble, text string, keepVersion bool) string {
	line := preamble + text
	if len(line) <= ConsoleWidth {
		return line
	}

	cut := ConsoleWidth - len(ellipsis) - 1
	if keepVersion {
		cut -= len(Version) + 1
	}

	var b strings.Builder
	b.WriteString(line[:cut])
	b.WriteString(ellipsis)
	if keepVersion {
		b.WriteString(Version)
	}
	return b.String()
}

// LogLine renders the per-request console line for req.
func (r *Request) LogLine() string {
	return TruncateLine("Request from "+r.IP+": ", r.Line, true)
}
