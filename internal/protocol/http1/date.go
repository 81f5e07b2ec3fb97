package http1

import "time"

// DateLayout renders the Date header in server-local time,
// e.g. "Thu, 14 Nov 24, 15:04:45 PST".
const DateLayout = "Mon, 02 Jan 06, 15:04:05 MST"

// FormatDate formats t for the Date header.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}
