package metrics

import "time"

// HTTPMetrics provides observability for the HTTP adapter.
//
// The adapter records one request per connection (there is no keep-alive),
// plus connection lifecycle and worker pool gauges. Passing nil to the
// adapter selects the no-op implementation.
type HTTPMetrics interface {
	// RecordRequest records a completed request.
	//
	// Parameters:
	//   - method: request method ("GET", "HEAD", ..., "N/A" when unparsed)
	//   - status: status code sent to the client
	//   - duration: time from dequeue to close
	RecordRequest(method string, status int, duration time.Duration)

	// RecordBytesSent records response bytes written to the socket.
	RecordBytesSent(bytes int64)

	// RecordConnectionAccepted increments the accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the closed connections counter.
	RecordConnectionClosed()

	// SetActiveConnections updates the number of open connections,
	// queued and in-flight.
	SetActiveConnections(count int32)

	// SetQueueDepth updates the number of connections waiting for a worker.
	SetQueueDepth(depth int)

	// SetBusyWorkers updates the number of workers handling a connection.
	SetBusyWorkers(busy int)

	// RecordAcceptThrottled counts accepts that had to wait on the rate limiter.
	RecordAcceptThrottled()
}

// NewNoopHTTPMetrics returns an HTTPMetrics that discards everything.
func NewNoopHTTPMetrics() HTTPMetrics {
	return noopHTTPMetrics{}
}

type noopHTTPMetrics struct{}

func (noopHTTPMetrics) RecordRequest(string, int, time.Duration) {}
func (noopHTTPMetrics) RecordBytesSent(int64)                    {}
func (noopHTTPMetrics) RecordConnectionAccepted()                {}
func (noopHTTPMetrics) RecordConnectionClosed()                  {}
func (noopHTTPMetrics) SetActiveConnections(int32)               {}
func (noopHTTPMetrics) SetQueueDepth(int)                        {}
func (noopHTTPMetrics) SetBusyWorkers(int)                       {}
func (noopHTTPMetrics) RecordAcceptThrottled()                   {}
