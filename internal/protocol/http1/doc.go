// Package http1 implements the small slice of HTTP/1.1 the server speaks:
// reading one request head per connection, validating its request line and
// writing a single framed response before the connection is closed.
//
// There is no keep-alive, no request body and no chunked transfer encoding.
// The package knows nothing about the filesystem; resolving a request target
// into something to send is the caller's job.
package http1
