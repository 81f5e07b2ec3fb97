//go:build !unix

package http

import (
	"fmt"
	"net"

	"github.com/marmos91/dittohttp/internal/logger"
)

// listen falls back to net.Listen; the backlog is left to the platform.
func listen(port, backlog int) (net.Listener, error) {
	logger.Debug("Listen backlog %d not configurable on this platform", backlog)
	return net.Listen("tcp", fmt.Sprintf(":%d", port))
}
