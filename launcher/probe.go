package launcher

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"
)

const probeHost = "127.0.0.1"

// Probe checks whether a local port is free before a network server binds it.
// The result is advisory: the port can change state right after the check.
type Probe struct {
	timeout time.Duration
	logger  *slog.Logger
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

// Available reports whether transport can be started on port.
// A refused connection means nothing listens there yet.
func (p *Probe) Available(ctx context.Context, transport Transport, port int) bool {
	if transport == TransportStdio {
		return true
	}
	if !transport.IsNetwork() {
		p.logger.Warn("unknown transport type for status check", "transport", transport)
		return false
	}
	if err := ctx.Err(); err != nil {
		p.logger.Warn("error checking connection status", "transport", transport, "error", err)
		return false
	}
	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	conn, err := p.dial(dialCtx, "tcp", net.JoinHostPort(probeHost, strconv.Itoa(port)))
	if err != nil {
		p.logger.Debug("port probe", "transport", transport, "port", port, "result", err)
		return true
	}
	_ = conn.Close()
	return false
}

// NewProbe creates a probe dialing with the supplied timeout.
func NewProbe(timeout time.Duration, logger *slog.Logger) *Probe {
	if timeout <= 0 {
		timeout = time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	return &Probe{
		timeout: timeout,
		logger:  logger,
		dial:    dialer.DialContext,
	}
}
