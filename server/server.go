package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	mcpserver "github.com/viant/mcp/server"
)

const defaultShutdownTimeout = 5 * time.Second

// RunOptions carries transport specific settings for a single Run.
type RunOptions struct {
	Port int
	Host string
	// ConnectionTimeout bounds reading request headers on network transports.
	ConnectionTimeout time.Duration
}

// Addr returns host:port for network transports.
func (o *RunOptions) Addr() string {
	if o == nil {
		return ""
	}
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Service runs the MCP server over a selected transport.
type Service struct {
	mcp             *mcpserver.Server
	info            schema.Implementation
	newHandler      protoserver.NewHandler
	cors            *mcpserver.Cors
	stdin           io.ReadCloser
	shutdownTimeout time.Duration
}

// Run serves transport until ctx is done or the listener fails.
// It returns nil when the server stopped because ctx was cancelled.
func (s *Service) Run(ctx context.Context, transport string, options *RunOptions) error {
	switch transport {
	case "stdio":
		return s.runStdio(ctx)
	case "sse":
		return s.runHTTP(ctx, false, options)
	case "http":
		return s.runHTTP(ctx, true, options)
	}
	return fmt.Errorf("unsupported transport: %v", transport)
}

// New creates a Service; with no handler option the server exposes an empty
// default handler.
func New(ctx context.Context, options ...Option) (*Service, error) {
	s := &Service{
		info: schema.Implementation{
			Name:    "MCP",
			Version: "0.1",
		},
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	if s.newHandler == nil {
		s.newHandler = protoserver.WithDefaultHandler(ctx, func(h *protoserver.DefaultHandler) error {
			return nil
		})
	}
	serverOptions := []mcpserver.Option{
		mcpserver.WithNewHandler(s.newHandler),
		mcpserver.WithImplementation(s.info),
	}
	if s.cors != nil {
		serverOptions = append(serverOptions, mcpserver.WithCORS(s.cors))
	}
	srv, err := mcpserver.New(serverOptions...)
	if err != nil {
		return nil, fmt.Errorf("create mcp server: %w", err)
	}
	s.mcp = srv
	return s, nil
}
