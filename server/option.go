package server

import (
	"errors"
	"io"
	"time"

	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	mcpserver "github.com/viant/mcp/server"
)

// Option is a function that configures the service.
type Option func(s *Service) error

// WithImplementation sets the server name and version advertised to clients.
func WithImplementation(name, version string) Option {
	return func(s *Service) error {
		if name == "" {
			return errors.New("implementation name was empty")
		}
		s.info = schema.Implementation{Name: name, Version: version}
		return nil
	}
}

// WithNewHandler sets the MCP handler factory.
func WithNewHandler(newHandler protoserver.NewHandler) Option {
	return func(s *Service) error {
		s.newHandler = newHandler
		return nil
	}
}

// WithCORS sets CORS rules applied by network transports.
func WithCORS(cors *mcpserver.Cors) Option {
	return func(s *Service) error {
		s.cors = cors
		return nil
	}
}

// WithAllowAllOrigins accepts cross origin requests from any origin.
func WithAllowAllOrigins() Option {
	return WithCORS(&mcpserver.Cors{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"*"},
		AllowHeaders: []string{"*"},
	})
}

// WithShutdownTimeout bounds graceful shutdown of network listeners.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Service) error {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
		return nil
	}
}

// WithStdin replaces os.Stdin as the stdio transport input.
func WithStdin(stdin io.ReadCloser) Option {
	return func(s *Service) error {
		s.stdin = stdin
		return nil
	}
}
