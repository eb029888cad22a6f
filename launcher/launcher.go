package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/viant/mcp-launcher/internal/telemetry"
	"github.com/viant/mcp-launcher/server"
)

const telemetryShutdownTimeout = 5 * time.Second

// ServerFactory builds the MCP server once per launch.
type ServerFactory func(ctx context.Context, environment *Environment, transport Transport) (Server, error)

// Launcher parses configuration, installs signal handling and drives a Runner.
type Launcher struct {
	newServer     ServerFactory
	stderr        io.Writer
	exit          func(code int)
	sleep         Sleeper
	signals       []os.Signal
	lookupEnviron func() (*Environment, error)
}

// Option configures a Launcher.
type Option func(l *Launcher)

// WithServerFactory replaces the default github.com/viant/mcp based server.
func WithServerFactory(factory ServerFactory) Option {
	return func(l *Launcher) {
		l.newServer = factory
	}
}

// WithOutput sets the log destination, stderr by default.
func WithOutput(w io.Writer) Option {
	return func(l *Launcher) {
		l.stderr = w
	}
}

// WithExit replaces os.Exit used on a forced shutdown.
func WithExit(exit func(code int)) Option {
	return func(l *Launcher) {
		l.exit = exit
	}
}

// WithSleeper replaces the delay function used between start-up steps.
func WithSleeper(sleep Sleeper) Option {
	return func(l *Launcher) {
		l.sleep = sleep
	}
}

// WithSignals sets the signals treated as termination requests.
func WithSignals(signals ...os.Signal) Option {
	return func(l *Launcher) {
		l.signals = signals
	}
}

// Run launches the server with args; it returns nil on a clean stop or interrupt.
func (l *Launcher) Run(ctx context.Context, args []string) error {
	environment, err := l.lookupEnviron()
	if err != nil {
		slog.New(slog.NewTextHandler(l.stderr, nil)).Error("invalid environment", "component", Component, "error", err)
		return &ConfigError{Field: "environment", Err: err}
	}
	logger, err := NewLogger(l.stderr, environment.LogLevel, environment.LogFormat)
	if err != nil {
		slog.New(slog.NewTextHandler(l.stderr, nil)).Error("invalid logging configuration", "component", Component, "error", err)
		return err
	}
	logger.Info("Portfolio Manager MCP Server starting")

	name, config, err := ParseArgs(args, environment)
	if err != nil {
		if IsHelp(err) {
			fmt.Fprintln(l.stderr, err.Error())
			return nil
		}
		logger.Error("Invalid command line argument", "error", err)
		return err
	}
	if !ValidTransport(name) {
		logger.Error(fmt.Sprintf("Invalid transport type: %v. Valid options are: %v", name, transportNames()))
		return &ConfigError{Field: "transport", Value: name}
	}
	transport := Transport(name)
	logger.Info("Starting MCP server", "transport", transport)
	if !config.IsEmpty() {
		logger.Info("Transport configuration", "config", config.String())
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: environment.ServerName,
		Endpoint:    environment.OTelEndpoint,
		Enabled:     environment.OTelEnabled,
	})
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", "error", err)
		}
	}()

	ctx, shutdown := NewShutdown(ctx, logger, l.exit)
	defer shutdown.release()
	stop := shutdown.Notify(l.signals...)
	defer stop()

	srv, err := l.newServer(ctx, environment, transport)
	if err != nil {
		logger.Error("Failed to create MCP server", "error", err)
		return fmt.Errorf("create server: %w", err)
	}
	logger.Info("MCP server created successfully")
	defer func() {
		logger.Info("Shutting down MCP server...")
		logger.Info("MCP server shutdown complete")
	}()

	runner := NewRunner(srv, logger,
		WithRunnerSleeper(l.sleep),
		WithProbe(NewProbe(environment.ProbeTimeout, logger)),
	)
	err = runner.Run(ctx, transport, config)
	switch {
	case err == nil:
		return nil
	case shutdown.Requested() && errors.Is(err, context.Canceled):
		logger.Info("Server interrupted")
		return nil
	}
	logger.Error("Failed to start the server after all attempts.", "error", err)
	return err
}

func newServer(ctx context.Context, environment *Environment, transport Transport) (Server, error) {
	options := []server.Option{
		server.WithImplementation(environment.ServerName, environment.ServerVersion),
	}
	if transport == TransportSSE {
		options = append(options, server.WithAllowAllOrigins())
	}
	return server.New(ctx, options...)
}

// New creates a Launcher with production defaults.
func New(options ...Option) *Launcher {
	l := &Launcher{
		newServer:     newServer,
		stderr:        os.Stderr,
		exit:          os.Exit,
		sleep:         sleepContext,
		signals:       []os.Signal{os.Interrupt, syscall.SIGTERM},
		lookupEnviron: ParseEnvironment,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Run launches the MCP server with command line args.
func Run(args []string) error {
	return New().Run(context.Background(), args)
}
