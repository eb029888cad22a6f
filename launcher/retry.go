package launcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/viant/mcp-launcher/internal/telemetry"
	"github.com/viant/mcp-launcher/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Server is the blocking MCP server entry point driven by the launcher.
type Server interface {
	Run(ctx context.Context, transport string, options *server.RunOptions) error
}

// State is a step of the start-up state machine.
type State int

const (
	StateWaiting State = iota
	StateAttempting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateAttempting:
		return "ATTEMPTING"
	case StateSucceeded:
		return "SUCCEEDED"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// StateObserver is called on every state transition; attempt is 0 while waiting.
type StateObserver func(state State, attempt int)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Runner starts a server with a fixed start-up delay and a bounded number of
// retries separated by a constant delay.
type Runner struct {
	server   Server
	logger   *slog.Logger
	probe    *Probe
	sleep    Sleeper
	observer StateObserver
	tracer   trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(r *Runner)

// WithRunnerSleeper replaces the context aware time.Sleep.
func WithRunnerSleeper(sleep Sleeper) RunnerOption {
	return func(r *Runner) {
		r.sleep = sleep
	}
}

// WithStateObserver registers a state transition callback.
func WithStateObserver(observer StateObserver) RunnerOption {
	return func(r *Runner) {
		r.observer = observer
	}
}

// WithProbe sets the port probe.
func WithProbe(probe *Probe) RunnerOption {
	return func(r *Runner) {
		r.probe = probe
	}
}

// Run waits the profile start-up delay, probes the port, then invokes the
// server up to MaxRetries+1 times; a negative MaxRetries runs it zero times.
// It returns nil once the server returned
// without error, ctx.Err() when cancelled, or *RetriesExhaustedError.
func (r *Runner) Run(ctx context.Context, transport Transport, config *RunConfig) error {
	profile, ok := LookupProfile(transport)
	if !ok {
		return &ConfigError{Field: "transport", Value: string(transport)}
	}
	profile = config.Resolve(profile)

	r.notify(StateWaiting, 0)
	r.logger.Info("Waiting before starting server...", "delay", profile.StartupDelay)
	if err := r.sleep(ctx, profile.StartupDelay); err != nil {
		return err
	}

	if !r.probe.Available(ctx, transport, profile.Port) {
		r.logger.Warn("Transport may not be available. Proceeding with caution.", "transport", transport, "port", profile.Port)
	}

	options := runOptions(transport, profile)
	total := profile.MaxRetries + 1
	var last error
	for attempt := 1; attempt <= total; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.notify(StateAttempting, attempt)
		r.logger.Info("Starting server", "transport", transport, "attempt", attempt, "of", total)
		err := r.attempt(ctx, transport, attempt, total, options)
		if err == nil {
			r.notify(StateSucceeded, attempt)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		last = err
		r.logger.Error("Error starting server", "category", err.Category.String(), "attempt", attempt, "error", err.Err)
		if attempt < total {
			r.logger.Info("Retrying", "delay", profile.RetryDelay)
			if err := r.sleep(ctx, profile.RetryDelay); err != nil {
				return err
			}
		}
	}

	attempts := max(total, 0)
	r.notify(StateFailed, attempts)
	exhausted := &RetriesExhaustedError{Attempts: attempts, Last: last}
	r.logger.Error("Failed to start server after all attempts", "attempts", attempts, "error", last)
	return exhausted
}

func (r *Runner) attempt(ctx context.Context, transport Transport, attempt, total int, options *server.RunOptions) *AttemptError {
	ctx, span := r.tracer.Start(ctx, "launcher.attempt", trace.WithAttributes(
		attribute.String("mcp.transport", string(transport)),
		attribute.Int("launcher.attempt", attempt),
		attribute.Int("launcher.attempts", total),
	))
	defer span.End()
	err := r.server.Run(ctx, string(transport), options)
	if err == nil {
		return nil
	}
	ret := &AttemptError{Attempt: attempt, Category: Classify(err), Err: err}
	span.RecordError(err)
	span.SetAttributes(attribute.String("launcher.failure", ret.Category.String()))
	span.SetStatus(codes.Error, err.Error())
	return ret
}

func (r *Runner) notify(state State, attempt int) {
	if r.observer != nil {
		r.observer(state, attempt)
	}
}

func runOptions(transport Transport, profile Profile) *server.RunOptions {
	if !transport.IsNetwork() {
		return &server.RunOptions{}
	}
	return &server.RunOptions{
		Port:              profile.Port,
		Host:              profile.Host,
		ConnectionTimeout: profile.ConnectionTimeout,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewRunner creates a Runner for srv.
func NewRunner(srv Server, logger *slog.Logger, options ...RunnerOption) *Runner {
	r := &Runner{
		server: srv,
		logger: logger,
		sleep:  sleepContext,
		tracer: telemetry.Tracer(),
	}
	for _, option := range options {
		option(r)
	}
	if r.probe == nil {
		r.probe = NewProbe(time.Second, logger)
	}
	return r
}
