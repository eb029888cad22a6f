package launcher

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
)

// Shutdown tracks a termination request for a single launch.
// The first signal cancels the run context; a second one exits the process.
type Shutdown struct {
	requested atomic.Bool
	cancel    context.CancelFunc
	exit      func(code int)
	logger    *slog.Logger
}

// Requested reports whether a termination signal has been received.
func (s *Shutdown) Requested() bool {
	return s.requested.Load()
}

// Handle processes a termination signal.
func (s *Shutdown) Handle(sig os.Signal) {
	if !s.requested.CompareAndSwap(false, true) {
		s.logger.Warn("Forced shutdown triggered", "signal", sig.String())
		s.exit(1)
		return
	}
	s.logger.Info("Shutdown signal received, stopping server gracefully...", "signal", sig.String())
	s.cancel()
}

func (s *Shutdown) release() {
	s.cancel()
}

// Notify routes the given signals to Handle until stop is called.
func (s *Shutdown) Notify(signals ...os.Signal) (stop func()) {
	if len(signals) == 0 {
		return func() {}
	}
	ch := make(chan os.Signal, 2)
	done := make(chan struct{})
	signal.Notify(ch, signals...)
	go func() {
		for {
			select {
			case sig := <-ch:
				s.Handle(sig)
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// NewShutdown returns a context cancelled by the first termination signal.
func NewShutdown(ctx context.Context, logger *slog.Logger, exit func(code int)) (context.Context, *Shutdown) {
	if exit == nil {
		exit = os.Exit
	}
	ctx, cancel := context.WithCancel(ctx)
	return ctx, &Shutdown{cancel: cancel, exit: exit, logger: logger}
}
