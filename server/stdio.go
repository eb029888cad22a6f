package server

import (
	"context"
	"errors"

	"github.com/viant/jsonrpc/transport/server/stdio"
)

// runStdio serves JSON-RPC over standard input/output.
func (s *Service) runStdio(ctx context.Context) error {
	var options []stdio.Option
	if s.stdin != nil {
		options = append(options, stdio.WithReader(s.stdin))
	}
	srv := stdio.New(ctx, s.mcp.NewHandler, options...)
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe()
	}()
	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	case <-ctx.Done():
		// stdin reads are not interruptible; the process exits shortly after.
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	}
}
