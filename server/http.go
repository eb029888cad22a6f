package server

import (
	"context"
	"errors"
	"net/http"
)

// runHTTP serves SSE or streamable HTTP on options.Addr().
func (s *Service) runHTTP(ctx context.Context, streamable bool, options *RunOptions) error {
	if options == nil || options.Port <= 0 {
		return errors.New("port is required for network transports")
	}
	s.mcp.UseStreamableHTTP(streamable)
	srv := s.mcp.HTTP(ctx, options.Addr())
	if options.ConnectionTimeout > 0 {
		srv.ReadHeaderTimeout = options.ConnectionTimeout
	}
	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe()
	}()
	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-done
		return nil
	}
}
