package launcher

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Component names the launcher in every log record.
const Component = "portfolio_mcp"

// NewLogger creates a single line structured logger writing to w.
// Every record carries the component name and a per-process launch id.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, &ConfigError{Field: "log level", Value: level, Err: err}
	}
	handlerOptions := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, handlerOptions)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOptions)
	default:
		return nil, &ConfigError{Field: "log format", Value: format, Err: fmt.Errorf("expected text or json")}
	}
	return slog.New(handler).With(
		slog.String("component", Component),
		slog.String("launch_id", uuid.NewString()),
	), nil
}
