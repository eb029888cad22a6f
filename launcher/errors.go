package launcher

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ConfigError reports an invalid transport name or flag value.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Value == "":
		return fmt.Sprintf("invalid %v: %v", e.Field, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("invalid %v %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %v %q", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Category classifies a failed start attempt.
type Category int

const (
	UnclassifiedFailure Category = iota
	ConnectionFailure
	OSFailure
)

func (c Category) String() string {
	switch c {
	case ConnectionFailure:
		return "connection"
	case OSFailure:
		return "os"
	default:
		return "unclassified"
	}
}

// Classify maps a server run error to a failure category.
func Classify(err error) Category {
	if err == nil {
		return UnclassifiedFailure
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) {
		return ConnectionFailure
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return ConnectionFailure
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return OSFailure
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return OSFailure
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return OSFailure
	}
	return UnclassifiedFailure
}

// AttemptError wraps the error returned by a single server run attempt.
type AttemptError struct {
	Attempt  int
	Category Category
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d (%v): %v", e.Attempt, e.Category, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// RetriesExhaustedError is returned once every allowed attempt failed.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("failed to start server after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("failed to start server after %d attempts, last error: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }
