package launcher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-launcher/server"
)

type serverCall struct {
	transport string
	options   server.RunOptions
}

type fakeServer struct {
	mu      sync.Mutex
	calls   []serverCall
	results []error
	run     func(ctx context.Context) error
}

func (s *fakeServer) Run(ctx context.Context, transport string, options *server.RunOptions) error {
	s.mu.Lock()
	s.calls = append(s.calls, serverCall{transport: transport, options: *options})
	index := len(s.calls) - 1
	s.mu.Unlock()
	if s.run != nil {
		return s.run(ctx)
	}
	if len(s.results) == 0 {
		return nil
	}
	if index >= len(s.results) {
		index = len(s.results) - 1
	}
	return s.results[index]
}

func (s *fakeServer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func addrInUse() error {
	return &net.OpError{Op: "listen", Net: "tcp", Err: os.NewSyscallError("bind", syscall.EADDRINUSE)}
}

func stubProbe(available bool) *Probe {
	probe := NewProbe(time.Second, discardLogger())
	probe.dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		if available {
			return nil, errors.New("connection refused")
		}
		client, peer := net.Pipe()
		_ = peer.Close()
		return client, nil
	}
	return probe
}

func TestRunnerRetriesUntilExhausted(t *testing.T) {
	srv := &fakeServer{results: []error{addrInUse()}}
	sleeper := &recordingSleeper{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	var states []State

	runner := NewRunner(srv, logger,
		WithRunnerSleeper(sleeper.sleep),
		WithProbe(stubProbe(true)),
		WithStateObserver(func(state State, attempt int) { states = append(states, state) }),
	)
	err := runner.Run(context.Background(), TransportHTTP, &RunConfig{Port: intPtr(8000), MaxRetries: intPtr(3)})

	var exhausted *RetriesExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 4, exhausted.Attempts)
	assert.ErrorIs(t, err, syscall.EADDRINUSE)
	var attemptErr *AttemptError
	require.True(t, errors.As(err, &attemptErr))
	assert.Equal(t, 4, attemptErr.Attempt)
	assert.Equal(t, OSFailure, attemptErr.Category)

	assert.Equal(t, 4, srv.callCount())
	for _, call := range srv.calls {
		assert.Equal(t, "http", call.transport)
		assert.Equal(t, server.RunOptions{Port: 8000, Host: "127.0.0.1"}, call.options)
	}
	// startup delay followed by three constant retry delays
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, time.Second, time.Second}, sleeper.delays)
	assert.Equal(t, []State{StateWaiting, StateAttempting, StateAttempting, StateAttempting, StateAttempting, StateFailed}, states)
	assert.Contains(t, logs.String(), "Failed to start server after all attempts")
	assert.Contains(t, logs.String(), "address already in use")
	assert.Contains(t, logs.String(), "category=os")
}

func TestRunnerAttemptBound(t *testing.T) {
	for maxRetries := 0; maxRetries <= 5; maxRetries++ {
		srv := &fakeServer{results: []error{errors.New("boom")}}
		sleeper := &recordingSleeper{}
		runner := NewRunner(srv, discardLogger(), WithRunnerSleeper(sleeper.sleep), WithProbe(stubProbe(true)))
		err := runner.Run(context.Background(), TransportSSE, &RunConfig{MaxRetries: intPtr(maxRetries)})
		assert.Error(t, err)
		assert.Equal(t, maxRetries+1, srv.callCount(), "max retries %d", maxRetries)
		require.Len(t, sleeper.delays, maxRetries+1)
		for _, delay := range sleeper.delays[1:] {
			assert.Equal(t, 3*time.Second, delay)
		}
	}
}

func TestRunnerNegativeRetriesSkipsServer(t *testing.T) {
	srv := &fakeServer{}
	sleeper := &recordingSleeper{}
	var logs bytes.Buffer
	var states []State
	runner := NewRunner(srv, slog.New(slog.NewTextHandler(&logs, nil)),
		WithRunnerSleeper(sleeper.sleep),
		WithProbe(stubProbe(true)),
		WithStateObserver(func(state State, attempt int) { states = append(states, state) }),
	)
	err := runner.Run(context.Background(), TransportStdio, &RunConfig{MaxRetries: intPtr(-1)})

	var exhausted *RetriesExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 0, exhausted.Attempts)
	assert.EqualError(t, err, "failed to start server after 0 attempts")
	assert.Equal(t, 0, srv.callCount())
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, sleeper.delays)
	assert.Equal(t, []State{StateWaiting, StateFailed}, states)
	assert.Contains(t, logs.String(), "Failed to start server after all attempts")
}

func TestRunnerSucceedsFirstAttempt(t *testing.T) {
	srv := &fakeServer{}
	sleeper := &recordingSleeper{}
	var states []State
	runner := NewRunner(srv, discardLogger(),
		WithRunnerSleeper(sleeper.sleep),
		WithStateObserver(func(state State, attempt int) { states = append(states, state) }),
	)
	err := runner.Run(context.Background(), TransportStdio, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, srv.callCount())
	assert.Equal(t, server.RunOptions{}, srv.calls[0].options)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, sleeper.delays)
	assert.Equal(t, []State{StateWaiting, StateAttempting, StateSucceeded}, states)
}

func TestRunnerRecoversAfterFailure(t *testing.T) {
	srv := &fakeServer{results: []error{errors.New("first"), &net.OpError{Op: "dial", Err: errors.New("refused")}, nil}}
	sleeper := &recordingSleeper{}
	runner := NewRunner(srv, discardLogger(), WithRunnerSleeper(sleeper.sleep), WithProbe(stubProbe(false)))
	err := runner.Run(context.Background(), TransportSSE, nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, srv.callCount())
	assert.Equal(t, server.RunOptions{Port: 8080, Host: "0.0.0.0", ConnectionTimeout: 10 * time.Second}, srv.calls[0].options)
}

func TestRunnerStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &fakeServer{run: func(runCtx context.Context) error {
		cancel()
		<-runCtx.Done()
		return nil
	}}
	runner := NewRunner(srv, discardLogger(), WithRunnerSleeper(func(context.Context, time.Duration) error { return nil }), WithProbe(stubProbe(true)))
	err := runner.Run(ctx, TransportHTTP, nil)
	// a server returning nil counts as a clean stop
	assert.NoError(t, err)
	assert.Equal(t, 1, srv.callCount())

	ctx, cancel = context.WithCancel(context.Background())
	srv = &fakeServer{run: func(runCtx context.Context) error {
		cancel()
		return errors.New("listener closed")
	}}
	runner = NewRunner(srv, discardLogger(), WithRunnerSleeper(sleepContext), WithProbe(stubProbe(true)))
	err = runner.Run(ctx, TransportStdio, &RunConfig{MaxRetries: intPtr(5)})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, srv.callCount())
}

func TestRunnerCancelledDuringStartupDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := &fakeServer{}
	runner := NewRunner(srv, discardLogger())
	err := runner.Run(ctx, TransportSSE, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, srv.callCount())
}

func TestRunnerUnknownTransport(t *testing.T) {
	srv := &fakeServer{}
	runner := NewRunner(srv, discardLogger())
	err := runner.Run(context.Background(), "ftp", nil)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
	assert.Equal(t, 0, srv.callCount())
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	started := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(started), time.Second)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "WAITING", StateWaiting.String())
	assert.Equal(t, "ATTEMPTING", StateAttempting.String())
	assert.Equal(t, "SUCCEEDED", StateSucceeded.String())
	assert.Equal(t, "FAILED", StateFailed.String())
}
