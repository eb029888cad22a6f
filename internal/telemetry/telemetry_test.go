package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	testCases := []struct {
		description string
		config      Config
	}{
		{
			description: "no endpoint",
			config:      Config{ServiceName: "test", Enabled: true},
		},
		{
			description: "disabled",
			config:      Config{ServiceName: "test", Endpoint: "http://localhost:4318", Enabled: false},
		},
		{
			// non-routable address so nothing is exported
			description: "enabled",
			config:      Config{ServiceName: "test", Endpoint: "http://192.0.2.1:4318", Enabled: true},
		},
	}

	for _, testCase := range testCases {
		shutdown, err := Setup(context.Background(), testCase.config)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.NoError(t, shutdown(context.Background()), testCase.description)
	}
}

func TestNoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{ServiceName: "test"})
	assert.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestTracer(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	defer span.End()
	assert.NotNil(t, span)
}
