package launcher

import (
	"strings"
	"time"
)

// Transport identifies the channel the MCP server talks over.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportSSE   Transport = "sse"
	TransportHTTP  Transport = "http"
)

// Transports lists supported transports in display order.
var Transports = []Transport{TransportStdio, TransportSSE, TransportHTTP}

// IsNetwork reports whether the transport listens on a TCP port.
func (t Transport) IsNetwork() bool {
	return t == TransportSSE || t == TransportHTTP
}

// Profile holds start-up timing and retry parameters for a transport.
type Profile struct {
	StartupDelay time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	// Port and Host are only meaningful for network transports.
	Port              int
	Host              string
	ConnectionTimeout time.Duration
}

var profiles = map[Transport]Profile{
	TransportStdio: {
		StartupDelay: 100 * time.Millisecond,
		MaxRetries:   1,
		RetryDelay:   500 * time.Millisecond,
	},
	TransportSSE: {
		StartupDelay:      3 * time.Second,
		MaxRetries:        5,
		RetryDelay:        3 * time.Second,
		Port:              8080,
		Host:              "0.0.0.0",
		ConnectionTimeout: 10 * time.Second,
	},
	TransportHTTP: {
		StartupDelay: 500 * time.Millisecond,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		Port:         8000,
		Host:         "127.0.0.1",
	},
}

// LookupProfile returns a copy of the default profile for the transport.
func LookupProfile(transport Transport) (Profile, bool) {
	profile, ok := profiles[transport]
	return profile, ok
}

// ValidTransport reports whether name is a supported transport.
func ValidTransport(name string) bool {
	_, ok := profiles[Transport(name)]
	return ok
}

func transportNames() string {
	names := make([]string, 0, len(Transports))
	for _, transport := range Transports {
		names = append(names, string(transport))
	}
	return strings.Join(names, ", ")
}
