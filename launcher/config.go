package launcher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jessevdk/go-flags"
)

// Options defines command line flags. Unknown arguments are ignored.
// SSE and Transport are callbacks so that the last transport flag wins.
type Options struct {
	SSE       func()       `long:"sse" description:"shortcut for --transport=sse"`
	Transport func(string) `long:"transport" description:"mcp transport type, e.g., stdio, sse, http"`
	Port      *int         `long:"port" description:"listen port for network transports"`
	Retry     *int         `long:"retry" description:"max number of retries after the first attempt"`
	Host      string       `long:"host" description:"bind host for network transports"`
}

// Environment holds settings read from environment variables.
type Environment struct {
	Transport     string        `env:"MCP_LAUNCHER_TRANSPORT" envDefault:"stdio"`
	Port          *int          `env:"MCP_LAUNCHER_PORT"`
	Retry         *int          `env:"MCP_LAUNCHER_RETRY"`
	Host          string        `env:"MCP_LAUNCHER_HOST"`
	LogLevel      string        `env:"MCP_LAUNCHER_LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"MCP_LAUNCHER_LOG_FORMAT" envDefault:"text"`
	ProbeTimeout  time.Duration `env:"MCP_LAUNCHER_PROBE_TIMEOUT" envDefault:"1s"`
	ServerName    string        `env:"MCP_LAUNCHER_SERVER_NAME" envDefault:"portfolio-manager"`
	ServerVersion string        `env:"MCP_LAUNCHER_SERVER_VERSION" envDefault:"0.1"`
	OTelEndpoint  string        `env:"MCP_LAUNCHER_OTEL_ENDPOINT"`
	OTelEnabled   bool          `env:"MCP_LAUNCHER_OTEL_ENABLED" envDefault:"true"`
}

// ParseEnvironment loads Environment from process environment variables.
func ParseEnvironment() (*Environment, error) {
	ret := &Environment{}
	if err := env.Parse(ret); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return ret, nil
}

// RunConfig carries per-run overrides of the selected transport profile.
type RunConfig struct {
	Port       *int
	MaxRetries *int
	Host       string
}

// IsEmpty reports whether no override was supplied.
func (c *RunConfig) IsEmpty() bool {
	return c == nil || (c.Port == nil && c.MaxRetries == nil && c.Host == "")
}

// Resolve applies overrides to a copy of profile.
func (c *RunConfig) Resolve(profile Profile) Profile {
	if c == nil {
		return profile
	}
	if c.Port != nil {
		profile.Port = *c.Port
	}
	if c.MaxRetries != nil {
		profile.MaxRetries = *c.MaxRetries
	}
	if c.Host != "" {
		profile.Host = c.Host
	}
	return profile
}

func (c *RunConfig) String() string {
	if c.IsEmpty() {
		return "{}"
	}
	var parts []string
	if c.Port != nil {
		parts = append(parts, fmt.Sprintf("port:%d", *c.Port))
	}
	if c.MaxRetries != nil {
		parts = append(parts, fmt.Sprintf("max_retries:%d", *c.MaxRetries))
	}
	if c.Host != "" {
		parts = append(parts, "host:"+c.Host)
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// ParseArgs resolves the transport name and run overrides from environment
// defaults and command line arguments. When --sse and --transport are both
// given, the last one wins; an empty --transport= is kept for validation.
func ParseArgs(args []string, environment *Environment) (string, *RunConfig, error) {
	var selected *string
	options := &Options{
		SSE: func() {
			name := string(TransportSSE)
			selected = &name
		},
		Transport: func(name string) {
			selected = &name
		},
	}
	parser := flags.NewParser(options, flags.IgnoreUnknown|flags.HelpFlag)
	if _, err := parser.ParseArgs(args); err != nil {
		if IsHelp(err) {
			return "", nil, err
		}
		return "", nil, &ConfigError{Field: "flag", Err: err}
	}

	config := &RunConfig{}
	transport := string(TransportStdio)
	if environment != nil {
		if environment.Transport != "" {
			transport = environment.Transport
		}
		config.Port = environment.Port
		config.MaxRetries = environment.Retry
		config.Host = environment.Host
	}
	if selected != nil {
		transport = *selected
	}
	if options.Port != nil {
		config.Port = options.Port
	}
	if options.Retry != nil {
		config.MaxRetries = options.Retry
	}
	if options.Host != "" {
		config.Host = options.Host
	}
	return transport, config, nil
}

// IsHelp reports whether err was produced by a --help request.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}
