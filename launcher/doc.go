// Package launcher starts an MCP server over one of the supported transports
// (stdio, sse, http) and keeps retrying the start-up until the server serves,
// retries run out or the process is asked to stop.
//
// Each transport carries a fixed profile of timing parameters:
//
//	transport  startup  retries  retry delay  port  host
//	stdio      100ms    1        500ms        -     -
//	sse        3s       5        3s           8080  0.0.0.0
//	http       500ms    3        1s           8000  127.0.0.1
//
// Profile values can be overridden from the environment (see Environment) and
// from command line flags (see Options), flags taking precedence:
//
//	mcp-launcher --transport=http --port=9000 --retry=5
//
// The first SIGINT/SIGTERM cancels the running server and stops retrying;
// a second one terminates the process with exit status 1.
package launcher
