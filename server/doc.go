// Package server adapts the github.com/viant/mcp server library to the
// launcher: a Service is built once per process and its Run method serves
// one transport until the context is cancelled or the listener fails.
//
//	srv, _ := server.New(ctx, server.WithImplementation("portfolio-manager", "0.1"))
//	err := srv.Run(ctx, "http", &server.RunOptions{Port: 8000, Host: "127.0.0.1"})
//
// Transports:
//   - stdio: JSON-RPC over standard input/output
//   - sse: HTTP with server-sent events (/sse, /message)
//   - http: streamable HTTP (/mcp)
package server
