// Command mcp-launcher starts the portfolio MCP server over stdio, SSE or
// streamable HTTP and retries start-up failures.
//
// Usage:
//
//	mcp-launcher [--sse] [--transport=stdio|sse|http] [--port=N] [--retry=N] [--host=ADDR]
//
// Exit status is 0 on a clean stop or interrupt and 1 on invalid arguments,
// server creation failure, exhausted retries or a forced (second signal)
// shutdown. Logs go to stderr; stdout is reserved for the stdio transport.
package main
