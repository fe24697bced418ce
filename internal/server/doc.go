// Package server assembles the runnable MCP server: it wires the session
// and credential stores, the OAuth flow, the token extraction middleware,
// and the Google Analytics tool set onto the configured transport
// (streamable HTTP, SSE, or stdio), and serves the system endpoints
// (/health and the OAuth callback) alongside the MCP endpoint.
package server
