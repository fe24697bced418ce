// Package config handles configuration for analytics-mcp.
//
// Configuration is layered: compiled-in defaults, then an optional
// config.yaml in the user configuration directory
// (~/.config/analytics-mcp), then environment variables. Environment
// always wins, so containerized deployments can override any file
// setting without touching the filesystem.
//
// # Environment Variables
//
//   - ANALYTICS_MCP_BASE_URI: base URI to bind (default http://localhost)
//   - ANALYTICS_MCP_PORT: port for the MCP endpoint (default 3334)
//   - ANALYTICS_MCP_TRANSPORT: streamable-http, sse, or stdio
//   - ANALYTICS_EXTERNAL_URL: public URL when running behind a proxy
//   - ANALYTICS_MCP_STATELESS_MODE: disable server-side MCP session tracking
//   - GOOGLE_OAUTH_CLIENT_ID / GOOGLE_OAUTH_CLIENT_SECRET: OAuth client
//   - GOOGLE_OAUTH_REDIRECT_URI: explicit callback URL override
//   - OAUTH_CUSTOM_REDIRECT_URIS: comma-separated extra redirect URIs
//   - OAUTH_ALLOWED_ORIGINS: comma-separated CORS origins
//   - MCP_ENABLE_OAUTH21: verify bearer tokens as JWTs instead of
//     accepting them opaquely
//   - ANALYTICS_MCP_CREDENTIALS_DIR: directory for persisted credentials
//
// Call Validate after loading to surface misconfiguration before the
// server starts serving requests.
package config
