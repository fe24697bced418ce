package config

// Config is the top-level configuration structure for analytics-mcp.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OAuth     OAuthConfig     `yaml:"oauth"`
	Auth      AuthConfig      `yaml:"auth"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

const (
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
)

// ServerConfig defines the HTTP and MCP transport configuration.
type ServerConfig struct {
	BaseURI     string `yaml:"baseUri,omitempty"`     // Base URI to bind to (default: http://localhost)
	Port        int    `yaml:"port,omitempty"`        // Port for the MCP endpoint (default: 3334)
	Transport   string `yaml:"transport,omitempty"`   // Transport to use (default: streamable-http)
	ExternalURL string `yaml:"externalUrl,omitempty"` // Public URL when behind a proxy; used for OAuth redirects
	Stateless   bool   `yaml:"stateless,omitempty"`   // Run the MCP server without server-side session tracking
}

// OAuthConfig defines the Google OAuth client configuration.
type OAuthConfig struct {
	ClientID           string   `yaml:"clientId,omitempty"`
	ClientSecret       string   `yaml:"clientSecret,omitempty"`
	RedirectURI        string   `yaml:"redirectUri,omitempty"`        // Full callback URL (default: derived from server config + /oauth2callback)
	CustomRedirectURIs []string `yaml:"customRedirectUris,omitempty"` // Additional redirect URIs accepted at the callback
	AllowedOrigins     []string `yaml:"allowedOrigins,omitempty"`     // Origins allowed by CORS on the HTTP surface
}

// AuthConfig defines how bearer tokens on incoming requests are handled.
type AuthConfig struct {
	// VerifyJWT enables OAuth 2.1 mode: bearer tokens are verified as JWTs
	// against Google's JWKS instead of being accepted opaquely.
	VerifyJWT bool `yaml:"verifyJwt,omitempty"`

	// CredentialsDir is the directory for persisted user credentials
	// (default: ~/.config/analytics-mcp/credentials).
	CredentialsDir string `yaml:"credentialsDir,omitempty"`
}

// AnalyticsConfig defines defaults applied to Analytics tool calls.
type AnalyticsConfig struct {
	// DefaultPropertyID scopes tool calls that carry neither a property
	// argument nor an X-Analytics-Property-Id header.
	DefaultPropertyID string `yaml:"defaultPropertyId,omitempty"`

	// ReadOnly is reserved for future mutating tools; all current tools
	// are reads.
	ReadOnly bool `yaml:"readOnly,omitempty"`
}
