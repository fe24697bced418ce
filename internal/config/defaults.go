package config

const (
	// DefaultBaseURI is the default base URI the server binds to.
	DefaultBaseURI = "http://localhost"

	// DefaultPort is the default port for the MCP endpoint.
	DefaultPort = 3334

	// DefaultOAuthCallbackPath is the default path for OAuth callbacks.
	DefaultOAuthCallbackPath = "/oauth2callback"
)

// GetDefaultConfig returns the default configuration for analytics-mcp.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURI:   DefaultBaseURI,
			Port:      DefaultPort,
			Transport: TransportStreamableHTTP,
		},
		OAuth: OAuthConfig{},
		Auth: AuthConfig{
			VerifyJWT: false, // Opaque token mode unless explicitly enabled
		},
	}
}
