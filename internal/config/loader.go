package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"analytics-mcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/analytics-mcp"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory and applies
// environment variable overrides on top. The directory should contain
// config.yaml; a missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig() // Start with default config

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
			return Config{}, err
		}
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			// config malformed
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnvOverrides(&config)
	return config, nil
}

// applyEnvOverrides layers environment variables over the loaded config.
// Environment always wins so that container deployments can override a
// baked-in config file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ANALYTICS_MCP_BASE_URI"); v != "" {
		config.Server.BaseURI = v
	}
	if v := os.Getenv("ANALYTICS_MCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		} else {
			logging.Warn("ConfigLoader", "Ignoring invalid ANALYTICS_MCP_PORT value %q", v)
		}
	}
	if v := os.Getenv("ANALYTICS_MCP_TRANSPORT"); v != "" {
		config.Server.Transport = v
	}
	if v := os.Getenv("ANALYTICS_EXTERNAL_URL"); v != "" {
		config.Server.ExternalURL = v
	}
	if v := os.Getenv("ANALYTICS_MCP_STATELESS_MODE"); v != "" {
		config.Server.Stateless = isTruthy(v)
	}
	if v := os.Getenv("GOOGLE_OAUTH_CLIENT_ID"); v != "" {
		config.OAuth.ClientID = v
	}
	if v := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"); v != "" {
		config.OAuth.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_OAUTH_REDIRECT_URI"); v != "" {
		config.OAuth.RedirectURI = v
	}
	if v := os.Getenv("OAUTH_CUSTOM_REDIRECT_URIS"); v != "" {
		config.OAuth.CustomRedirectURIs = splitAndTrim(v)
	}
	if v := os.Getenv("OAUTH_ALLOWED_ORIGINS"); v != "" {
		config.OAuth.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("MCP_ENABLE_OAUTH21"); v != "" {
		config.Auth.VerifyJWT = isTruthy(v)
	}
	if v := os.Getenv("ANALYTICS_MCP_CREDENTIALS_DIR"); v != "" {
		config.Auth.CredentialsDir = v
	}
	if v := os.Getenv("ANALYTICS_DEFAULT_PROPERTY_ID"); v != "" {
		config.Analytics.DefaultPropertyID = v
	}
	if v := os.Getenv("ANALYTICS_READ_ONLY"); v != "" {
		config.Analytics.ReadOnly = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitAndTrim(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ServerURL returns the locally bound server URL, e.g. http://localhost:3334.
func (c *Config) ServerURL() string {
	return fmt.Sprintf("%s:%d", c.Server.BaseURI, c.Server.Port)
}

// PublicURL returns the externally reachable URL for building OAuth
// redirects. Falls back to the local server URL when no external URL is
// configured.
func (c *Config) PublicURL() string {
	if c.Server.ExternalURL != "" {
		return strings.TrimRight(c.Server.ExternalURL, "/")
	}
	return c.ServerURL()
}

// CallbackURL returns the OAuth redirect URI. An explicitly configured
// redirect URI takes precedence over the derived default.
func (c *Config) CallbackURL() string {
	if c.OAuth.RedirectURI != "" {
		return c.OAuth.RedirectURI
	}
	return c.PublicURL() + DefaultOAuthCallbackPath
}

// AllowedRedirectURIs returns the full set of redirect URIs the callback
// handler accepts: the primary callback URL plus any custom additions.
func (c *Config) AllowedRedirectURIs() []string {
	uris := []string{c.CallbackURL()}
	for _, custom := range c.OAuth.CustomRedirectURIs {
		if custom != "" && custom != uris[0] {
			uris = append(uris, custom)
		}
	}
	return uris
}

// CredentialsDir returns the directory for persisted user credentials.
func (c *Config) CredentialsDir() string {
	if c.Auth.CredentialsDir != "" {
		return c.Auth.CredentialsDir
	}
	return filepath.Join(GetDefaultConfigPathOrPanic(), "credentials")
}
