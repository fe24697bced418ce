package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, content Config) string {
	t.Helper()
	tempFilePath := filepath.Join(dir, configFileName)
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	err = os.WriteFile(tempFilePath, data, 0644)
	require.NoError(t, err)
	return tempFilePath
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANALYTICS_MCP_BASE_URI", "ANALYTICS_MCP_PORT", "ANALYTICS_MCP_TRANSPORT",
		"ANALYTICS_EXTERNAL_URL", "ANALYTICS_MCP_STATELESS_MODE",
		"GOOGLE_OAUTH_CLIENT_ID", "GOOGLE_OAUTH_CLIENT_SECRET", "GOOGLE_OAUTH_REDIRECT_URI",
		"OAUTH_CUSTOM_REDIRECT_URIS", "OAUTH_ALLOWED_ORIGINS", "MCP_ENABLE_OAUTH21",
		"ANALYTICS_MCP_CREDENTIALS_DIR", "ANALYTICS_DEFAULT_PROPERTY_ID", "ANALYTICS_READ_ONLY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	loadedConfig, err := LoadConfig(tempDir)
	assert.NoError(t, err)

	assert.Equal(t, DefaultBaseURI, loadedConfig.Server.BaseURI)
	assert.Equal(t, DefaultPort, loadedConfig.Server.Port)
	assert.Equal(t, TransportStreamableHTTP, loadedConfig.Server.Transport)
	assert.False(t, loadedConfig.Auth.VerifyJWT)
}

func TestLoadConfig_FileOverride(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	fileConfig := GetDefaultConfig()
	fileConfig.Server.Port = 9000
	fileConfig.OAuth.ClientID = "file-client-id"
	createTempConfigFile(t, tempDir, fileConfig)

	loadedConfig, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, 9000, loadedConfig.Server.Port)
	assert.Equal(t, "file-client-id", loadedConfig.OAuth.ClientID)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	fileConfig := GetDefaultConfig()
	fileConfig.Server.Port = 9000
	createTempConfigFile(t, tempDir, fileConfig)

	t.Setenv("ANALYTICS_MCP_PORT", "4000")
	t.Setenv("GOOGLE_OAUTH_CLIENT_ID", "env-client-id")
	t.Setenv("MCP_ENABLE_OAUTH21", "true")
	t.Setenv("OAUTH_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("ANALYTICS_DEFAULT_PROPERTY_ID", "properties/42")
	t.Setenv("ANALYTICS_READ_ONLY", "yes")

	loadedConfig, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, 4000, loadedConfig.Server.Port)
	assert.Equal(t, "env-client-id", loadedConfig.OAuth.ClientID)
	assert.True(t, loadedConfig.Auth.VerifyJWT)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, loadedConfig.OAuth.AllowedOrigins)
	assert.Equal(t, "properties/42", loadedConfig.Analytics.DefaultPropertyID)
	assert.True(t, loadedConfig.Analytics.ReadOnly)
}

func TestLoadConfig_InvalidPortEnvIgnored(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	t.Setenv("ANALYTICS_MCP_PORT", "not-a-port")

	loadedConfig, err := LoadConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, loadedConfig.Server.Port)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	err := os.WriteFile(filepath.Join(tempDir, configFileName), []byte("server: [not a map"), 0644)
	require.NoError(t, err)

	_, err = LoadConfig(tempDir)
	assert.Error(t, err)
}

func TestCallbackURL(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, "http://localhost:3334/oauth2callback", cfg.CallbackURL())

	cfg.Server.ExternalURL = "https://mcp.example.com/"
	assert.Equal(t, "https://mcp.example.com/oauth2callback", cfg.CallbackURL())

	cfg.OAuth.RedirectURI = "https://other.example.com/cb"
	assert.Equal(t, "https://other.example.com/cb", cfg.CallbackURL())
}

func TestAllowedRedirectURIs(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.OAuth.CustomRedirectURIs = []string{
		"https://extra.example.com/cb",
		"http://localhost:3334/oauth2callback", // duplicate of the primary
	}

	uris := cfg.AllowedRedirectURIs()
	assert.Equal(t, []string{
		"http://localhost:3334/oauth2callback",
		"https://extra.example.com/cb",
	}, uris)
}
