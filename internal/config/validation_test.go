package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	cfg := GetDefaultConfig()
	cfg.OAuth.ClientID = "client-id"
	cfg.OAuth.ClientSecret = "client-secret"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_StdioNeedsNoOAuthClient(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Transport = TransportStdio
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingOAuthClient(t *testing.T) {
	cfg := GetDefaultConfig()
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "oauth.clientId")
	assert.Contains(t, err.Error(), "oauth.clientSecret")
}

func TestValidate_BadTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Transport = "carrier-pigeon"
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.transport")
}

func TestValidate_PortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidate_AllowedOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.OAuth.AllowedOrigins = []string{"*"}
	assert.NoError(t, cfg.Validate())

	cfg.OAuth.AllowedOrigins = []string{"not a url"}
	assert.Error(t, cfg.Validate())
}

func TestValidationErrors_Messages(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "no validation errors", errs.Error())
	assert.False(t, errs.HasErrors())

	errs.Add("field1", "is bad")
	assert.Equal(t, "field 'field1': is bad", errs.Error())

	errs.Add("field2", "also bad")
	assert.Contains(t, errs.Error(), "validation failed:")
	assert.True(t, errs.HasErrors())
}
