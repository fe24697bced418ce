package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks the configuration for problems that would prevent the
// server from operating. OAuth client credentials are only required when
// an HTTP transport is selected; stdio deployments can rely on ambient
// Google credentials.
func (c *Config) Validate() error {
	var errs ValidationErrors

	switch c.Server.Transport {
	case TransportStreamableHTTP, TransportSSE, TransportStdio:
	default:
		errs.Add("server.transport", fmt.Sprintf("unknown transport %q", c.Server.Transport), c.Server.Transport)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs.Add("server.port", fmt.Sprintf("port %d out of range", c.Server.Port), c.Server.Port)
	}

	if c.Server.BaseURI == "" {
		errs.Add("server.baseUri", "base URI must not be empty")
	} else if _, err := url.Parse(c.Server.BaseURI); err != nil {
		errs.Add("server.baseUri", fmt.Sprintf("invalid base URI: %v", err), c.Server.BaseURI)
	}

	if c.Server.ExternalURL != "" {
		if u, err := url.Parse(c.Server.ExternalURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add("server.externalUrl", "external URL must be absolute", c.Server.ExternalURL)
		}
	}

	if c.Server.Transport != TransportStdio {
		if c.OAuth.ClientID == "" {
			errs.Add("oauth.clientId", "OAuth client ID is required for HTTP transports (set GOOGLE_OAUTH_CLIENT_ID)")
		}
		if c.OAuth.ClientSecret == "" {
			errs.Add("oauth.clientSecret", "OAuth client secret is required for HTTP transports (set GOOGLE_OAUTH_CLIENT_SECRET)")
		}
	}

	for i, origin := range c.OAuth.AllowedOrigins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs.Add(fmt.Sprintf("oauth.allowedOrigins[%d]", i), "origin must be an absolute URL or *", origin)
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
