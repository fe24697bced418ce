package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// SessionRecord represents one authenticated user's bound credentials for a
// logical session.
type SessionRecord struct {
	// SessionID is the store key. Unique within the session store.
	SessionID string `json:"session_id"`

	// Email is the Google account the credentials belong to.
	Email string `json:"email"`

	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// RefreshToken is used to obtain new access tokens (optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenEndpoint is the endpoint used for refresh.
	TokenEndpoint string `json:"token_endpoint,omitempty"`

	// ClientID and ClientSecret identify the OAuth client when refresh
	// is supported.
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`

	// Scopes is the granted scope set.
	Scopes []string `json:"scopes,omitempty"`

	// Expiry is the absolute expiration timestamp of the access token.
	Expiry time.Time `json:"expiry,omitempty"`

	// Issuer is the token issuer (Identity Provider URL).
	Issuer string `json:"issuer,omitempty"`

	// CreatedAt is when the record was stored.
	CreatedAt time.Time `json:"created_at"`

	// TransportSessionID is the MCP transport session this record was
	// bound to, if any. Distinct from SessionID.
	TransportSessionID string `json:"transport_session_id,omitempty"`
}

// IsExpired checks if the record's access token has expired.
// Returns true if the token is expired or will expire within the given margin.
func (r *SessionRecord) IsExpired(margin time.Duration) bool {
	if r.Expiry.IsZero() {
		return false // Records without expiration don't expire
	}
	return time.Now().Add(margin).After(r.Expiry)
}

// HasScopes reports whether the record covers every scope in required.
func (r *SessionRecord) HasScopes(required []string) bool {
	if len(required) == 0 {
		return true
	}
	granted := make(map[string]struct{}, len(r.Scopes))
	for _, s := range r.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// Token converts the record to an oauth2.Token for use with token sources.
func (r *SessionRecord) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       r.Expiry,
	}
}

// PendingOAuthState represents one in-flight, not-yet-completed
// authorization-code exchange. A state may be consumed at most once.
type PendingOAuthState struct {
	// State is the opaque CSRF state token embedded in the auth URL.
	State string `json:"state"`

	// SessionID is the session this flow was started for, if any.
	SessionID string `json:"session_id,omitempty"`

	// CreatedAt is when the state was generated.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the absolute expiry of the state.
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionIDForEmail derives the canonical session store key for a Google
// account. Records stored via the OAuth callback use this key so that
// later lookups by identity alone can find them.
func SessionIDForEmail(email string) string {
	return "google_" + email
}
