package auth

import (
	"context"
	"time"

	"analytics-mcp/pkg/logging"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Resolver produces a currently valid access credential for a user
// identity, consulting credential sources in priority order:
//
//  1. Session store lookup - fastest, session-bound, no I/O.
//  2. Persisted per-user store - refreshed against the token endpoint if
//     expired and a refresh token is present; refreshed credentials are
//     written back to both stores so subsequent lookups hit the fast path.
//  3. Nothing found - the caller must initiate a new authorization flow.
//
// The resolver never silently downgrades scope: credentials lacking a
// required scope are treated as not found.
type Resolver struct {
	sessions  *SessionStore
	persisted *CredentialStore
	oauth     *oauth2.Config
}

// NewResolver creates a resolver over the given stores. oauthCfg supplies
// the client identity and token endpoint for refreshes when a persisted
// credential does not carry its own; it may be nil when refresh is not
// supported.
func NewResolver(sessions *SessionStore, persisted *CredentialStore, oauthCfg *oauth2.Config) *Resolver {
	return &Resolver{
		sessions:  sessions,
		persisted: persisted,
		oauth:     oauthCfg,
	}
}

// Resolve returns a valid session record for the identity, or
// ErrNoCredentials when no source can produce one.
func (r *Resolver) Resolve(ctx context.Context, email, sessionID string, requiredScopes []string) (*SessionRecord, error) {
	// Fast path: session store, keyed by the transport session and by
	// the identity-derived key
	for _, key := range r.candidateSessionIDs(email, sessionID) {
		if record := r.sessions.GetCredentialsWithValidation(email, key); record != nil {
			if record.HasScopes(requiredScopes) {
				return record, nil
			}
			logging.Debug("Auth", "Session %s lacks required scopes, skipping",
				logging.TruncateSessionID(key))
		}
	}

	// Slow path: persisted per-user store, with refresh
	if email != "" && r.persisted != nil {
		if record, err := r.resolvePersisted(ctx, email, requiredScopes); err == nil && record != nil {
			return record, nil
		}
	}

	return nil, ErrNoCredentials
}

func (r *Resolver) candidateSessionIDs(email, sessionID string) []string {
	var keys []string
	if sessionID != "" {
		keys = append(keys, sessionID)
	}
	if email != "" {
		derived := SessionIDForEmail(email)
		if derived != sessionID {
			keys = append(keys, derived)
		}
	}
	return keys
}

// resolvePersisted loads persisted credentials for email, refreshing them
// if necessary, and promotes the result into the session store.
func (r *Resolver) resolvePersisted(ctx context.Context, email string, requiredScopes []string) (*SessionRecord, error) {
	cred := r.persisted.Get(email)
	if cred == nil {
		return nil, ErrNoCredentials
	}
	if !cred.HasScopes(requiredScopes) {
		logging.Debug("Auth", "Persisted credentials for %s lack required scopes", email)
		return nil, ErrNoCredentials
	}

	if cred.IsExpired(tokenExpiryMargin) {
		if cred.RefreshToken == "" {
			logging.Debug("Auth", "Persisted credentials for %s expired with no refresh token", email)
			return nil, ErrNoCredentials
		}

		token, err := r.refresh(ctx, cred)
		if err != nil {
			// Fail open to "need new auth", not fatal
			logging.Warn("Auth", "Token refresh failed for %s: %v", email, err)
			return nil, ErrNoCredentials
		}

		cred.AccessToken = token.AccessToken
		cred.Expiry = token.Expiry
		if token.RefreshToken != "" {
			cred.RefreshToken = token.RefreshToken
		}
		if err := r.persisted.Store(cred); err != nil {
			logging.Warn("Auth", "Failed to persist refreshed credentials for %s: %v", email, err)
		}
		logging.Info("Auth", "Refreshed credentials for %s (token %s, expires %v)",
			email, logging.MaskToken(cred.AccessToken), cred.Expiry)
	}

	record := recordFromCredential(cred)
	r.sessions.StoreSession(record)
	return record, nil
}

// refresh exchanges the refresh token for a new access token. Credentials
// carrying their own client identity and token endpoint use those;
// otherwise the resolver's OAuth configuration fills the gaps.
func (r *Resolver) refresh(ctx context.Context, cred *StoredCredential) (*oauth2.Token, error) {
	cfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       cred.Scopes,
	}
	if cred.TokenEndpoint != "" {
		cfg.Endpoint = oauth2.Endpoint{TokenURL: cred.TokenEndpoint}
	}
	if r.oauth != nil {
		if cfg.ClientID == "" {
			cfg.ClientID = r.oauth.ClientID
			cfg.ClientSecret = r.oauth.ClientSecret
		}
		if cred.TokenEndpoint == "" && r.oauth.Endpoint.TokenURL != "" {
			cfg.Endpoint = r.oauth.Endpoint
		}
	}

	source := cfg.TokenSource(ctx, &oauth2.Token{
		RefreshToken: cred.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute), // Force a refresh
	})
	return source.Token()
}

// recordFromCredential converts a persisted credential into a session
// record keyed by the identity-derived session ID.
func recordFromCredential(cred *StoredCredential) *SessionRecord {
	return &SessionRecord{
		SessionID:     SessionIDForEmail(cred.Email),
		Email:         cred.Email,
		AccessToken:   cred.AccessToken,
		RefreshToken:  cred.RefreshToken,
		TokenEndpoint: cred.TokenEndpoint,
		ClientID:      cred.ClientID,
		ClientSecret:  cred.ClientSecret,
		Scopes:        cred.Scopes,
		Expiry:        cred.Expiry,
		Issuer:        cred.Issuer,
		CreatedAt:     time.Now(),
	}
}
