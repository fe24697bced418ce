package auth

import (
	"context"
	"fmt"
	"time"

	"analytics-mcp/pkg/logging"

	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Flow drives the OAuth authorization-code flow: generating authorization
// URLs with CSRF state, and completing the exchange on callback. Completed
// flows store the obtained credentials in both the session store and the
// persisted per-user store.
type Flow struct {
	oauth     *oauth2.Config
	sessions  *SessionStore
	persisted *CredentialStore
	stateTTL  time.Duration

	// fetchEmail resolves the authenticated account's email from a token
	// source. Overridable in tests.
	fetchEmail func(ctx context.Context, ts oauth2.TokenSource) (string, error)
}

// NewFlow creates an OAuth flow over the given stores. persisted may be
// nil, in which case completed flows only populate the session store.
func NewFlow(oauthCfg *oauth2.Config, sessions *SessionStore, persisted *CredentialStore) *Flow {
	return &Flow{
		oauth:      oauthCfg,
		sessions:   sessions,
		persisted:  persisted,
		stateTTL:   DefaultStateTTL,
		fetchEmail: googleUserEmail,
	}
}

// StartAuthFlow generates an authorization URL bound to sessionID via a
// fresh CSRF state. The state stays consumable for the flow's TTL.
func (f *Flow) StartAuthFlow(sessionID string) (string, error) {
	state, err := f.sessions.GenerateState(sessionID, f.stateTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}

	authURL := f.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	logging.Info("Auth", "Started OAuth flow for session %s", logging.TruncateSessionID(sessionID))
	return authURL, nil
}

// HandleAuthCallback completes an authorization-code exchange: validates
// and consumes the CSRF state, exchanges the code for tokens, resolves the
// authenticated account, and stores the credentials in both stores.
// Returns the authenticated email on success.
//
// An empty sessionID means the caller (the browser redirect) cannot know
// the session; the binding recorded when the state was generated is used
// instead.
func (f *Flow) HandleAuthCallback(ctx context.Context, state, code, sessionID string) (string, error) {
	if sessionID == "" {
		pending, err := f.sessions.ConsumeOAuthState(state)
		if err != nil {
			return "", err
		}
		sessionID = pending.SessionID
	} else if err := f.sessions.ValidateAndConsumeOAuthState(state, sessionID); err != nil {
		return "", err
	}

	token, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	email := f.emailFromToken(ctx, token)
	if email == "" {
		return "", fmt.Errorf("could not determine authenticated account email")
	}

	now := time.Now()
	record := &SessionRecord{
		SessionID:     SessionIDForEmail(email),
		Email:         email,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		TokenEndpoint: f.oauth.Endpoint.TokenURL,
		ClientID:      f.oauth.ClientID,
		ClientSecret:  f.oauth.ClientSecret,
		Scopes:        f.oauth.Scopes,
		Expiry:        token.Expiry,
		Issuer:        GoogleIssuer,
		CreatedAt:     now,
	}
	if sessionID != "" {
		record.TransportSessionID = sessionID
		// Bind the credentials to the transport session as well so the
		// fast path hits without an identity lookup
		transportRecord := *record
		transportRecord.SessionID = sessionID
		f.sessions.StoreSession(&transportRecord)
	}
	f.sessions.StoreSession(record)

	if f.persisted != nil {
		err := f.persisted.Store(&StoredCredential{
			Email:         email,
			AccessToken:   token.AccessToken,
			RefreshToken:  token.RefreshToken,
			TokenEndpoint: f.oauth.Endpoint.TokenURL,
			ClientID:      f.oauth.ClientID,
			ClientSecret:  f.oauth.ClientSecret,
			Scopes:        f.oauth.Scopes,
			Expiry:        token.Expiry,
			Issuer:        GoogleIssuer,
			CreatedAt:     now,
		})
		if err != nil {
			logging.Warn("Auth", "Failed to persist credentials for %s: %v", email, err)
		}
	}

	logging.Info("Auth", "Completed OAuth flow for %s (session %s)",
		email, logging.TruncateSessionID(sessionID))
	return email, nil
}

// emailFromToken resolves the account email, preferring the ID token's
// claims over a userinfo round trip.
func (f *Flow) emailFromToken(ctx context.Context, token *oauth2.Token) string {
	if idToken, ok := token.Extra("id_token").(string); ok && idToken != "" {
		if email, _, ok := DecodeUnverifiedClaims(idToken); ok && email != "" {
			return email
		}
	}

	email, err := f.fetchEmail(ctx, f.oauth.TokenSource(ctx, token))
	if err != nil {
		logging.Warn("Auth", "Failed to fetch userinfo: %v", err)
		return ""
	}
	return email
}

// googleUserEmail asks Google's userinfo endpoint for the account email.
func googleUserEmail(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	svc, err := goauth2.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return "", fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("userinfo request failed: %w", err)
	}
	return info.Email, nil
}
