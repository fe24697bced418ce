package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestResolver(t *testing.T, oauthCfg *oauth2.Config) (*Resolver, *SessionStore, *CredentialStore) {
	t.Helper()
	sessions := newTestStore(t)
	persisted := newTestCredentialStore(t)
	return NewResolver(sessions, persisted, oauthCfg), sessions, persisted
}

// tokenEndpoint returns a test server that answers refresh requests with a
// fixed access token, and a counter of how many refreshes it served.
func tokenEndpoint(t *testing.T, accessToken string, fail bool) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": %q, "token_type": "Bearer", "expires_in": 3600}`, accessToken)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestResolveSessionFastPath(t *testing.T) {
	resolver, sessions, _ := newTestResolver(t, nil)

	sessions.StoreSession(testRecord("mcp-session", "user@example.com", time.Now().Add(time.Hour)))

	record, err := resolver.Resolve(context.Background(), "user@example.com", "mcp-session", RequiredScopes())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.SessionID != "mcp-session" {
		t.Errorf("Expected session-store hit, got record %s", record.SessionID)
	}
}

func TestResolveDerivedSessionKey(t *testing.T) {
	resolver, sessions, _ := newTestResolver(t, nil)

	sessions.StoreSession(testRecord(SessionIDForEmail("user@example.com"), "user@example.com", time.Now().Add(time.Hour)))

	// No transport session supplied; the identity-derived key must hit
	record, err := resolver.Resolve(context.Background(), "user@example.com", "", RequiredScopes())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.Email != "user@example.com" {
		t.Errorf("Unexpected record: %+v", record)
	}
}

func TestResolveScopeDowngradeRejected(t *testing.T) {
	resolver, sessions, _ := newTestResolver(t, nil)

	record := testRecord("s1", "user@example.com", time.Now().Add(time.Hour))
	record.Scopes = []string{ScopeUserinfoEmail} // missing analytics scope
	sessions.StoreSession(record)

	_, err := resolver.Resolve(context.Background(), "user@example.com", "s1", RequiredScopes())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials for scope mismatch, got %v", err)
	}
}

func TestResolvePersistedPromotesToSession(t *testing.T) {
	resolver, sessions, persisted := newTestResolver(t, nil)

	if err := persisted.Store(testCredential("user@example.com", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	record, err := resolver.Resolve(context.Background(), "user@example.com", "", RequiredScopes())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.AccessToken != "access-token" {
		t.Errorf("Expected persisted token, got %s", record.AccessToken)
	}

	// The record must now be in the session store for the fast path
	if sessions.GetCredentialsWithValidation("user@example.com", SessionIDForEmail("user@example.com")) == nil {
		t.Error("Expected resolved credential to be promoted into the session store")
	}
}

func TestResolveRefreshesExpiredCredential(t *testing.T) {
	srv, calls := tokenEndpoint(t, "refreshed-token", false)

	resolver, sessions, persisted := newTestResolver(t, &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint:     oauth2.Endpoint{TokenURL: srv.URL},
	})

	cred := testCredential("user@example.com", time.Now().Add(-time.Hour))
	if err := persisted.Store(cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	record, err := resolver.Resolve(context.Background(), "user@example.com", "", RequiredScopes())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.AccessToken != "refreshed-token" {
		t.Errorf("Expected refreshed token, got %s", record.AccessToken)
	}
	if *calls != 1 {
		t.Errorf("Expected one refresh call, got %d", *calls)
	}

	// Round-trip: both stores must reflect the refreshed values
	stored := persisted.Get("user@example.com")
	if stored == nil || stored.AccessToken != "refreshed-token" {
		t.Error("Expected refreshed token in the persisted store")
	}
	session := sessions.GetCredentialsWithValidation("user@example.com", SessionIDForEmail("user@example.com"))
	if session == nil || session.AccessToken != "refreshed-token" {
		t.Error("Expected refreshed token in the session store")
	}
}

func TestResolveRefreshFailureIsMiss(t *testing.T) {
	srv, _ := tokenEndpoint(t, "", true)

	resolver, _, persisted := newTestResolver(t, &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
	})

	if err := persisted.Store(testCredential("user@example.com", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	_, err := resolver.Resolve(context.Background(), "user@example.com", "", RequiredScopes())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials after refresh failure, got %v", err)
	}
}

func TestResolveExpiredWithoutRefreshTokenIsMiss(t *testing.T) {
	resolver, _, persisted := newTestResolver(t, nil)

	cred := testCredential("user@example.com", time.Now().Add(-time.Hour))
	cred.RefreshToken = ""
	if err := persisted.Store(cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	_, err := resolver.Resolve(context.Background(), "user@example.com", "", RequiredScopes())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}
}

func TestResolveNothingFound(t *testing.T) {
	resolver, _, _ := newTestResolver(t, nil)

	_, err := resolver.Resolve(context.Background(), "stranger@example.com", "no-session", RequiredScopes())
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Expected ErrNoCredentials, got %v", err)
	}
}

func TestResolveCredentialOwnEndpointWins(t *testing.T) {
	credSrv, credCalls := tokenEndpoint(t, "from-cred-endpoint", false)
	cfgSrv, cfgCalls := tokenEndpoint(t, "from-config-endpoint", false)

	resolver, _, persisted := newTestResolver(t, &oauth2.Config{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{TokenURL: cfgSrv.URL},
	})

	cred := testCredential("user@example.com", time.Now().Add(-time.Hour))
	cred.TokenEndpoint = credSrv.URL
	cred.ClientID = "cred-client"
	if err := persisted.Store(cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	record, err := resolver.Resolve(context.Background(), "user@example.com", "", RequiredScopes())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.AccessToken != "from-cred-endpoint" {
		t.Errorf("Expected refresh against the credential's own endpoint, got %s", record.AccessToken)
	}
	if *credCalls != 1 || *cfgCalls != 0 {
		t.Errorf("Unexpected endpoint usage: cred=%d config=%d", *credCalls, *cfgCalls)
	}
}
