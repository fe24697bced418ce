package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"analytics-mcp/pkg/logging"
)

// CredentialStore provides persistent per-user storage for OAuth
// credentials, keyed by the user's email address. Unlike the session
// store it survives process restarts; records are returned even when
// expired so the resolver can attempt a refresh.
//
// SECURITY: This store handles sensitive OAuth credentials:
//   - Files are created with 0600 permissions (owner read/write only)
//   - The storage directory is created with 0700 permissions (owner only)
//   - Token values are never logged (only masked suffixes)
type CredentialStore struct {
	mu         sync.RWMutex
	storageDir string
	cache      map[string]*StoredCredential
}

// StoredCredential is the on-disk representation of one user's credentials.
type StoredCredential struct {
	// Email is the Google account the credentials belong to.
	Email string `json:"email"`

	// AccessToken is the OAuth access token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the OAuth refresh token (if available).
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenEndpoint is the endpoint used for refresh.
	TokenEndpoint string `json:"token_endpoint,omitempty"`

	// ClientID and ClientSecret identify the OAuth client for refresh.
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`

	// Scopes is the granted scope set.
	Scopes []string `json:"scopes,omitempty"`

	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`

	// Issuer is the OAuth issuer that issued the credentials.
	Issuer string `json:"issuer,omitempty"`

	// CreatedAt is when the credentials were stored.
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired checks if the stored access token has expired, with the given
// margin for clock skew.
func (c *StoredCredential) IsExpired(margin time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(c.Expiry)
}

// HasScopes reports whether the credential covers every scope in required.
func (c *StoredCredential) HasScopes(required []string) bool {
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// NewCredentialStore creates a credential store rooted at storageDir.
func NewCredentialStore(storageDir string) (*CredentialStore, error) {
	if storageDir == "" {
		return nil, fmt.Errorf("credential storage directory must not be empty")
	}
	if err := os.MkdirAll(storageDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential storage directory: %w", err)
	}

	return &CredentialStore{
		storageDir: storageDir,
		cache:      make(map[string]*StoredCredential),
	}, nil
}

// Store persists credentials for cred.Email, overwriting any previous
// record for the same account.
func (s *CredentialStore) Store(cred *StoredCredential) error {
	if cred.Email == "" {
		return fmt.Errorf("credential has no email")
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = time.Now()
	}

	key := s.credentialKey(cred.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cred
	if err := s.writeCredentialFile(key, cred); err != nil {
		return fmt.Errorf("failed to persist credentials for %s: %w", cred.Email, err)
	}

	logging.Info("Auth", "Persisted credentials for %s (token %s, expires %v, has_refresh=%v)",
		cred.Email, logging.MaskToken(cred.AccessToken), cred.Expiry, cred.RefreshToken != "")
	return nil
}

// Get retrieves the stored credentials for an email address. Returns nil
// if no record exists. Expired records are returned as-is; the caller
// decides whether a refresh is possible.
func (s *CredentialStore) Get(email string) *StoredCredential {
	key := s.credentialKey(email)

	// Fast path with read lock - check memory cache
	s.mu.RLock()
	if cred, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return cred
	}
	s.mu.RUnlock()

	// Slow path with write lock for cache population
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check in case another goroutine populated it
	if cred, ok := s.cache[key]; ok {
		return cred
	}

	cred, err := s.readCredentialFile(key)
	if err != nil {
		return nil
	}
	s.cache[key] = cred
	return cred
}

// Delete removes the stored credentials for an email address.
func (s *CredentialStore) Delete(email string) error {
	key := s.credentialKey(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)

	err := os.Remove(s.credentialPath(key))
	if os.IsNotExist(err) {
		return nil // Already deleted
	}
	if err != nil {
		return err
	}

	logging.Info("Auth", "Deleted persisted credentials for %s", email)
	return nil
}

// Clear removes all stored credentials, in memory and on disk.
func (s *CredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string]*StoredCredential)

	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credential directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.storageDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove credential file %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// credentialKey generates a filesystem-safe key for an email address.
func (s *CredentialStore) credentialKey(email string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(email)))
	return hex.EncodeToString(hash[:16])
}

func (s *CredentialStore) credentialPath(key string) string {
	return filepath.Join(s.storageDir, key+".json")
}

// writeCredentialFile persists a credential to a JSON file.
// REQUIRES: s.mu must be held by the caller.
func (s *CredentialStore) writeCredentialFile(key string, cred *StoredCredential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(s.credentialPath(key), data, 0600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// readCredentialFile reads a credential from a JSON file.
func (s *CredentialStore) readCredentialFile(key string) (*StoredCredential, error) {
	// #nosec G304 -- path is constructed from a hashed key, not user input
	data, err := os.ReadFile(s.credentialPath(key))
	if err != nil {
		return nil, err
	}

	var cred StoredCredential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &cred, nil
}
