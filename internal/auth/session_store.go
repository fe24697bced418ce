package auth

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"analytics-mcp/pkg/logging"
)

// tokenExpiryMargin is the margin added when checking token expiration.
// This accounts for clock skew between systems and network latency.
const tokenExpiryMargin = 30 * time.Second

// DefaultStateTTL is how long a pending OAuth state stays consumable.
const DefaultStateTTL = 10 * time.Minute

// SessionStore provides thread-safe in-memory storage for session records
// and pending OAuth states. Sessions bind bearer credentials to session
// identifiers; states provide CSRF protection for in-flight OAuth flows.
//
// Expired entries are evicted lazily on lookup; a background sweep bounds
// memory growth for sessions that are created and never looked up again.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionRecord
	states   map[string]*PendingOAuthState

	// Cleanup configuration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewSessionStore creates a new in-memory session store.
// It starts a background goroutine for periodic cleanup of expired entries.
func NewSessionStore() *SessionStore {
	ss := &SessionStore{
		sessions:        make(map[string]*SessionRecord),
		states:          make(map[string]*PendingOAuthState),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	// Start background cleanup goroutine
	go ss.cleanupLoop()

	return ss
}

// StoreSession creates or overwrites the session record at record.SessionID.
// Idempotent under the same key.
func (ss *SessionStore) StoreSession(record *SessionRecord) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	ss.mu.Lock()
	ss.sessions[record.SessionID] = record
	ss.mu.Unlock()

	logging.Debug("Auth", "Stored session %s for %s (token %s, expires %v)",
		logging.TruncateSessionID(record.SessionID), record.Email,
		logging.MaskToken(record.AccessToken), record.Expiry)
}

// GetCredentialsWithValidation returns the session record at sessionID only
// if it exists, is not expired, and (when email is supplied) is bound to
// that identity. Expired records are evicted on lookup so a later access
// behaves as a plain miss.
func (ss *SessionStore) GetCredentialsWithValidation(email, sessionID string) *SessionRecord {
	ss.mu.RLock()
	record, exists := ss.sessions[sessionID]
	ss.mu.RUnlock()

	if !exists {
		return nil
	}

	if record.IsExpired(tokenExpiryMargin) {
		logging.Debug("Auth", "Session %s expired, evicting", logging.TruncateSessionID(sessionID))
		ss.DeleteSession(sessionID)
		return nil
	}

	if email != "" && record.Email != email {
		logging.Warn("Auth", "Session %s bound to a different identity than requested",
			logging.TruncateSessionID(sessionID))
		return nil
	}

	return record
}

// DeleteSession removes a session record from the store.
func (ss *SessionStore) DeleteSession(sessionID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, sessionID)
}

// SessionCount returns the number of session records in the store.
func (ss *SessionStore) SessionCount() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// GenerateState creates a new cryptographically random OAuth state token,
// stores it bound to sessionID with the given TTL, and returns it.
func (ss *SessionStore) GenerateState(sessionID string, ttl time.Duration) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(nonce)
	ss.StoreOAuthState(state, sessionID, ttl)
	return state, nil
}

// StoreOAuthState creates a pending OAuth state with an absolute expiry
// computed from the TTL. A non-positive TTL uses DefaultStateTTL.
func (ss *SessionStore) StoreOAuthState(state, sessionID string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	now := time.Now()

	ss.mu.Lock()
	ss.states[state] = &PendingOAuthState{
		State:     state,
		SessionID: sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	ss.mu.Unlock()

	logging.Debug("Auth", "Stored OAuth state for session=%s ttl=%v",
		logging.TruncateSessionID(sessionID), ttl)
}

// ValidateAndConsumeOAuthState atomically looks up and removes the pending
// OAuth state. Consumption is at-most-once: concurrent callers racing on
// the same state see exactly one success. A state bound to a different
// session than the caller supplies is rejected without being consumed.
func (ss *SessionStore) ValidateAndConsumeOAuthState(state, sessionID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	pending, exists := ss.states[state]
	if !exists {
		logging.Warn("Auth", "OAuth state not found or already consumed")
		return &StateError{Reason: "unknown or already used state"}
	}

	if time.Now().After(pending.ExpiresAt) {
		delete(ss.states, state)
		logging.Warn("Auth", "OAuth state expired (age %v)", time.Since(pending.CreatedAt))
		return &StateError{Reason: "state expired"}
	}

	if pending.SessionID != "" && pending.SessionID != sessionID {
		logging.Warn("Auth", "OAuth state bound to session %s but presented by %s",
			logging.TruncateSessionID(pending.SessionID), logging.TruncateSessionID(sessionID))
		return &StateError{Reason: "state bound to a different session"}
	}

	// State is valid. Delete it to prevent replay.
	delete(ss.states, state)
	return nil
}

// ConsumeOAuthState atomically consumes a pending state and returns it,
// for callers (the browser-facing OAuth callback) that cannot present the
// session identifier themselves. Consumption is still at-most-once.
func (ss *SessionStore) ConsumeOAuthState(state string) (*PendingOAuthState, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	pending, exists := ss.states[state]
	if !exists {
		logging.Warn("Auth", "OAuth state not found or already consumed")
		return nil, &StateError{Reason: "unknown or already used state"}
	}

	if time.Now().After(pending.ExpiresAt) {
		delete(ss.states, state)
		logging.Warn("Auth", "OAuth state expired (age %v)", time.Since(pending.CreatedAt))
		return nil, &StateError{Reason: "state expired"}
	}

	delete(ss.states, state)
	return pending, nil
}

// StateCount returns the number of pending OAuth states in the store.
func (ss *SessionStore) StateCount() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.states)
}

// Stop stops the background cleanup goroutine. Safe to call more than once.
func (ss *SessionStore) Stop() {
	ss.stopOnce.Do(func() {
		close(ss.stopCleanup)
	})
}

// cleanupLoop periodically removes expired entries from the store.
func (ss *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(ss.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ss.cleanup()
		case <-ss.stopCleanup:
			return
		}
	}
}

// cleanup removes all expired sessions and states from the store.
func (ss *SessionStore) cleanup() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	sessionCount := 0
	for id, record := range ss.sessions {
		if record.IsExpired(0) {
			delete(ss.sessions, id)
			sessionCount++
		}
	}

	stateCount := 0
	for state, pending := range ss.states {
		if now.After(pending.ExpiresAt) {
			delete(ss.states, state)
			stateCount++
		}
	}

	if sessionCount > 0 || stateCount > 0 {
		logging.Debug("Auth", "Cleaned up %d expired sessions and %d expired states",
			sessionCount, stateCount)
	}
}
