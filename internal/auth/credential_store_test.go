package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCredentialStore(t *testing.T) *CredentialStore {
	t.Helper()
	store, err := NewCredentialStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCredentialStore failed: %v", err)
	}
	return store
}

func testCredential(email string, expiry time.Time) *StoredCredential {
	return &StoredCredential{
		Email:        email,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		Scopes:       RequiredScopes(),
		Expiry:       expiry,
	}
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	store := newTestCredentialStore(t)

	cred := testCredential("user@example.com", time.Now().Add(time.Hour))
	if err := store.Store(cred); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got := store.Get("user@example.com")
	if got == nil {
		t.Fatal("Expected to find stored credential")
	}
	if got.AccessToken != "access-token" {
		t.Errorf("Expected stored access token, got %s", got.AccessToken)
	}
}

func TestCredentialStoreEmailCaseInsensitive(t *testing.T) {
	store := newTestCredentialStore(t)

	if err := store.Store(testCredential("User@Example.com", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if store.Get("user@example.com") == nil {
		t.Error("Expected lookup to be case-insensitive on email")
	}
}

func TestCredentialStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	store, err := NewCredentialStore(dir)
	if err != nil {
		t.Fatalf("NewCredentialStore failed: %v", err)
	}
	if err := store.Store(testCredential("user@example.com", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// A fresh store over the same directory must see the record
	reopened, err := NewCredentialStore(dir)
	if err != nil {
		t.Fatalf("NewCredentialStore failed: %v", err)
	}
	if reopened.Get("user@example.com") == nil {
		t.Error("Expected persisted credential to survive a restart")
	}
}

func TestCredentialStoreReturnsExpiredRecords(t *testing.T) {
	store := newTestCredentialStore(t)

	if err := store.Store(testCredential("user@example.com", time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got := store.Get("user@example.com")
	if got == nil {
		t.Fatal("Expected expired credential to still be returned for refresh")
	}
	if !got.IsExpired(0) {
		t.Error("Expected credential to report itself expired")
	}
}

func TestCredentialStoreFilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCredentialStore(dir)
	if err != nil {
		t.Fatalf("NewCredentialStore failed: %v", err)
	}
	if err := store.Store(testCredential("user@example.com", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected one credential file, got %d", len(entries))
	}

	info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}
}

func TestCredentialStoreDelete(t *testing.T) {
	store := newTestCredentialStore(t)

	if err := store.Store(testCredential("user@example.com", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Delete("user@example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Get("user@example.com") != nil {
		t.Error("Expected credential to be gone after delete")
	}

	// Deleting a missing record is not an error
	if err := store.Delete("user@example.com"); err != nil {
		t.Errorf("Expected repeat delete to succeed, got %v", err)
	}
}

func TestCredentialStoreClear(t *testing.T) {
	store := newTestCredentialStore(t)

	store.Store(testCredential("a@example.com", time.Now().Add(time.Hour)))
	store.Store(testCredential("b@example.com", time.Now().Add(time.Hour)))

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Get("a@example.com") != nil || store.Get("b@example.com") != nil {
		t.Error("Expected all credentials to be removed")
	}
}

func TestCredentialStoreRejectsEmptyEmail(t *testing.T) {
	store := newTestCredentialStore(t)
	if err := store.Store(&StoredCredential{AccessToken: "x"}); err == nil {
		t.Error("Expected storing a credential without email to fail")
	}
}
