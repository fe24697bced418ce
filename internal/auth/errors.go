package auth

import (
	"errors"
	"fmt"
)

// ErrNoCredentials indicates that no credential source could produce a
// valid credential for the requested identity. Callers must initiate a
// new authorization flow.
var ErrNoCredentials = errors.New("no valid credentials found")

// AuthRequiredError indicates that a tool call cannot proceed without the
// user completing an OAuth flow. It carries the authorization URL the
// calling gateway should surface to the end user.
type AuthRequiredError struct {
	// AuthURL is the OAuth authorization URL the user should visit.
	AuthURL string

	// Email is the identity that needs to authenticate, if known.
	Email string
}

func (e *AuthRequiredError) Error() string {
	if e.AuthURL == "" {
		return "authentication required"
	}
	return fmt.Sprintf("authentication required: please visit %s to authorize access", e.AuthURL)
}

// IsAuthRequired reports whether err is an AuthRequiredError.
func IsAuthRequired(err error) bool {
	var authErr *AuthRequiredError
	return errors.As(err, &authErr)
}

// StateError indicates an invalid OAuth CSRF state during callback
// handling: unknown, expired, already consumed, or bound to a different
// session.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("invalid OAuth state: %s", e.Reason)
}

// TokenExpiredError indicates that a presented token failed verification
// because it has expired, as opposed to being malformed or forged.
type TokenExpiredError struct {
	Err error
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("token expired: %v", e.Err)
}

func (e *TokenExpiredError) Unwrap() error {
	return e.Err
}
