package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// GoogleIssuer is the OIDC issuer for Google accounts.
const GoogleIssuer = "https://accounts.google.com"

// TokenVerifier verifies a presented bearer token and resolves the identity
// it was issued to. Implementations must return a TokenExpiredError for
// expired tokens so callers can distinguish them from forged ones.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (email string, err error)
}

// GoogleVerifier verifies Google-issued ID tokens against Google's JWKS.
// Used when the server runs in OAuth 2.1 mode and must not trust opaque
// forwarded tokens.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier creates a verifier for Google ID tokens. The provider
// discovery document and JWKS are fetched lazily and cached by the oidc
// library. When audience is empty, the audience check is skipped (tokens
// can be issued to any client).
func NewGoogleVerifier(ctx context.Context, audience string) (*GoogleVerifier, error) {
	provider, err := oidc.NewProvider(ctx, GoogleIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover Google OIDC provider: %w", err)
	}

	cfg := &oidc.Config{ClientID: audience}
	if audience == "" {
		cfg.SkipClientIDCheck = true
	}

	return &GoogleVerifier{verifier: provider.Verifier(cfg)}, nil
}

// Verify checks the token's signature and claims and returns the email
// claim on success.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return "", &TokenExpiredError{Err: err}
		}
		return "", fmt.Errorf("JWT verification failed: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("failed to parse token claims: %w", err)
	}

	return claims.Email, nil
}

// DecodeUnverifiedClaims extracts the email and expiry claims from a JWT
// without verifying its signature. Used in opaque-token mode purely as a
// best-effort hint for session key derivation and logging; never as an
// authentication decision.
func DecodeUnverifiedClaims(rawToken string) (email string, expiry time.Time, ok bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return "", time.Time{}, false
	}

	if v, found := claims["email"]; found {
		email, _ = v.(string)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}

	return email, expiry, email != "" || !expiry.IsZero()
}
