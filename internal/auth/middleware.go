package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"analytics-mcp/pkg/logging"
)

// Unauthorized reason strings returned in the 401 response body.
const (
	ReasonMissingHeader     = "missing header"
	ReasonEmptyHeader       = "empty header"
	ReasonUnsupportedScheme = "unsupported scheme"
	ReasonEmptyBearerToken  = "empty bearer token"
	ReasonInvalidToken      = "invalid/expired token"
	ReasonInvalidJWT        = "invalid JWT"
)

// HeaderPropertyID is the optional header scoping tool calls to a default
// Analytics property.
const HeaderPropertyID = "X-Analytics-Property-Id"

// HeaderMCPSession is the MCP transport session header.
const HeaderMCPSession = "Mcp-Session-Id"

// maxPeekBytes bounds how much of a request body the middleware reads when
// checking for auth-exempt protocol methods. JSON-RPC requests are small;
// anything larger is not an exempt call.
const maxPeekBytes = 1 << 20

// exemptMethods are MCP protocol methods that pass through without
// authentication: capability discovery and liveness calls that carry no
// user data.
var exemptMethods = map[string]struct{}{
	"ping":           {},
	"tools/list":     {},
	"prompts/list":   {},
	"resources/list": {},
}

// MiddlewareConfig configures the token extraction middleware.
type MiddlewareConfig struct {
	// HealthPath passes through unauthenticated regardless of method.
	HealthPath string

	// Verifier, when set, switches the middleware into JWT-verifying
	// mode: bearer tokens must be Google-signed ID tokens and the
	// resolved identity is attached to the request. When nil, tokens
	// are forwarded opaquely.
	Verifier TokenVerifier

	// DefaultPropertyID scopes requests that carry no
	// X-Analytics-Property-Id header.
	DefaultPropertyID string
}

// TokenExtraction returns middleware that extracts the bearer token from
// inbound requests and attaches a request-scoped AuthContext before
// invoking next. Requests that require a token and lack a usable one are
// rejected with a structured 401 and never reach next.
func TokenExtraction(cfg MiddlewareConfig, next http.Handler) http.Handler {
	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = "/health"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health checks never require auth
		if r.URL.Path == healthPath {
			next.ServeHTTP(w, r)
			return
		}

		// Unsupported verbs are passed through; the transport framing
		// rejects them with the right status
		switch r.Method {
		case http.MethodGet, http.MethodPost, http.MethodHead:
		default:
			next.ServeHTTP(w, r)
			return
		}

		ac := NewAuthContext()
		ac.TransportSessionID = r.Header.Get(HeaderMCPSession)
		ac.PropertyID = r.Header.Get(HeaderPropertyID)
		if ac.PropertyID == "" {
			ac.PropertyID = cfg.DefaultPropertyID
		}

		// Streaming GET connections and HEAD probes extract a token
		// opportunistically; the handshake may precede authentication
		if r.Method != http.MethodPost {
			if token, reason := extractBearer(r); reason == "" {
				v := cfg.Verifier
				if v != nil {
					email, err := v.Verify(r.Context(), token)
					if err == nil {
						ac.Email = email
					} else {
						logging.Debug("Auth", "Opportunistic token verification failed: %v", err)
						token = ""
					}
				} else if email, _, ok := DecodeUnverifiedClaims(token); ok {
					ac.Email = email
				}
				ac.BearerToken = NewRedactedToken(token)
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
			return
		}

		// Peek the body for auth-exempt protocol methods and restore it
		// so downstream handlers can still read it. Bodies larger than
		// the peek window keep their unread remainder.
		if r.Body != nil {
			rest := r.Body
			body, err := io.ReadAll(io.LimitReader(rest, maxPeekBytes))
			if err != nil {
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), rest))

			if method := jsonRPCMethod(body); method != "" {
				if _, exempt := exemptMethods[method]; exempt {
					logging.Debug("Auth", "Passing through auth-exempt method %s", method)
					if token, reason := extractBearer(r); reason == "" {
						ac.BearerToken = NewRedactedToken(token)
					}
					next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
					return
				}
			}
		}

		token, reason := extractBearer(r)
		if reason != "" {
			logging.Debug("Auth", "Rejecting request %s: %s", ac.RequestID, reason)
			writeUnauthorized(w, reason)
			return
		}

		if cfg.Verifier != nil {
			email, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				logging.Warn("Auth", "Token verification failed for token %s: %v",
					logging.MaskToken(token), err)
				var expired *TokenExpiredError
				if errors.As(err, &expired) {
					writeUnauthorized(w, ReasonInvalidToken)
				} else {
					writeUnauthorized(w, ReasonInvalidJWT)
				}
				return
			}
			ac.Email = email
		} else if email, _, ok := DecodeUnverifiedClaims(token); ok {
			// Opaque mode: identity hint only, never an auth decision
			ac.Email = email
		}

		ac.BearerToken = NewRedactedToken(token)
		logging.Debug("Auth", "Extracted bearer token %s for session %s",
			ac.BearerToken.Masked(), logging.TruncateSessionID(ac.TransportSessionID))

		next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), ac)))
	})
}

// extractBearer parses the Authorization header. Returns the trimmed token
// on success, or the unauthorized reason on failure.
func extractBearer(r *http.Request) (token, reason string) {
	values, present := r.Header["Authorization"]
	if !present {
		return "", ReasonMissingHeader
	}

	header := ""
	if len(values) > 0 {
		header = values[0]
	}
	if strings.TrimSpace(header) == "" {
		return "", ReasonEmptyHeader
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", ReasonUnsupportedScheme
	}

	token = strings.TrimSpace(header[len("Bearer "):])
	if token == "" {
		return "", ReasonEmptyBearerToken
	}

	return token, ""
}

// jsonRPCMethod extracts the JSON-RPC method field from a request body.
// Returns "" when the body is not a JSON object or has no method.
func jsonRPCMethod(body []byte) string {
	var msg struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return ""
	}
	return msg.Method
}

// writeUnauthorized writes the structured 401 response.
func writeUnauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": reason,
		"code":  http.StatusUnauthorized,
	})
}
