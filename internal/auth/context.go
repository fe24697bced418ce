package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type contextKey struct{}

// AuthContext is the request-scoped authentication state populated by the
// token extraction middleware. It is constructed at most once per inbound
// request and discarded when the request completes; it is never shared
// across requests.
type AuthContext struct {
	// RequestID correlates log lines belonging to one inbound request.
	RequestID string

	// BearerToken is the raw token extracted from the Authorization
	// header, if any.
	BearerToken RedactedToken

	// Email is the verified identity of the caller when the server runs
	// in JWT-verifying mode; empty for opaque forwarded tokens.
	Email string

	// TransportSessionID is the MCP session identifier supplied by the
	// transport, if any.
	TransportSessionID string

	// PropertyID is the default Analytics property supplied via the
	// X-Analytics-Property-Id header, if any.
	PropertyID string

	mu      sync.Mutex
	clients map[string]any
}

// NewAuthContext creates an empty request-scoped auth context with a fresh
// request ID.
func NewAuthContext() *AuthContext {
	return &AuthContext{
		RequestID: uuid.NewString(),
		clients:   make(map[string]any),
	}
}

// CachedClient returns the API client cached under kind for this request.
func (a *AuthContext) CachedClient(kind string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	client, ok := a.clients[kind]
	return client, ok
}

// StoreClient caches an API client under kind for the remaining lifetime
// of the current request.
func (a *AuthContext) StoreClient(kind string, client any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clients[kind] = client
}

// WithAuthContext returns a context carrying the given auth context.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

// FromContext returns the auth context attached to ctx, or nil if the
// request never passed through the token extraction middleware.
func FromContext(ctx context.Context) *AuthContext {
	ac, _ := ctx.Value(contextKey{}).(*AuthContext)
	return ac
}
