package tools

import (
	"context"
	"fmt"

	"analytics-mcp/internal/analytics"
	"analytics-mcp/internal/auth"
	"analytics-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// AdminHandler is a tool body that needs an authenticated Analytics Admin
// client.
type AdminHandler func(ctx context.Context, svc *analyticsadmin.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// DataHandler is a tool body that needs an authenticated Analytics Data
// client.
type DataHandler func(ctx context.Context, svc *analyticsdata.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Injector wraps tool bodies with credential resolution and client
// construction. Constructed clients are cached on the request-scoped auth
// context so repeated tool calls within one request reuse them.
type Injector struct {
	resolver *auth.Resolver
	flow     *auth.Flow

	// allowADC permits falling back to Application Default Credentials
	// when no user credential resolves. Enabled for stdio deployments
	// where there is no gateway forwarding user tokens.
	allowADC bool

	// Client constructors, overridable in tests.
	newAdmin func(ctx context.Context, ts oauth2.TokenSource) (*analyticsadmin.Service, error)
	newData  func(ctx context.Context, ts oauth2.TokenSource) (*analyticsdata.Service, error)
}

// NewInjector creates an injector over the given resolver and flow. flow
// may be nil when the deployment cannot host an OAuth callback; resolution
// misses then surface without an authorization URL.
func NewInjector(resolver *auth.Resolver, flow *auth.Flow, allowADC bool) *Injector {
	return &Injector{
		resolver: resolver,
		flow:     flow,
		allowADC: allowADC,
		newAdmin: analytics.NewAdminService,
		newData:  analytics.NewDataService,
	}
}

// WithAdminService wraps an AdminHandler into a plain MCP tool handler.
func (inj *Injector) WithAdminService(h AdminHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ac := auth.FromContext(ctx)

		if ac != nil {
			if cached, ok := ac.CachedClient(analytics.KindAdmin); ok {
				return h(ctx, cached.(*analyticsadmin.Service), req)
			}
		}

		ts, errResult := inj.tokenSource(ctx, ac, req)
		if errResult != nil {
			return errResult, nil
		}

		svc, err := inj.newAdmin(ctx, ts)
		if err != nil {
			logging.Error("Tools", err, "Failed to construct Admin API client for %s", req.Params.Name)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ac != nil {
			ac.StoreClient(analytics.KindAdmin, svc)
		}

		return h(ctx, svc, req)
	}
}

// WithDataService wraps a DataHandler into a plain MCP tool handler.
func (inj *Injector) WithDataService(h DataHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ac := auth.FromContext(ctx)

		if ac != nil {
			if cached, ok := ac.CachedClient(analytics.KindData); ok {
				return h(ctx, cached.(*analyticsdata.Service), req)
			}
		}

		ts, errResult := inj.tokenSource(ctx, ac, req)
		if errResult != nil {
			return errResult, nil
		}

		svc, err := inj.newData(ctx, ts)
		if err != nil {
			logging.Error("Tools", err, "Failed to construct Data API client for %s", req.Params.Name)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ac != nil {
			ac.StoreClient(analytics.KindData, svc)
		}

		return h(ctx, svc, req)
	}
}

// tokenSource resolves a credential for the calling user. On failure it
// returns a tool error result: a validation error when no identity can be
// determined, or an authentication-required error carrying a fresh
// authorization URL so the gateway can restart the OAuth flow.
func (inj *Injector) tokenSource(ctx context.Context, ac *auth.AuthContext, req mcp.CallToolRequest) (oauth2.TokenSource, *mcp.CallToolResult) {
	email := req.GetString("user_email", "")
	sessionID := ""
	hasForwardedToken := false
	if ac != nil {
		if email == "" {
			email = ac.Email
		}
		sessionID = ac.TransportSessionID
		hasForwardedToken = !ac.BearerToken.IsEmpty()
	}

	if email == "" && sessionID == "" && !hasForwardedToken && !inj.allowADC {
		// Fail fast: this is a validation problem, not an auth problem
		return nil, mcp.NewToolResultError("user_email is required: no identity supplied and no bearer token forwarded")
	}

	if record, err := inj.resolver.Resolve(ctx, email, sessionID, auth.RequiredScopes()); err == nil {
		return oauth2.StaticTokenSource(record.Token()), nil
	}

	// A token forwarded by the gateway for this request is usable even
	// when no session record exists yet
	if hasForwardedToken {
		logging.Debug("Tools", "Using forwarded bearer token for %s", req.Params.Name)
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: ac.BearerToken.Value(),
			TokenType:   "Bearer",
		}), nil
	}

	if inj.allowADC {
		creds, err := google.FindDefaultCredentials(ctx, auth.RequiredScopes()...)
		if err == nil {
			logging.Debug("Tools", "Using application default credentials for %s", req.Params.Name)
			return creds.TokenSource, nil
		}
		logging.Debug("Tools", "No application default credentials: %v", err)
	}

	authErr := &auth.AuthRequiredError{Email: email}
	if inj.flow != nil {
		url, err := inj.flow.StartAuthFlow(sessionID)
		if err != nil {
			logging.Error("Tools", err, "Failed to start OAuth flow")
			return nil, mcp.NewToolResultError(fmt.Sprintf("failed to start authentication flow: %v", err))
		}
		authErr.AuthURL = url
	}

	logging.Info("Tools", "Authentication required for %s (session %s)",
		req.Params.Name, logging.TruncateSessionID(sessionID))
	return nil, mcp.NewToolResultError(authErr.Error())
}
