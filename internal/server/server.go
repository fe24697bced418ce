package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"analytics-mcp/internal/auth"
	"analytics-mcp/internal/config"
	"analytics-mcp/internal/tools"
	"analytics-mcp/pkg/logging"
)

const (
	mcpEndpointPath = "/mcp"
	healthPath      = "/health"

	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 120 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server wires the auth pipeline, the Google Analytics tool set, and the
// chosen MCP transport into a single runnable unit.
type Server struct {
	cfg *config.Config

	sessions   *auth.SessionStore
	persisted  *auth.CredentialStore
	resolver   *auth.Resolver
	flow       *auth.Flow
	verifier   auth.TokenVerifier
	mcpServer  *server.MCPServer
	httpServer *http.Server
}

// New builds a Server from validated configuration. The context is used for
// one-time setup such as fetching Google's OIDC discovery document.
func New(ctx context.Context, cfg *config.Config, version string) (*Server, error) {
	s := &Server{cfg: cfg}

	s.sessions = auth.NewSessionStore()

	// Stateless mode keeps no credentials on disk; sessions live only in
	// memory for the life of the process
	if !cfg.Server.Stateless {
		persisted, err := auth.NewCredentialStore(cfg.CredentialsDir())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize credential store: %w", err)
		}
		s.persisted = persisted
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.CallbackURL(),
		Scopes:       auth.RequiredScopes(),
		Endpoint:     google.Endpoint,
	}

	s.resolver = auth.NewResolver(s.sessions, s.persisted, oauthCfg)
	s.flow = auth.NewFlow(oauthCfg, s.sessions, s.persisted)

	if cfg.Auth.VerifyJWT {
		verifier, err := auth.NewGoogleVerifier(ctx, cfg.OAuth.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
		}
		s.verifier = verifier
	}

	allowADC := cfg.Server.Transport == config.TransportStdio
	injector := tools.NewInjector(s.resolver, s.flow, allowADC)

	s.mcpServer = server.NewMCPServer(
		"analytics-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	tools.Register(s.mcpServer, injector)

	return s, nil
}

// Start runs the server until the context is canceled. For HTTP transports it
// also performs a graceful shutdown of in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	defer s.sessions.Stop()

	if s.cfg.Server.Transport == config.TransportStdio {
		logging.Info("server", "Serving MCP over stdio")
		return server.ServeStdio(s.mcpServer)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("server", "Serving MCP over %s at %s%s",
			s.cfg.Server.Transport, s.cfg.ServerURL(), mcpEndpointPath)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info("server", "Shutting down HTTP server")
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// httpHandler assembles the HTTP routing stack: system endpoints, the MCP
// transport, and the middleware chain around them.
func (s *Server) httpHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, s.handleHealth)
	mux.HandleFunc(config.DefaultOAuthCallbackPath, s.handleOAuthCallback)

	switch s.cfg.Server.Transport {
	case config.TransportSSE:
		sse := server.NewSSEServer(s.mcpServer,
			server.WithBaseURL(s.cfg.PublicURL()),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithSSEContextFunc(propagateAuthContext),
		)
		mux.Handle("/sse", sse)
		mux.Handle("/message", sse)
	default:
		streamable := server.NewStreamableHTTPServer(s.mcpServer,
			server.WithEndpointPath(mcpEndpointPath),
			server.WithHTTPContextFunc(propagateAuthContext),
			server.WithStateLess(s.cfg.Server.Stateless),
		)
		mux.Handle(mcpEndpointPath, streamable)
	}

	handler := auth.TokenExtraction(auth.MiddlewareConfig{
		HealthPath:        healthPath,
		Verifier:          s.verifier,
		DefaultPropertyID: s.cfg.Analytics.DefaultPropertyID,
	}, mux)
	return s.corsMiddleware(securityHeaders(handler))
}

// propagateAuthContext carries the request-scoped auth context established by
// the extraction middleware into the context seen by tool handlers.
func propagateAuthContext(ctx context.Context, r *http.Request) context.Context {
	if ac := auth.FromContext(r.Context()); ac != nil {
		return auth.WithAuthContext(ctx, ac)
	}
	return ctx
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
