package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"analytics-mcp/internal/config"
	"analytics-mcp/internal/server"
)

var (
	serveConfigPath string
	serveTransport  string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Analytics MCP server",
	Long: `Starts the MCP server on the configured transport.

Configuration is loaded from ` + "`config.yaml`" + ` in the configuration
directory (default ~/.config/analytics-mcp), then overridden by
environment variables such as GOOGLE_OAUTH_CLIENT_ID and
ANALYTICS_MCP_PORT. Flags override both.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if serveTransport != "" {
		cfg.Server.Transport = serveTransport
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, &cfg, rootCmd.Version)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Custom configuration directory path")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "Transport to serve on (streamable-http, sse, stdio)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for HTTP transports")
}
