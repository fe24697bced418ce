package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"analytics-mcp/pkg/logging"
)

var (
	logLevel string
	jsonLog  bool
)

// rootCmd is the base command for the analytics-mcp application.
var rootCmd = &cobra.Command{
	Use:   "analytics-mcp",
	Short: "MCP server for Google Analytics",
	Long: `analytics-mcp exposes Google Analytics Admin and Data API operations
as MCP tools. It authenticates callers through bearer tokens or a
per-user Google OAuth flow and scopes every tool call to the
authenticated account.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Logs go to stderr so stdout stays clean for the stdio transport.
		logging.Init(logging.ParseLevel(logLevel), os.Stderr, jsonLog)
	},
}

// SetVersion sets the version for the root command. Called from main to
// inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "analytics-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Emit logs as JSON")
}
