package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-server-box",
	Short: "MCP server exposing Box content tools",
	Long: `mcp-server-box is a Model Context Protocol (MCP) server that exposes
Box's cloud content API as tools for AI assistants: search, file and
folder management, shared links, tagging, locking and Box AI.

Box credentials are resolved from the environment according to the
selected auth mode (oauth, ccg, jwt or mcp_client).`,
	SilenceUsage: true,
}

var version = "dev"

// SetVersion records the build version; main injects it before Execute.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the CLI. Invocations without a subcommand serve.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-server-box version %s\n" .Version}}`)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
