package cli

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/mission-control/internal/mcptools"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the boards as MCP tools over stdio",
		Run:   runMCP,
	}

	RootCmd.AddCommand(cmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	// stdout carries the protocol, so logs go to stderr.
	a, logger := openApp(cmd, os.Stderr)
	defer a.Close()

	logger.Info().Str("version", Version).Msg("serving MCP over stdio")
	if err := server.ServeStdio(mcptools.NewServer(a.MCPBoards(), Version)); err != nil {
		logger.Error().Err(err).Msg("MCP server stopped")
	}
}
