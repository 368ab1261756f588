package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/finscreen/internal/app"
)

// finscreen-mcp serves the MCP tools over stdio for desktop clients.
// Logs go to stderr so stdout stays a clean JSON-RPC stream.
func main() {
	a, err := app.NewApp(os.Getenv("FINSCREEN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Logger.Info().Msg("Serving MCP over stdio")

	if err := server.ServeStdio(a.MCPServer); err != nil {
		a.Logger.Error().Err(err).Msg("MCP server failed")
		os.Exit(1)
	}
}
