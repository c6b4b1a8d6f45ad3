// Package mcp parses MCP service flags and launches the stdio server.
package mcp

import (
	"context"
	"flag"

	mcpserver "github.com/maisonhq/maison/internal/mcp"
	entrypoint "github.com/maisonhq/maison/internal/platform/cmd"
)

// Config holds MCP command configuration. The server itself is configured
// from MAISON_MCP_* environment variables.
type Config struct{}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return Config{}, nil
}

// Run starts the MCP stdio server.
func Run(ctx context.Context, _ Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		server, err := mcpserver.New()
		if err != nil {
			return err
		}
		return server.Run(ctx)
	})
}
