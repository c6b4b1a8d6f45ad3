// Package mcp exposes the transaction timeline to assistants over the Model
// Context Protocol, backed by the progress service REST API.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maisonhq/maison/internal/client"
	"github.com/maisonhq/maison/internal/platform/config"
)

const (
	serverName    = "maison"
	serverVersion = "v0.1.0"
)

type serverEnv struct {
	ProgressURL string `env:"MAISON_MCP_PROGRESS_URL" envDefault:"http://localhost:8081"`
	Token       string `env:"MAISON_MCP_TOKEN"`
}

// Server hosts the MCP tools over a transport.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server from environment configuration. The bearer token
// scopes every tool call to one signed-in user.
func New() (*Server, error) {
	var env serverEnv
	if err := config.ParseEnv(&env); err != nil {
		return nil, err
	}
	if strings.TrimSpace(env.Token) == "" {
		return nil, errors.New("MAISON_MCP_TOKEN is required")
	}
	api := client.New(env.ProgressURL, client.StaticToken(env.Token))
	return NewWithAPI(api)
}

// NewWithAPI creates an MCP server over an explicit progress API.
func NewWithAPI(api ProgressAPI) (*Server, error) {
	if api == nil {
		return nil, errors.New("progress api is nil")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	mcp.AddTool(mcpServer, GetTimelineTool(), GetTimelineHandler(api))
	mcp.AddTool(mcpServer, UpdateProgressTool(), UpdateProgressHandler(api))
	return &Server{mcpServer: mcpServer}, nil
}

// Run serves MCP over stdio until context cancellation.
func (s *Server) Run(ctx context.Context) error {
	return s.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport serves MCP over the provided transport.
func (s *Server) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("server is nil")
	}
	err := s.mcpServer.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}
