// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/config"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

// serverName is the name announced to MCP clients.
const serverName = "TLS Certificate Trust Inspector"

// ErrNoConfig is returned by [ServerBuilder.Build] when no configuration was set.
var ErrNoConfig = errors.New("mcpserver: configuration required")

// ToolHandler defines the function signature for MCP tool handlers.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ResourceHandler defines the function signature for MCP resource handlers.
type ResourceHandler = func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)

// ToolDefinition pairs an MCP tool with its handler.
//
// Role is the stable name the instructions template uses to refer to the
// tool, so a tool can be renamed without touching the template.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
	Role    string
}

// ServerDependencies holds everything the MCP server is built from.
//
// When Tools or Resources are empty, Build registers the default trust
// inspection tools and resources backed by Config.
type ServerDependencies struct {
	Config    *config.Config
	Version   string
	Logger    logger.Logger
	Tools     []ToolDefinition
	Resources []server.ServerResource
}

// ServerBuilder assembles an MCP server with a fluent interface.
//
// Example usage:
//
//	s, err := NewServerBuilder().
//		WithConfig(cfg).
//		WithVersion(version).
//		WithLogger(log).
//		Build()
type ServerBuilder struct{ deps ServerDependencies }

// NewServerBuilder creates a new server builder with no dependencies set.
func NewServerBuilder() *ServerBuilder { return &ServerBuilder{} }

// WithConfig sets the configuration the tools read the trust index and
// inspection settings from.
func (b *ServerBuilder) WithConfig(cfg *config.Config) *ServerBuilder {
	b.deps.Config = cfg
	return b
}

// WithVersion sets the version announced to clients.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.deps.Version = version
	return b
}

// WithLogger sets the logger handed to the inspector and the index builder.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.deps.Logger = log
	return b
}

// WithTools adds tools in place of the defaults.
func (b *ServerBuilder) WithTools(tools ...ToolDefinition) *ServerBuilder {
	b.deps.Tools = append(b.deps.Tools, tools...)
	return b
}

// WithResources adds resources in place of the defaults.
func (b *ServerBuilder) WithResources(resources ...server.ServerResource) *ServerBuilder {
	b.deps.Resources = append(b.deps.Resources, resources...)
	return b
}

// Build creates the MCP server with every configured tool and resource and
// the instructions rendered for those tools.
func (b *ServerBuilder) Build() (*server.MCPServer, error) {
	if b.deps.Config == nil {
		return nil, ErrNoConfig
	}

	tools, resources := b.deps.Tools, b.deps.Resources
	if len(tools) == 0 || len(resources) == 0 {
		ts := newToolset(b.deps.Config, b.deps.Logger)
		if len(tools) == 0 {
			tools = createTools(ts)
		}
		if len(resources) == 0 {
			resources = createResources(ts)
		}
	}

	instructions, err := loadInstructions(tools)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		serverName,
		b.deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions(instructions),
	)

	for _, tool := range tools {
		s.AddTool(tool.Tool, tool.Handler)
	}
	s.AddResources(resources...)

	return s, nil
}
