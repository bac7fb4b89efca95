// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Resource URIs.
const (
	configTemplateURI   = "config://template"
	trustIndexStatusURI = "status://trust-index"
)

// createResources returns the static resources backed by ts:
//   - config://template: the effective configuration as a starting point
//     for a configuration file
//   - status://trust-index: location, size and cache statistics of the
//     trust index
func createResources(ts *toolset) []server.ServerResource {
	return []server.ServerResource{
		{
			Resource: mcp.NewResource(configTemplateURI, "Configuration Template",
				mcp.WithResourceDescription("Configuration in effect, usable as a template for TLS_CERT_INSPECTOR_CONFIG"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: ts.handleConfigResource,
		},
		{
			Resource: mcp.NewResource(trustIndexStatusURI, "Trust Index Status",
				mcp.WithResourceDescription("Location, entry count and cache statistics of the local CA trust index"),
				mcp.WithMIMEType("application/json"),
			),
			Handler: ts.handleTrustIndexResource,
		},
	}
}
