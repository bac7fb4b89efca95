// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package templates embeds the markdown templates of the MCP server.
//
// The server instructions sent to clients on initialization are rendered
// from [InstructionsFile] with the registered tools, so the text always
// names the tools the server actually offers.
//
// Example usage:
//
//	import "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/mcp-server/templates"
//
//	entries, err := templates.MagicEmbed.ReadDir(".")
//	if err != nil {
//		return fmt.Errorf("failed to list templates: %w", err)
//	}
package templates
