// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Report formats accepted by inspect_tls_chain.
const (
	formatText  = "text"
	formatJSON  = "json"
	formatTable = "table"
	formatTree  = "tree"
)

// createTools returns the trust inspection tools backed by ts:
//   - inspect_tls_chain: inspects the chain a server presents
//   - build_trust_index: builds the trust index from a CA bundle
//   - lookup_trust_index: reads one trust index entry
func createTools(ts *toolset) []ToolDefinition {
	return []ToolDefinition{
		{
			Tool: mcp.NewTool("inspect_tls_chain",
				mcp.WithDescription("Connect to a TLS server and report, per certificate it presents, the verification result and whether the certificate is in the local CA trust index"),
				mcp.WithString("host",
					mcp.Required(),
					mcp.Description("Target as host, host:port or URL (default port 443)"),
				),
				mcp.WithString("servername",
					mcp.Description("TLS server name (SNI), defaults to the target host"),
				),
				mcp.WithString("format",
					mcp.Description("Output format: 'text', 'json', 'table' or 'tree' (default: text)"),
					mcp.DefaultString(formatText),
					mcp.Enum(formatText, formatJSON, formatTable, formatTree),
				),
				mcp.WithBoolean("include_pem",
					mcp.Description("Include the certificates in text output (default: false)"),
					mcp.DefaultBool(false),
				),
			),
			Handler: ts.handleInspectTLSChain,
			Role:    "inspector",
		},
		{
			Tool: mcp.NewTool("build_trust_index",
				mcp.WithDescription("Build the local CA trust index from a PEM or PKCS#7 CA bundle, keyed by subject key identifier or subject DN"),
				mcp.WithString("bundle",
					mcp.Description("CA bundle path (default: configured bundle, $SSL_CERT_FILE or the platform bundle)"),
				),
				mcp.WithBoolean("prune",
					mcp.Description("Remove index entries that are not in the bundle (default: configured value)"),
				),
			),
			Handler: ts.handleBuildTrustIndex,
			Role:    "indexBuilder",
		},
		{
			Tool: mcp.NewTool("lookup_trust_index",
				mcp.WithDescription("Return the CA certificate stored in the trust index under a subject key identifier or serialized subject DN"),
				mcp.WithString("identifier",
					mcp.Required(),
					mcp.Description("Normalized identifier, e.g. 'AB:CD:...' or 'C=US+++O=Example+++CN=Root'"),
				),
			),
			Handler: ts.handleLookupTrustIndex,
			Role:    "indexLookup",
		},
	}
}
