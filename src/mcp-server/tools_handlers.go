// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/config"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/attributes"
	x509certs "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
)

// toolset holds the state shared by the tool and resource handlers.
type toolset struct {
	cfg       *config.Config
	index     *config.CachedIndex
	inspector *x509chain.Inspector
	log       logger.Logger

	// buildMu serializes index builds.
	buildMu sync.Mutex
}

func newToolset(cfg *config.Config, log logger.Logger) *toolset {
	if log == nil {
		log = logger.NewMCPLogger(nil, true)
	}
	index := cfg.OpenIndex()
	inspector := x509chain.NewInspector(index, log)
	inspector.Timeout = cfg.Timeout()
	inspector.MaxDepth = cfg.Inspect.MaxDepth
	return &toolset{cfg: cfg, index: index, inspector: inspector, log: log}
}

// handleInspectTLSChain inspects the chain presented by the requested host.
// Connection and index failures are returned as tool errors; verification
// failures are part of the report.
func (ts *toolset) handleInspectTLSChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host, err := request.RequireString("host")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("host parameter required: %v", err)), nil
	}
	format := request.GetString("format", formatText)
	switch format {
	case formatText, formatJSON, formatTable, formatTree:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q: use text, json, table or tree", format)), nil
	}

	target, err := x509chain.ParseTarget(host, request.GetString("servername", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := ts.inspector.Inspect(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch format {
	case formatJSON:
		data, err := report.ToJSON()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode report: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	case formatTable:
		return mcp.NewToolResultText(report.RenderTable()), nil
	case formatTree:
		return mcp.NewToolResultText(report.RenderASCIITree()), nil
	default:
		return mcp.NewToolResultText(report.RenderText(request.GetBool("include_pem", false))), nil
	}
}

// buildSummary is the JSON result of build_trust_index.
type buildSummary struct {
	Index  string                  `json:"index"`
	Bundle string                  `json:"bundle"`
	Signer string                  `json:"signer,omitempty"`
	Result *trustindex.BuildResult `json:"result"`
}

// handleBuildTrustIndex builds the trust index. The configured checksum
// pin and signature apply to any bundle named in the request.
func (ts *toolset) handleBuildTrustIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := trustindex.BundleSource{
		Path:      request.GetString("bundle", ts.cfg.TrustIndex.Bundle),
		SHA256:    ts.cfg.TrustIndex.SHA256,
		Signature: ts.cfg.TrustIndex.Signature,
		Keyring:   ts.cfg.TrustIndex.Keyring,
	}

	ts.buildMu.Lock()
	defer ts.buildMu.Unlock()

	bundle, err := trustindex.ReadBundle(src)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	builder := trustindex.NewBuilder(ts.index, ts.log)
	builder.Prune = request.GetBool("prune", ts.cfg.TrustIndex.Prune)
	result, err := builder.Build(ctx, bundle.Data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ts.inspector.Reload()

	data, err := json.MarshalIndent(buildSummary{
		Index:  ts.index.Dir(),
		Bundle: bundle.Path,
		Signer: bundle.Signer,
		Result: result,
	}, "", "    ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleLookupTrustIndex returns the attributes and PEM of one index entry.
func (ts *toolset) handleLookupTrustIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("identifier")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("identifier parameter required: %v", err)), nil
	}
	if !ts.index.Exists() {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", x509chain.ErrIndexMissing, ts.index.Dir())), nil
	}

	data, err := ts.index.Get(key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, key)), nil
	}
	cert, err := x509certs.New().Decode(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("index entry %s: %v", key, err)), nil
	}

	out, err := json.MarshalIndent(attributes.ExtractAt(cert, time.Now()), "", "    ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode entry: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
