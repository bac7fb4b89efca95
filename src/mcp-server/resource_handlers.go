// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/trustindex"
)

func (ts *toolset) handleConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(configTemplateURI, ts.cfg)
}

// trustIndexStatus is the content of status://trust-index.
type trustIndexStatus struct {
	Dir     string                  `json:"dir"`
	Exists  bool                    `json:"exists"`
	Entries int                     `json:"entries"`
	Cache   trustindex.CacheMetrics `json:"cache"`
}

func (ts *toolset) handleTrustIndexResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	status := trustIndexStatus{
		Dir:    ts.index.Dir(),
		Exists: ts.index.Exists(),
		Cache:  ts.index.Metrics(),
	}
	if status.Exists {
		keys, err := ts.index.Keys()
		if err != nil {
			return nil, fmt.Errorf("failed to list trust index: %w", err)
		}
		status.Entries = len(keys)
	}
	return jsonResource(trustIndexStatusURI, status)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
