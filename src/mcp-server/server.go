// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/config"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/version"
)

var appVersion = version.Version // default version

// GetVersion returns the version the server announces.
func GetVersion() string {
	return appVersion
}

// Run serves the trust inspection tools over stdio until ctx is canceled or
// the client disconnects.
//
// Configuration is loaded from $TLS_CERT_INSPECTOR_CONFIG. Stdout carries
// the protocol, so logs go to mcp.logFile when configured and are discarded
// otherwise.
func Run(ctx context.Context, version string) error {
	appVersion = version

	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := NewServerBuilder().
		WithConfig(cfg).
		WithVersion(version).
		WithLogger(log).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	log.Printf("Serving %s %s, trust index %s", serverName, version, cfg.TrustIndex.Dir)
	return serve(ctx, s, os.Stdin, os.Stdout)
}

// serve runs the stdio transport on in and out until it stops or ctx ends.
func serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.NewStdioServer(s).Listen(ctx, in, out)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return fmt.Errorf("server shutdown: %w", ctx.Err())
	}
}

// openLog returns the server logger and a function releasing its file.
func openLog(cfg *config.Config) (*logger.MCPLogger, func(), error) {
	if cfg.MCP.LogFile == "" {
		return logger.NewMCPLogger(nil, true), func() {}, nil
	}
	f, err := os.OpenFile(cfg.MCP.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger.NewMCPLogger(f, false).Named("mcp-server"), func() { f.Close() }, nil
}
