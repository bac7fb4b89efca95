// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/cli"
	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
	verpkg "github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/version"
)

var version string // set by ldflags or defaults to imported version

func init() {
	if version == "" {
		version = verpkg.Version
	}
}

func main() {
	log := logger.NewCLILogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx, version, log)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("CLI execution failed: %v", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Println("Operation cancelled by signal. Exiting...")
		// Give the handshake a moment to unwind
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
		os.Exit(130) // Standard exit code for SIGINT
	}
}
