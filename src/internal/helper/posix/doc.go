// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-friendly helpers for naming the running
// executable and locating per-user state on disk.
//
// Key functions:
//   - GetExecutableName: the executable name without extension, for usage strings
//   - StateDir: a per-user directory for derived data such as the trust index
//
// Example:
//
//	rootCmd := &cobra.Command{
//	    Use:     posix.GetExecutableName() + " [flags] <host[:port]>",
//	    Example: fmt.Sprintf("  %s example.com:443", posix.GetExecutableName()),
//	}
//
//	indexDir := filepath.Join(posix.StateDir(posix.AppName), "subjectKeyIdentifier")
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
