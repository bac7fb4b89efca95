// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package posix

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName is the fallback executable name and the directory name used
// for per-user state.
const AppName = "tls-cert-inspector"

// GetExecutableName returns the executable name without extension.
//
//   - Linux/macOS: "tls-cert-inspector" from "/usr/local/bin/tls-cert-inspector"
//   - Windows: "tls-cert-inspector" from "C:\bin\tls-cert-inspector.exe"
//   - Fallback: [AppName] if os.Args[0] is unavailable
func GetExecutableName() string {
	if len(os.Args) == 0 || os.Args[0] == "" {
		return AppName
	}

	name := filepath.Base(os.Args[0])

	// A foreign path (Windows separators on Unix) survives filepath.Base intact.
	if strings.ContainsAny(name, `/\`) {
		parts := strings.FieldsFunc(name, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			name = parts[len(parts)-1]
		}
	}

	return strings.TrimSuffix(name, ".exe")
}

// StateDir returns the per-user directory for app's derived data. It
// prefers the user cache directory and falls back to the system temp
// directory when no home is configured.
func StateDir(app string) string {
	base, err := os.UserCacheDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, app)
}
