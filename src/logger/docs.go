// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides the Logger interface and its two implementations:
// CLILogger for human-readable diagnostics on stderr and MCPLogger for JSON
// lines that must never interleave with the MCP stdio stream. MCPLogger
// stages each line in a pooled buffer before writing it.
package logger
