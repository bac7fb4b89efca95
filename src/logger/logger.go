// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/internal/helper/gc"
)

// Logger defines the interface for logging operations.
//
// This interface supports both CLI and [MCP] server modes, allowing seamless
// switching between human-readable output and structured logging.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// It writes to stderr so reports on stdout stay machine-readable.
func NewCLILogger() *CLILogger {
	return &CLILogger{logger: log.New(os.Stderr, "", 0)}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// entry is a single structured log line.
type entry struct {
	Level   string `json:"level"`
	Logger  string `json:"logger,omitempty"`
	Message string `json:"message"`
}

// sink is the destination shared by an MCPLogger and its named children.
type sink struct {
	mu     sync.Mutex
	writer io.Writer
}

// MCPLogger implements Logger for [MCP] server mode.
// It suppresses output by default since MCP communication happens over stdio,
// but can be configured to write JSON lines to a separate destination.
//
// MCPLogger is safe for concurrent use by multiple goroutines.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
type MCPLogger struct {
	sink   *sink
	name   string
	silent bool
}

// NewMCPLogger creates a new [MCP] logger.
// Set silent=false and provide a writer to enable structured logging to a file or stderr.
//
// [MCP]: https://modelcontextprotocol.io/docs/getting-started/intro
func NewMCPLogger(writer io.Writer, silent bool) *MCPLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &MCPLogger{
		sink:   &sink{writer: writer},
		silent: silent,
	}
}

// Named returns a logger that tags every line with name and shares
// the destination of m.
func (m *MCPLogger) Named(name string) *MCPLogger {
	return &MCPLogger{sink: m.sink, name: name, silent: m.silent}
}

// Printf formats and logs a structured message.
func (m *MCPLogger) Printf(format string, v ...any) {
	if m.silent {
		return
	}
	m.emit(fmt.Sprintf(format, v...))
}

// Println logs a structured message built with fmt.Sprint semantics.
func (m *MCPLogger) Println(v ...any) {
	if m.silent {
		return
	}
	m.emit(fmt.Sprint(v...))
}

func (m *MCPLogger) emit(msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	// Encode appends the trailing newline.
	if err := json.NewEncoder(buf).Encode(entry{Level: "info", Logger: m.name, Message: msg}); err != nil {
		return
	}

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	buf.WriteTo(m.sink.writer)
}

// SetOutput sets the output destination for the MCP logger and every
// logger derived from it with Named.
func (m *MCPLogger) SetOutput(w io.Writer) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()

	if w == nil {
		m.sink.writer = io.Discard
	} else {
		m.sink.writer = w
	}
}
