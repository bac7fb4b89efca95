// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/H0llyW00dzZ/tls-cert-trust-inspector/src/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Level   string `json:"level"`
	Logger  string `json:"logger"`
	Message string `json:"message"`
}

func decodeLines(t *testing.T, data []byte) []line {
	t.Helper()
	var out []line
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var l line
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l), "line %q", sc.Text())
		out = append(out, l)
	}
	return out
}

func TestCLILogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Printf",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Printf("Trust index built: %d certificates", 3)
				assert.Equal(t, "Trust index built: 3 certificates\n", buf.String())
			},
		},
		{
			name: "Println",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Println("inspecting", "example.com:443")
				assert.Equal(t, "inspecting example.com:443\n", buf.String())
			},
		},
		{
			name: "SetOutput Switches Destination",
			testFunc: func(t *testing.T) {
				var first, second bytes.Buffer
				log := logger.NewCLILogger()

				log.SetOutput(&first)
				log.Println("first")
				log.SetOutput(&second)
				log.Println("second")

				assert.Equal(t, "first\n", first.String())
				assert.Equal(t, "second\n", second.String())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestMCPLogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Printf Writes JSON Line",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewMCPLogger(&buf, false)

				log.Printf("wrote %d entries", 2)

				lines := decodeLines(t, buf.Bytes())
				require.Len(t, lines, 1)
				assert.Equal(t, line{Level: "info", Message: "wrote 2 entries"}, lines[0])
				assert.NotContains(t, buf.String(), `"logger"`, "unnamed logger omits the logger field")
			},
		},
		{
			name: "Println",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewMCPLogger(&buf, false)

				log.Println("handshake", "done")
				lines := decodeLines(t, buf.Bytes())
				require.Len(t, lines, 1)
				assert.Equal(t, "handshakedone", lines[0].Message)
			},
		},
		{
			name: "Escapes Special Characters",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewMCPLogger(&buf, false)

				msg := "subject \"/CN=a\"\nissuer\t/CN=b"
				log.Printf("%s", msg)
				lines := decodeLines(t, buf.Bytes())
				require.Len(t, lines, 1)
				assert.Equal(t, msg, lines[0].Message)
			},
		},
		{
			name: "Silent Suppresses Output",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewMCPLogger(&buf, true)

				log.Printf("hidden %d", 1)
				log.Println("hidden")
				assert.Zero(t, buf.Len())
			},
		},
		{
			name: "Nil Writer Discards",
			testFunc: func(t *testing.T) {
				log := logger.NewMCPLogger(nil, false)
				assert.NotPanics(t, func() { log.Printf("nowhere") })
				log.SetOutput(nil)
				assert.NotPanics(t, func() { log.Println("still nowhere") })
			},
		},
		{
			name: "Named Shares Destination",
			testFunc: func(t *testing.T) {
				var first, second bytes.Buffer
				root := logger.NewMCPLogger(&first, false)
				child := root.Named("trustindex")

				child.Printf("entry %s", "A1:B2")
				root.SetOutput(&second)
				child.Println("moved")

				lines := decodeLines(t, first.Bytes())
				require.Len(t, lines, 1)
				assert.Equal(t, line{Level: "info", Logger: "trustindex", Message: "entry A1:B2"}, lines[0])

				lines = decodeLines(t, second.Bytes())
				require.Len(t, lines, 1)
				assert.Equal(t, "moved", lines[0].Message)
			},
		},
		{
			name: "Concurrent Lines Stay Whole",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewMCPLogger(&buf, false)

				const goroutines, perGoroutine = 20, 25
				var wg sync.WaitGroup
				for i := range goroutines {
					wg.Add(1)
					go func(id int) {
						defer wg.Done()
						for j := range perGoroutine {
							log.Printf("worker %d message %d", id, j)
						}
					}(i)
				}
				wg.Wait()

				lines := decodeLines(t, buf.Bytes())
				assert.Len(t, lines, goroutines*perGoroutine)
				for _, l := range lines {
					assert.True(t, strings.HasPrefix(l.Message, "worker "), l.Message)
				}
			},
		},
		{
			name: "Write To File",
			testFunc: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "mcp.log")
				f, err := os.Create(path)
				require.NoError(t, err)

				log := logger.NewMCPLogger(f, false)
				log.Printf("first")
				log.Printf("second")
				require.NoError(t, f.Close())

				data, err := os.ReadFile(path)
				require.NoError(t, err)
				lines := decodeLines(t, data)
				require.Len(t, lines, 2)
				assert.Equal(t, "second", lines[1].Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func BenchmarkMCPLogger_Printf(b *testing.B) {
	var buf bytes.Buffer
	log := logger.NewMCPLogger(&buf, false)
	for b.Loop() {
		log.Printf("verify:depth:%d", 1)
		buf.Reset()
	}
}
