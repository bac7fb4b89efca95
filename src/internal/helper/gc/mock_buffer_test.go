// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import "bytes"

// mockBuffer satisfies Buffer without coming from a bytebufferpool, so the
// pool must refuse it.
type mockBuffer struct{ *bytes.Buffer }

func (m *mockBuffer) Set(p []byte) {
	m.Buffer.Reset()
	m.Buffer.Write(p)
}

func (m *mockBuffer) SetString(s string) {
	m.Buffer.Reset()
	m.Buffer.WriteString(s)
}

// errorReader fails every read, like an index file on a broken disk.
type errorReader struct{ err error }

func (e *errorReader) Read([]byte) (int, error) { return 0, e.err }
