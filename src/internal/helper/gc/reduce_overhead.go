// Copyright (c) 2024 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import (
	"io"

	"github.com/valyala/bytebufferpool"
)

// Buffer defines the interface for a reusable byte buffer.
// It abstracts the [bytebufferpool.ByteBuffer] type to avoid direct dependencies.
type Buffer interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
	io.WriterTo
	io.ReaderFrom

	Bytes() []byte
	String() string
	Len() int
	Set(p []byte)
	SetString(s string)
	Reset()
}

// Pool defines the interface for buffer pooling.
// It abstracts the [bytebufferpool.Pool] type to avoid direct dependencies.
//
// Pool implementations must be safe for concurrent use by multiple goroutines.
type Pool interface {
	Get() Buffer
	Put(b Buffer)
}

// pool wraps [bytebufferpool.Pool] to implement Pool interface.
type pool struct{ p *bytebufferpool.Pool }

// Get returns a buffer from the pool.
func (p *pool) Get() Buffer { return p.p.Get() }

// Put returns a buffer to the pool. Buffers not obtained from a
// bytebufferpool are dropped.
func (p *pool) Put(b Buffer) {
	if buf, ok := b.(*bytebufferpool.ByteBuffer); ok {
		p.p.Put(buf)
	}
}

// Default is the buffer pool shared by the trust index, the report
// renderers and the loggers.
//
// Example usage for reading a trust index entry from disk:
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()         // Reset the buffer to prevent data leaks
//		gc.Default.Put(buf) // Return the buffer to the pool for reuse
//	}()
//
//	f, err := os.Open(path)
//	if err != nil {
//		return nil, err
//	}
//	defer f.Close()
//
//	if _, err := buf.ReadFrom(f); err != nil {
//		return nil, err
//	}
//
//	// Bytes aliases pooled memory; copy before returning it.
//	return bytes.Clone(buf.Bytes()), nil
//
// Example usage for rendering a report:
//
//	buf := gc.Default.Get()
//	defer func() {
//		buf.Reset()
//		gc.Default.Put(buf)
//	}()
//
//	fmt.Fprintf(buf, "Host: %s:%d\n", host, port)
//	_, err := buf.WriteTo(w)
var Default Pool = &pool{p: &bytebufferpool.Pool{}}
