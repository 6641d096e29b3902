/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package bufferReadCloser

import (
	"bufio"
	"bytes"
	"io"
)

// FuncClose runs after a wrapper's flush/reset, right before Close returns. Its error
// is propagated to the caller.
type FuncClose func() error

// Buffer wraps bytes.Buffer with io.Closer; Close resets the buffer then calls FuncClose.
type Buffer interface {
	io.Reader
	io.ReaderFrom
	io.ByteReader
	io.RuneReader
	io.Writer
	io.WriterTo
	io.ByteWriter
	io.StringWriter
	io.Closer
}

// Deprecated: use NewBuffer.
func New(b *bytes.Buffer) Buffer {
	return NewBuffer(b, nil)
}

// NewBuffer wraps b, or a fresh empty buffer if b is nil.
func NewBuffer(b *bytes.Buffer, fct FuncClose) Buffer {
	if b == nil {
		b = bytes.NewBuffer([]byte{})
	}
	return &buf{
		b: b,
		f: fct,
	}
}

// Reader wraps bufio.Reader with io.Closer; Close resets the reader then calls FuncClose.
type Reader interface {
	io.Reader
	io.WriterTo
	io.Closer
}

// NewReader wraps b, or a reader over an empty source (reads return io.EOF) if b is nil.
func NewReader(b *bufio.Reader, fct FuncClose) Reader {
	if b == nil {
		b = bufio.NewReader(bytes.NewReader([]byte{}))
	}
	return &rdr{
		b: b,
		f: fct,
	}
}

// Writer wraps bufio.Writer with io.Closer; Close flushes and resets the writer, then
// calls FuncClose.
type Writer interface {
	io.Writer
	io.StringWriter
	io.ReaderFrom
	io.Closer
}

// NewWriter wraps b, or a writer to io.Discard if b is nil.
func NewWriter(b *bufio.Writer, fct FuncClose) Writer {
	if b == nil {
		b = bufio.NewWriter(io.Discard)
	}
	return &wrt{
		b: b,
		f: fct,
	}
}

// ReadWriter wraps bufio.ReadWriter with io.Closer; Close flushes but does not reset,
// since bufio.ReadWriter embeds both Reader and Writer with colliding Reset methods.
type ReadWriter interface {
	Reader
	Writer
}

// NewReadWriter wraps b, or a readwriter over an empty source / io.Discard if b is nil.
func NewReadWriter(b *bufio.ReadWriter, fct FuncClose) ReadWriter {
	if b == nil {
		b = bufio.NewReadWriter(bufio.NewReader(bytes.NewReader([]byte{})), bufio.NewWriter(io.Discard))
	}
	return &rwt{
		b: b,
		f: fct,
	}
}
