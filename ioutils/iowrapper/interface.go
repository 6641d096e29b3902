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

package iowrapper

import (
	"io"

	libatm "github.com/nabbar/sockfwd/atomic"
)

// FuncRead receives the caller's buffer and returns the data read; nil signals EOF/error.
type FuncRead func(p []byte) []byte

// FuncWrite receives the data to write and returns what was written; nil signals an error.
type FuncWrite func(p []byte) []byte

// FuncSeek repositions the offset, like io.Seeker.Seek.
type FuncSeek func(offset int64, whence int) (int64, error)

// FuncClose performs cleanup on Close.
type FuncClose func() error

// IOWrapper wraps an underlying object with per-operation interception hooks.
type IOWrapper interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer

	// SetRead installs read, or restores delegation to the underlying io.Reader if nil.
	SetRead(read FuncRead)
	// SetWrite installs write, or restores delegation to the underlying io.Writer if nil.
	SetWrite(write FuncWrite)
	// SetSeek installs seek, or restores delegation to the underlying io.Seeker if nil.
	SetSeek(seek FuncSeek)
	// SetClose installs close, or restores delegation to the underlying io.Closer if nil.
	SetClose(close FuncClose)
}

// New wraps in. Operations with no custom function delegate to in when it implements the
// matching interface, or return io.ErrUnexpectedEOF (nil for Close) otherwise.
func New(in any) IOWrapper {
	return &iow{
		i: in,
		r: libatm.NewValue[FuncRead](),
		w: libatm.NewValue[FuncWrite](),
		s: libatm.NewValue[FuncSeek](),
		c: libatm.NewValue[FuncClose](),
	}
}
