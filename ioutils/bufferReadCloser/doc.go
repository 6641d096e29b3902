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

// Package bufferReadCloser adds io.Closer to bytes.Buffer, bufio.Reader, bufio.Writer,
// and bufio.ReadWriter, so a buffered stage of the forwarder's pipe can be deferred
// like any other resource.
//
// Close resets the buffer (Buffer, Reader), flushes it (Writer, ReadWriter), and then
// calls an optional FuncClose for chained cleanup (e.g. returning the buffer to a pool,
// or closing the underlying connection). ReadWriter cannot reset on close: bufio.ReadWriter
// embeds both Reader and Writer, and their Reset methods collide.
//
// None of the wrappers are safe for concurrent use without external locking, matching
// the underlying bufio/bytes types they wrap.
package bufferReadCloser
