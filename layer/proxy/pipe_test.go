/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package proxy_test

import (
	"bufio"
	"context"
	"net"

	"github.com/nabbar/sockfwd/layer"
)

// pipeSocket wraps one end of a net.Pipe as a layer.Socket, standing in for
// the reliable stream a proxy.Socket's next layer would normally be.
type pipeSocket struct {
	conn net.Conn
}

func newPipePair() (*pipeSocket, *pipeSocket) {
	a, b := net.Pipe()
	return &pipeSocket{conn: a}, &pipeSocket{conn: b}
}

func (p *pipeSocket) Open(ctx context.Context) error                           { return nil }
func (p *pipeSocket) Bind(ctx context.Context, local layer.Endpoint) error     { return nil }
func (p *pipeSocket) Connect(ctx context.Context, remote layer.Endpoint) error { return nil }
func (p *pipeSocket) Close() error                                             { return p.conn.Close() }
func (p *pipeSocket) Shutdown(how layer.ShutdownMode) error                    { return nil }
func (p *pipeSocket) Send(ctx context.Context, b []byte) (int, error) {
	n, err := p.conn.Write(b)
	if err != nil {
		return n, layer.ErrBrokenPipe.Error(err)
	}
	return n, nil
}
func (p *pipeSocket) Receive(ctx context.Context, b []byte) (int, error) {
	n, err := p.conn.Read(b)
	if err != nil {
		return n, layer.ErrBrokenPipe.Error(err)
	}
	return n, nil
}
func (p *pipeSocket) LocalEndpoint() layer.Endpoint  { return layer.ZeroEndpoint() }
func (p *pipeSocket) RemoteEndpoint() layer.Endpoint { return layer.ZeroEndpoint() }
func (p *pipeSocket) Cancel()                        { _ = p.conn.Close() }

var _ layer.Socket = (*pipeSocket)(nil)

// serverReadHeaderBlock reads CRLF-terminated lines off conn via bufio until it
// sees the blank line ending an HTTP header block, returning every line
// (including the request/status line, excluding the trailing blank one).
func serverReadHeaderBlock(r *bufio.Reader) ([]string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return lines, err
		}
		trimmed := trimCRLF(line)
		if trimmed == "" {
			return lines, nil
		}
		lines = append(lines, trimmed)
	}
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
