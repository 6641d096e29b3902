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

package crypto

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nabbar/sockfwd/layer"
)

// socketConn adapts a layer.Socket to net.Conn so crypto/tls.Client/Server
// can wrap it. Deadlines are no-ops: every blocking call this layer makes
// already goes through layer.Socket's own context-cancelable Send/Receive,
// so the tls engine never needs its own timeout path.
type socketConn struct {
	next layer.Socket

	mu  sync.Mutex
	ctx context.Context
}

func newSocketConn(next layer.Socket) *socketConn {
	return &socketConn{next: next, ctx: context.Background()}
}

func (c *socketConn) setContext(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
}

func (c *socketConn) currentContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func (c *socketConn) Read(p []byte) (int, error) {
	return c.next.Receive(c.currentContext(), p)
}

func (c *socketConn) Write(p []byte) (int, error) {
	return c.next.Send(c.currentContext(), p)
}

func (c *socketConn) Close() error {
	return c.next.Close()
}

func (c *socketConn) LocalAddr() net.Addr {
	return endpointAddr(c.next.LocalEndpoint())
}

func (c *socketConn) RemoteAddr() net.Addr {
	return endpointAddr(c.next.RemoteEndpoint())
}

func (c *socketConn) SetDeadline(time.Time) error      { return nil }
func (c *socketConn) SetReadDeadline(time.Time) error  { return nil }
func (c *socketConn) SetWriteDeadline(time.Time) error { return nil }

var _ net.Conn = (*socketConn)(nil)

type epAddr struct{ s string }

func (a epAddr) Network() string { return "layer" }
func (a epAddr) String() string  { return a.s }

func endpointAddr(ep layer.Endpoint) net.Addr {
	if ep == nil {
		return epAddr{"unknown"}
	}
	return epAddr{ep.String()}
}
