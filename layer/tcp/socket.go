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

package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nabbar/sockfwd/layer"
)

// Socket is a layer.Socket wrapping a *net.TCPConn. It has no next layer:
// TCP is the terminal physical layer of the stack.
type Socket struct {
	mu     sync.Mutex
	conn   *net.TCPConn
	local  layer.Endpoint
	remote layer.Endpoint
	dialer net.Dialer
}

// New returns an unopened tcp.Socket.
func New() *Socket {
	return &Socket{
		local:  layer.ZeroEndpoint(),
		remote: layer.ZeroEndpoint(),
	}
}

// NewFromConn wraps an already-connected *net.TCPConn, as produced by
// Acceptor.Accept.
func NewFromConn(c *net.TCPConn, local, remote layer.Endpoint) *Socket {
	return &Socket{conn: c, local: local, remote: remote}
}

func (s *Socket) Open(context.Context) error {
	return nil
}

func (s *Socket) Bind(_ context.Context, local layer.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := addrOf(local)
	if a == nil {
		return layer.ErrBadAddress.Error(nil)
	}

	s.dialer.LocalAddr = a
	s.local = local
	return nil
}

func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	a := addrOf(remote)
	if a == nil {
		return layer.ErrBadAddress.Error(nil)
	}

	c, err := s.dialer.DialContext(ctx, "tcp", a.String())
	if err != nil {
		return layer.MapNetError(err)
	}

	s.mu.Lock()
	s.conn = c.(*net.TCPConn)
	s.remote = remote
	if s.local == nil || !s.local.IsSet() {
		s.local = layer.NewEndpoint(c.LocalAddr(), nil, true)
	}
	s.mu.Unlock()

	return nil
}

func (s *Socket) Close() error {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	return layer.MapNetError(c.Close())
}

func (s *Socket) Shutdown(how layer.ShutdownMode) error {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()

	if c == nil {
		return layer.ErrNotConnected.Error(nil)
	}

	switch how {
	case layer.ShutdownRead:
		return layer.MapNetError(c.CloseRead())
	case layer.ShutdownWrite:
		return layer.MapNetError(c.CloseWrite())
	default:
		return layer.MapNetError(c.Close())
	}
}

func (s *Socket) Send(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()

	if c == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}

	n, err := layer.RunCancelable(ctx, c, func() (int, error) { return c.Write(p) })
	if err != nil {
		return n, layer.MapNetError(err)
	}
	return n, nil
}

func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()

	if c == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}

	n, err := layer.RunCancelable(ctx, c, func() (int, error) { return c.Read(p) })
	if err != nil {
		return n, layer.MapNetError(err)
	}
	return n, nil
}

func (s *Socket) LocalEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

func (s *Socket) RemoteEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

// Cancel wakes any pending Send/Receive by forcing the deadline into the
// past, then clears it so the socket remains usable afterward.
func (s *Socket) Cancel() {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()

	if c != nil {
		_ = c.SetDeadline(time.Now())
		_ = c.SetDeadline(time.Time{})
	}
}

var _ layer.Socket = (*Socket)(nil)
