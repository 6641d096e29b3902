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

package udp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nabbar/sockfwd/layer"
)

// Socket is a layer.Socket wrapping a *net.UDPConn. Bind opens a listening
// datagram socket; Connect additionally fixes a peer address so that Send
// and Receive need not carry one per call, matching layer.Socket's
// connection-oriented shape even though UDP itself is connectionless.
type Socket struct {
	mu     sync.Mutex
	conn   *net.UDPConn
	local  layer.Endpoint
	remote layer.Endpoint
}

func New() *Socket {
	return &Socket{local: layer.ZeroEndpoint(), remote: layer.ZeroEndpoint()}
}

func (s *Socket) Open(context.Context) error {
	return nil
}

func (s *Socket) Bind(_ context.Context, local layer.Endpoint) error {
	addr := addrOf(local)
	if addr == nil {
		return layer.ErrBadAddress.Error(nil)
	}

	c, err := net.ListenUDP("udp", addr)
	if err != nil {
		return layer.MapNetError(err)
	}

	s.mu.Lock()
	s.conn = c
	s.local = layer.NewEndpoint(c.LocalAddr(), nil, true)
	s.mu.Unlock()

	return nil
}

func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	addr := addrOf(remote)
	if addr == nil {
		return layer.ErrBadAddress.Error(nil)
	}

	s.mu.Lock()
	existing := s.conn
	local := addrOf(s.local)
	s.mu.Unlock()

	if existing != nil {
		_ = existing.Close()
	}

	c, err := net.DialUDP("udp", local, addr)
	if err != nil {
		return layer.MapNetError(err)
	}

	s.mu.Lock()
	s.conn = c
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

// Shutdown closes the socket outright: UDP has no half-close.
func (s *Socket) Shutdown(layer.ShutdownMode) error {
	return s.Close()
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

// Receive reads one datagram into p. A datagram larger than len(p) fails
// with ErrMessageSize without leaving a partial read in p, matching the
// fiber layer's own datagram read semantics for symmetry.
func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	c := s.conn
	s.mu.Unlock()

	if c == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}

	buf := make([]byte, len(p)+1)
	n, err := layer.RunCancelable(ctx, c, func() (int, error) { return c.Read(buf) })
	if err != nil {
		return 0, layer.MapNetError(err)
	}
	if n > len(p) {
		return 0, layer.ErrMessageSize.Error(nil)
	}

	copy(p, buf[:n])
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
