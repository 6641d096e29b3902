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
	"crypto/tls"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

// Socket is the thin TLS variant: every operation is delegated straight to
// the TLS engine, serialized through a per-socket layer.Strand so a
// handshake, a read and a write can never run concurrently on the same
// session.
type Socket struct {
	next layer.Socket
	cfg  Config

	strand *layer.Strand

	mu     sync.Mutex
	conn   *socketConn
	tls    *tls.Conn
	local  layer.Endpoint
	remote layer.Endpoint
}

// New wraps next with the mutual-TLS session described by cfg. Use
// NewBuffered instead when cfg.Variant is VariantBuffered.
func New(next layer.Socket, cfg Config) *Socket {
	return &Socket{
		next:   next,
		cfg:    cfg,
		strand: layer.NewStrand(8),
		local:  layer.ZeroEndpoint(),
		remote: layer.ZeroEndpoint(),
	}
}

func (s *Socket) Open(ctx context.Context) error {
	return s.next.Open(ctx)
}

func (s *Socket) Bind(ctx context.Context, local layer.Endpoint) error {
	return s.next.Bind(ctx, local)
}

// Connect dials remote via the next layer then performs the TLS handshake
// on the strand.
func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	conn, tc, err := dialAndHandshake(ctx, s.next, s.cfg, s.strand, remote)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.tls = tc
	s.remote = remote
	s.local = s.next.LocalEndpoint()
	s.mu.Unlock()

	return nil
}

func (s *Socket) Close() error {
	s.strand.Close()
	return s.next.Close()
}

func (s *Socket) Shutdown(how layer.ShutdownMode) error {
	return s.next.Shutdown(how)
}

func (s *Socket) Send(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	tc, conn := s.tls, s.conn
	s.mu.Unlock()

	if tc == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}

	var n int
	var err error
	s.strand.Run(func() {
		conn.setContext(ctx)
		n, err = tc.Write(p)
	})
	if err != nil {
		return n, layer.MapNetError(err)
	}
	return n, nil
}

func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	tc, conn := s.tls, s.conn
	s.mu.Unlock()

	if tc == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}

	var n int
	var err error
	s.strand.Run(func() {
		conn.setContext(ctx)
		n, err = tc.Read(p)
	})
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

func (s *Socket) Cancel() {
	s.next.Cancel()
}

var _ layer.Socket = (*Socket)(nil)
