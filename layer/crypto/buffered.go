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
	"bytes"
	"context"
	"crypto/tls"
	"sync"

	"github.com/nabbar/sockfwd/ioutils/bufferReadCloser"
	"github.com/nabbar/sockfwd/layer"
)

// BufferedSocket is the "pull-loop" TLS variant: a dedicated puller
// goroutine keeps a private buffer topped up from the TLS engine so
// Receive can return already-pulled bytes immediately instead of waiting
// on a single TLS record.
type BufferedSocket struct {
	next layer.Socket
	cfg  Config

	strand *layer.Strand

	mu     sync.Mutex
	cond   *sync.Cond
	buf    bufferReadCloser.Buffer
	bufLen int
	paused bool
	closed bool
	status error // terminal status once the puller hits an error

	notify chan struct{}

	conn   *socketConn
	tls    *tls.Conn
	local  layer.Endpoint
	remote layer.Endpoint
}

// NewBuffered wraps next with the buffered TLS session described by cfg.
func NewBuffered(next layer.Socket, cfg Config) *BufferedSocket {
	s := &BufferedSocket{
		next:   next,
		cfg:    cfg,
		strand: layer.NewStrand(8),
		buf:    bufferReadCloser.NewBuffer(bytes.NewBuffer(nil), nil),
		notify: make(chan struct{}, 1),
		local:  layer.ZeroEndpoint(),
		remote: layer.ZeroEndpoint(),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *BufferedSocket) Open(ctx context.Context) error {
	return s.next.Open(ctx)
}

func (s *BufferedSocket) Bind(ctx context.Context, local layer.Endpoint) error {
	return s.next.Bind(ctx, local)
}

func (s *BufferedSocket) Connect(ctx context.Context, remote layer.Endpoint) error {
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

	go s.pull()

	return nil
}

// pull repeatedly reads from the TLS engine into the private buffer,
// pausing once pullHighWater is reached and resuming once a Receive call
// drains it back below pullLowWater.
func (s *BufferedSocket) pull() {
	chunk := make([]byte, pullChunk)

	for {
		s.mu.Lock()
		for s.paused && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		tc := s.tls
		s.mu.Unlock()

		n, err := tc.Read(chunk)

		s.mu.Lock()
		if n > 0 {
			w, _ := s.buf.Write(chunk[:n])
			s.bufLen += w
			if s.bufLen >= pullHighWater {
				s.paused = true
			}
		}
		if err != nil {
			s.status = layer.MapNetError(err)
		}
		s.mu.Unlock()
		s.signal()

		if err != nil {
			return
		}
	}
}

func (s *BufferedSocket) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *BufferedSocket) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.signal()

	s.strand.Close()
	return s.next.Close()
}

func (s *BufferedSocket) Shutdown(how layer.ShutdownMode) error {
	return s.next.Shutdown(how)
}

func (s *BufferedSocket) Send(ctx context.Context, p []byte) (int, error) {
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

// Receive returns bytes already pulled into the private buffer, blocking
// until data, a terminal status, or ctx cancellation arrives.
func (s *BufferedSocket) Receive(ctx context.Context, p []byte) (int, error) {
	for {
		s.mu.Lock()
		if n, _ := s.buf.Read(p); n > 0 {
			s.bufLen -= n
			if s.paused && s.bufLen < pullLowWater {
				s.paused = false
				s.cond.Broadcast()
			}
			s.mu.Unlock()
			return n, nil
		}
		if s.closed {
			s.mu.Unlock()
			return 0, ErrBufferClosed.Error(nil)
		}
		if s.status != nil {
			err := s.status
			s.mu.Unlock()
			return 0, err
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-ctx.Done():
			return 0, layer.ErrOperationAborted.Error(ctx.Err())
		}
	}
}

func (s *BufferedSocket) LocalEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

func (s *BufferedSocket) RemoteEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

func (s *BufferedSocket) Cancel() {
	s.next.Cancel()
}

var _ layer.Socket = (*BufferedSocket)(nil)
