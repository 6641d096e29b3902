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

package network

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

// Socket encapsulates every outgoing datagram with a 4-byte
// (source_id, dest_id) header built from the network_id this socket is
// bound/connected to, and filters incoming datagrams to ones addressed to
// its own bound network_id, dropping anything else.
type Socket struct {
	next layer.Socket

	mu       sync.Mutex
	localID  uint16
	remoteID uint16
	local    layer.Endpoint
	remote   layer.Endpoint
}

// New wraps next with network_id framing.
func New(next layer.Socket) *Socket {
	return &Socket{next: next, local: layer.ZeroEndpoint(), remote: layer.ZeroEndpoint()}
}

func (s *Socket) Open(ctx context.Context) error {
	return s.next.Open(ctx)
}

func (s *Socket) Bind(ctx context.Context, local layer.Endpoint) error {
	id, err := idOf(local)
	if err != nil {
		return err
	}
	if err := s.next.Bind(ctx, local.Next()); err != nil {
		return err
	}

	s.mu.Lock()
	s.localID = id
	s.local = local
	s.mu.Unlock()
	return nil
}

// Connect sets the default peer's network_id and connects the underlying
// datagram transport; every subsequent Send addresses this id until
// Connect is called again.
func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	id, err := idOf(remote)
	if err != nil {
		return err
	}
	if err := s.next.Connect(ctx, remote.Next()); err != nil {
		return err
	}

	s.mu.Lock()
	s.remoteID = id
	s.remote = remote
	s.local = layer.NewEndpoint(s.localID, s.next.LocalEndpoint(), true)
	s.mu.Unlock()
	return nil
}

func (s *Socket) Close() error {
	return s.next.Close()
}

func (s *Socket) Shutdown(how layer.ShutdownMode) error {
	return s.next.Shutdown(how)
}

// Send prepends the (source_id, dest_id) header and writes the result as a
// single datagram; p must leave room for headerSize bytes within the next
// layer's MTU, which Protocol.MTU already accounts for.
func (s *Socket) Send(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	src, dst := s.localID, s.remoteID
	s.mu.Unlock()

	buf := make([]byte, headerSize+len(p))
	binary.LittleEndian.PutUint16(buf[0:2], src)
	binary.LittleEndian.PutUint16(buf[2:4], dst)
	copy(buf[headerSize:], p)

	if _, err := s.next.Send(ctx, buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Receive reads datagrams from the next layer until one addressed to this
// socket's bound network_id arrives, silently dropping the rest.
func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	buf := make([]byte, headerSize+len(p))

	for {
		n, err := s.next.Receive(ctx, buf)
		if err != nil {
			return 0, err
		}
		if n < headerSize {
			continue
		}

		dst := binary.LittleEndian.Uint16(buf[2:4])

		s.mu.Lock()
		localID := s.localID
		s.mu.Unlock()

		if dst != localID {
			continue
		}

		payload := buf[headerSize:n]
		if len(payload) > len(p) {
			return 0, layer.ErrMessageSize.Error(nil)
		}
		return copy(p, payload), nil
	}
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
