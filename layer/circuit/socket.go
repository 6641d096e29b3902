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

package circuit

import (
	"context"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

// Socket wraps a next-layer stream Socket and walks the hop chain
// described by cfg the first time Connect is called.
// Only the first hop is physically dialed by next; every following hop is
// reached by exchanging more InitConnection/ValidateConnection messages on
// that same stream, since an intermediate hop splices itself into a plain
// forwarder once it has validated the client.
type Socket struct {
	next layer.Socket
	cfg  Config

	mu     sync.Mutex
	local  layer.Endpoint
	remote layer.Endpoint
}

// New wraps next with the circuit hop-walk described by cfg.
func New(next layer.Socket, cfg Config) *Socket {
	return &Socket{next: next, cfg: cfg, local: layer.ZeroEndpoint(), remote: layer.ZeroEndpoint()}
}

func (s *Socket) Open(ctx context.Context) error {
	return s.next.Open(ctx)
}

func (s *Socket) Bind(ctx context.Context, local layer.Endpoint) error {
	return s.next.Bind(ctx, local)
}

// Connect dials the first hop via next, then walks the remaining chain by
// sending an InitConnection for each hop in turn and reading back its
// ValidateConnection.
func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	if err := s.next.Connect(ctx, remote.Next()); err != nil {
		return err
	}

	id := s.cfg.ID
	hops := s.cfg.Hops

	for {
		forward := uint8(0)
		remaining := ""
		if len(hops) > 0 {
			forward = 1
			var err error
			remaining, err = SerializeHops(hops)
			if err != nil {
				_ = s.next.Close()
				return err
			}
		}

		if err := writeFrame(ctx, s.next, &initConnection{ID: id, Forward: forward, RemainingHops: remaining}); err != nil {
			_ = s.next.Close()
			return err
		}

		var reply validateConnection
		if err := readFrame(ctx, s.next, &reply); err != nil {
			_ = s.next.Close()
			return err
		}
		if reply.Status != 0 {
			_ = s.next.Close()
			return layer.ErrConnectionRefused.Error(nil)
		}

		if len(hops) == 0 {
			break
		}
		id = hops[0].ID
		hops = hops[1:]
	}

	s.mu.Lock()
	s.remote = remote
	s.local = s.next.LocalEndpoint()
	s.mu.Unlock()

	return nil
}

func (s *Socket) Close() error {
	return s.next.Close()
}

func (s *Socket) Shutdown(how layer.ShutdownMode) error {
	return s.next.Shutdown(how)
}

func (s *Socket) Send(ctx context.Context, p []byte) (int, error) {
	return s.next.Send(ctx, p)
}

func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	return s.next.Receive(ctx, p)
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
