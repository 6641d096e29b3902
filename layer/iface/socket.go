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

package iface

import (
	"context"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

// Socket names a next-layer transport by id in mgr and shares it across
// every iface.Socket constructed with the same id: the first caller to
// Open or Connect actually does so against the next layer (Bind acts on a
// transport a prior Open or Connect already acquired), later callers
// just acquire a reference to the already-live transport, and the
// transport is only really closed once every referencing Socket has closed
// its own handle.
type Socket struct {
	mgr  Manager
	id   string
	dial func() layer.Socket

	mu     sync.Mutex
	entry  *shared
	local  layer.Endpoint
	remote layer.Endpoint
}

// New returns a Socket sharing mgr's entry for id, building a fresh
// next-layer socket via dial the first time this id is actually needed.
func New(mgr Manager, id string, dial func() layer.Socket) *Socket {
	return &Socket{mgr: mgr, id: id, dial: dial, local: layer.ZeroEndpoint(), remote: layer.ZeroEndpoint()}
}

// acquire returns the shared entry for s.id, creating and opening it via
// open if it does not exist yet, and increments its refcount either way.
func (s *Socket) acquire(open func() (layer.Socket, error)) (*shared, error) {
	for {
		if sh, ok := s.mgr.Get(s.id); ok {
			sh.mu.Lock()
			if sh.refs == 0 {
				// lost the race with a concurrent last Close; retry.
				sh.mu.Unlock()
				continue
			}
			sh.refs++
			sh.mu.Unlock()
			return sh, nil
		}

		sock, err := open()
		if err != nil {
			return nil, err
		}

		sh := &shared{sock: sock, refs: 1}
		s.mgr.Add(s.id, sh)
		return sh, nil
	}
}

func (s *Socket) release() error {
	s.mu.Lock()
	sh := s.entry
	s.entry = nil
	s.mu.Unlock()

	if sh == nil {
		return nil
	}

	sh.mu.Lock()
	sh.refs--
	last := sh.refs <= 0
	sh.mu.Unlock()

	if !last {
		return nil
	}

	s.mgr.Del(s.id)
	return sh.sock.Close()
}

func (s *Socket) Open(ctx context.Context) error {
	sh, err := s.acquire(func() (layer.Socket, error) {
		sock := s.dial()
		if err := sock.Open(ctx); err != nil {
			return nil, err
		}
		return sock, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entry = sh
	s.mu.Unlock()
	return nil
}

func (s *Socket) Bind(ctx context.Context, local layer.Endpoint) error {
	s.mu.Lock()
	sh := s.entry
	s.mu.Unlock()
	if sh == nil {
		return layer.ErrNotConnected.Error(nil)
	}

	if err := sh.sock.Bind(ctx, local.Next()); err != nil {
		return err
	}

	s.mu.Lock()
	s.local = layer.NewEndpoint(s.id, sh.sock.LocalEndpoint(), true)
	s.mu.Unlock()
	return nil
}

// Connect resolves or creates this id's shared transport and connects it to
// remote.Next() the first time it is needed; a later sharer calling Connect
// with a different remote still reuses the already-connected transport,
// since the interface, not the peer, is the shared unit.
func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	if remote == nil || !remote.IsSet() {
		return layer.ErrBadAddress.Error(nil)
	}

	sh, err := s.acquire(func() (layer.Socket, error) {
		sock := s.dial()
		if err := sock.Connect(ctx, remote.Next()); err != nil {
			return nil, err
		}
		return sock, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entry = sh
	s.remote = remote
	s.local = layer.NewEndpoint(s.id, sh.sock.LocalEndpoint(), true)
	s.mu.Unlock()
	return nil
}

// Close releases this Socket's reference to the shared transport, closing
// it for real only once no other iface.Socket still references s.id.
func (s *Socket) Close() error {
	return s.release()
}

func (s *Socket) Shutdown(how layer.ShutdownMode) error {
	s.mu.Lock()
	sh := s.entry
	s.mu.Unlock()
	if sh == nil {
		return layer.ErrNotConnected.Error(nil)
	}
	return sh.sock.Shutdown(how)
}

func (s *Socket) Send(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	sh := s.entry
	s.mu.Unlock()
	if sh == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}
	return sh.sock.Send(ctx, p)
}

func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	sh := s.entry
	s.mu.Unlock()
	if sh == nil {
		return 0, layer.ErrNotConnected.Error(nil)
	}
	return sh.sock.Receive(ctx, p)
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

// Cancel posts ErrOperationAborted on the shared transport. Because the
// transport is shared, this also aborts any other Socket's in-flight
// Send/Receive against the same id; callers that need per-sharer
// cancellation should cancel their own ctx instead of calling this.
func (s *Socket) Cancel() {
	s.mu.Lock()
	sh := s.entry
	s.mu.Unlock()
	if sh != nil {
		sh.sock.Cancel()
	}
}

var _ layer.Socket = (*Socket)(nil)
