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

package routing

import (
	"context"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

// Socket binds a network_address within a named Router and is, once
// bound, a plain pass-through datagram socket over the network layer
// underneath: its only job beyond that pass-through is registering (and,
// on Close, unregistering) this address/link pair with the Router so a
// relay elsewhere can resolve and forward toward it.
type Socket struct {
	next layer.Socket

	mu     sync.Mutex
	addr   uint32
	id     uint16
	router *Router
	bound  bool
	local  layer.Endpoint
	remote layer.Endpoint
}

// New wraps next with address registration against the named Router.
func New(next layer.Socket) *Socket {
	return &Socket{next: next, local: layer.ZeroEndpoint(), remote: layer.ZeroEndpoint()}
}

func (s *Socket) Open(ctx context.Context) error {
	return s.next.Open(ctx)
}

// Bind binds the underlying network_id link via next, then registers the
// resolved network_address as reachable through that id on the named
// Router.
func (s *Socket) Bind(ctx context.Context, local layer.Endpoint) error {
	cfg, err := configOf(local)
	if err != nil {
		return err
	}

	if err := s.next.Bind(ctx, local.Next()); err != nil {
		return err
	}

	id, ok := s.next.LocalEndpoint().Context().(uint16)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}

	cfg.Router.bind(cfg.Addr, id, s.next)

	s.mu.Lock()
	s.addr, s.id, s.router, s.bound = cfg.Addr, id, cfg.Router, true
	s.local = local
	s.mu.Unlock()
	return nil
}

func (s *Socket) Connect(ctx context.Context, remote layer.Endpoint) error {
	cfg, err := configOf(remote)
	if err != nil {
		return err
	}
	if err := s.next.Connect(ctx, remote.Next()); err != nil {
		return err
	}

	s.mu.Lock()
	s.remote = remote
	s.local = layer.NewEndpoint(config{Addr: cfg.Addr, Router: cfg.Router}, s.next.LocalEndpoint(), true)
	s.mu.Unlock()
	return nil
}

// Close unregisters this socket's address from the Router, if bound, then
// closes the underlying link.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.bound {
		s.router.unbind(s.addr, s.id)
		s.bound = false
	}
	s.mu.Unlock()
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

func configOf(ep layer.Endpoint) (config, error) {
	if ep == nil || !ep.IsSet() {
		return config{}, layer.ErrBadAddress.Error(nil)
	}
	cfg, ok := ep.Context().(config)
	if !ok {
		return config{}, layer.ErrBadAddress.Error(nil)
	}
	return cfg, nil
}

var _ layer.Socket = (*Socket)(nil)
