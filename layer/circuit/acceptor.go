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

	"github.com/nabbar/sockfwd/forwarder"
	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/logging"
)

// Acceptor is a layer.Acceptor accepting circuit handshakes on top of a
// next-layer stream acceptor. An id can be bound to RoleForward,
// RoleTerminate, or both; the acceptor
// consults this table rather than trusting the InitConnection's own
// forward flag in isolation, so a misconfigured or hostile peer cannot ask
// a terminating-only hop to relay traffic it was never authorized to
// relay.
type Acceptor struct {
	next     layer.Acceptor
	resolver layer.Resolver
	dial     func() layer.Socket
	log      logging.Logger

	mu    sync.Mutex
	roles map[string]map[Role]bool
}

// NewAcceptor wraps next with the circuit handshake. resolver resolves a
// HopSpec's Params (the layers below circuit) into an Endpoint when this
// acceptor must forward to the next hop; dial builds a fresh, unconnected
// socket stack for that layer (e.g. a new tls.Socket over a new tcp.Socket)
// each time a forward is needed, since each hop-to-hop link needs its own
// socket instance.
func NewAcceptor(next layer.Acceptor, resolver layer.Resolver, dial func() layer.Socket, log logging.Logger) *Acceptor {
	if log == nil {
		log = logging.Discard()
	}
	return &Acceptor{
		next:     next,
		resolver: resolver,
		dial:     dial,
		log:      log.WithField("layer", "circuit"),
		roles:    make(map[string]map[Role]bool),
	}
}

// BindRole registers id as permitted to act in role. Per the split-acceptor
// note, calling this twice with different roles for the same id is valid.
func (a *Acceptor) BindRole(id string, role Role) {
	a.mu.Lock()
	defer a.mu.Unlock()

	set, ok := a.roles[id]
	if !ok {
		set = make(map[Role]bool)
		a.roles[id] = set
	}
	set[role] = true
}

func (a *Acceptor) hasRole(id string, role Role) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roles[id][role]
}

func (a *Acceptor) Open(ctx context.Context) error {
	return a.next.Open(ctx)
}

func (a *Acceptor) Bind(ctx context.Context, local layer.Endpoint) error {
	return a.next.Bind(ctx, local)
}

func (a *Acceptor) Listen(backlog int) error {
	return a.next.Listen(backlog)
}

func (a *Acceptor) Close() error {
	return a.next.Close()
}

// Accept blocks until a terminating connection is available: forwarding
// handshakes are fully handled internally (splicing to the next hop) and
// never surface to the caller. Only a forward=false handshake hands the
// accepted fiberized stream up to the application.
func (a *Acceptor) Accept(ctx context.Context) (layer.Socket, error) {
	for {
		peer, err := a.next.Accept(ctx)
		if err != nil {
			return nil, err
		}

		var init initConnection
		if err := readFrame(ctx, peer, &init); err != nil {
			_ = peer.Close()
			continue
		}

		if init.Forward == 1 {
			if !a.hasRole(init.ID, RoleForward) {
				_ = writeFrame(ctx, peer, &validateConnection{Status: 1})
				_ = peer.Close()
				continue
			}
			if err := a.forward(ctx, peer, &init); err != nil {
				a.log.WithField("id", init.ID).Warn("circuit forward failed: " + err.Error())
			}
			continue
		}

		if !a.hasRole(init.ID, RoleTerminate) {
			_ = writeFrame(ctx, peer, &validateConnection{Status: 1})
			_ = peer.Close()
			continue
		}

		if err := writeFrame(ctx, peer, &validateConnection{Status: 0}); err != nil {
			_ = peer.Close()
			continue
		}

		local := layer.NewEndpoint(init.ID, peer.LocalEndpoint(), true)
		remote := layer.NewEndpoint(init.ID, peer.RemoteEndpoint(), true)
		return &Socket{next: peer, cfg: Config{ID: init.ID}, local: local, remote: remote}, nil
	}
}

// forward handles a forward=true InitConnection: dial the next hop in the
// chain, reply ValidateConnection=0 upstream, then splice the two streams
// via the session forwarder so every byte after the handshake flows
// straight through without this process decoding it.
func (a *Acceptor) forward(ctx context.Context, peer layer.Socket, init *initConnection) error {
	hops, err := DeserializeHops(init.RemainingHops)
	if err != nil || len(hops) == 0 {
		_ = writeFrame(ctx, peer, &validateConnection{Status: 1})
		_ = peer.Close()
		if err != nil {
			return err
		}
		return layer.ErrProtocolError.Error(nil)
	}

	nextHop := hops[0]
	ep, _, err := a.resolver.Resolve(nextHop.Params)
	if err != nil {
		_ = writeFrame(ctx, peer, &validateConnection{Status: 1})
		_ = peer.Close()
		return err
	}

	outbound := a.dial()
	if err := outbound.Connect(ctx, ep); err != nil {
		_ = writeFrame(ctx, peer, &validateConnection{Status: 1})
		_ = peer.Close()
		return err
	}

	if err := writeFrame(ctx, peer, &validateConnection{Status: 0}); err != nil {
		_ = outbound.Close()
		_ = peer.Close()
		return err
	}

	splice := forwarder.New(peer, outbound, a.log)
	return splice.Start(ctx)
}

var _ layer.Acceptor = (*Acceptor)(nil)
