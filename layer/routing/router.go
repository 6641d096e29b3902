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
	"github.com/nabbar/sockfwd/registry"
)

// Router is the named, process-wide routing table for this layer. addrs
// resolves a bind-time network_address to the network_id it is
// reachable through; links resolves a destination network_id to the
// next-hop socket a relay forwards toward. Both tables are
// registry.Table-backed, so each is independently mutex-guarded; nothing
// here takes a Router-wide lock across an I/O completion — locks are held
// only across O(1) bookkeeping.
type Router struct {
	name  string
	addrs *registry.Table[uint32, uint16]
	links *registry.Table[uint16, layer.Socket]
}

func newRouter(name string) *Router {
	return &Router{
		name:  name,
		addrs: registry.New[uint32, uint16](),
		links: registry.New[uint16, layer.Socket](),
	}
}

// Name returns the router's identifier, as configured by the router
// parameter-stack key.
func (r *Router) Name() string {
	return r.name
}

// bind registers addr as reachable via id and id's own socket as a relay
// link, called once by routing.Socket.Bind.
func (r *Router) bind(addr uint32, id uint16, sock layer.Socket) {
	r.addrs.Add(addr, id)
	r.links.Add(id, sock)
}

func (r *Router) unbind(addr uint32, id uint16) {
	r.addrs.Del(addr)
	r.links.Del(id)
}

// ResolveAddress returns the network_id addr is currently reachable
// through, and whether addr is known to this router at all.
func (r *Router) ResolveAddress(addr uint32) (uint16, bool) {
	return r.addrs.Get(addr)
}

// AddRoute registers via as the next-hop socket a relay forwards toward
// when the destination is destID, for an id this router does not itself
// terminate. Used to wire static relay routes between two links.
func (r *Router) AddRoute(destID uint16, via layer.Socket) {
	r.links.Add(destID, via)
}

// Forward resolves destID to its registered link and sends p over it: the
// send path that resolves each outbound datagram's destination
// network_id to a next-hop interface via its table.
func (r *Router) Forward(ctx context.Context, destID uint16, p []byte) (int, error) {
	sock, ok := r.links.Get(destID)
	if !ok {
		return 0, layer.ErrNoLink.Error(nil)
	}
	return sock.Send(ctx, p)
}

// Registry is the process-wide directory of named Router values: callers
// construct one Registry and thread it to every routing.Socket, rather
// than reaching for a package-level variable.
type Registry struct {
	mu sync.Mutex
	rt *registry.Table[string, *Router]
}

// NewRegistry returns an empty router directory.
func NewRegistry() *Registry {
	return &Registry{rt: registry.New[string, *Router]()}
}

// GetOrCreate returns the Router named name, creating it if this is the
// first socket to reference it.
func (d *Registry) GetOrCreate(name string) *Router {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := d.rt.Get(name); ok {
		return r
	}
	r := newRouter(name)
	d.rt.Add(name, r)
	return r
}
