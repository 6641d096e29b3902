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

package fiber

import (
	"context"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

// Datagram is a datagram-fiber: same (local_port, remote_port) naming as
// Stream, but with no handshake, no credit, and no retransmission.
// Connect/Bind register the pair directly with the Demux; there is no SYN
// round trip to wait for.
type Datagram struct {
	demux *Demux

	mu       sync.Mutex
	local    uint32
	remote   uint32
	registered bool
	queue    [][]byte
	notify   chan struct{}
	closed   bool
	closeErr error
}

// NewDatagram returns an unbound datagram fiber over d.
func NewDatagram(d *Demux) *Datagram {
	return &Datagram{demux: d, notify: make(chan struct{}, 1)}
}

func (g *Datagram) Open(ctx context.Context) error { return nil }

func (g *Datagram) Bind(ctx context.Context, local layer.Endpoint) error {
	port, ok := local.Context().(uint32)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}
	g.mu.Lock()
	g.local = port
	g.mu.Unlock()
	return g.maybeRegister()
}

// Connect allocates a local port if Bind was not called first, and
// registers the (local, remote) pair with the Demux.
func (g *Datagram) Connect(ctx context.Context, remote layer.Endpoint) error {
	port, ok := remote.Context().(uint32)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}

	g.mu.Lock()
	local := g.local
	g.mu.Unlock()

	if local == 0 {
		p, err := g.demux.allocPort()
		if err != nil {
			return err
		}
		local = p
	}

	g.mu.Lock()
	g.local = local
	g.remote = port
	g.mu.Unlock()
	return g.maybeRegister()
}

func (g *Datagram) maybeRegister() error {
	g.mu.Lock()
	local, remote, already := g.local, g.remote, g.registered
	ready := local != 0 && remote != 0
	if ready && !already {
		g.registered = true
	}
	g.mu.Unlock()

	if ready && !already {
		g.demux.register(fiberKey{local: local, remote: remote}, g)
	}
	return nil
}

func (g *Datagram) deliver(f frame) {
	switch f.Type {
	case frameDgrData:
		g.mu.Lock()
		if len(g.queue) >= dgrQueueBound {
			g.queue = g.queue[1:]
		}
		g.queue = append(g.queue, f.Payload)
		g.mu.Unlock()
		g.signal()
	case frameRST:
		g.fail(layer.ErrConnectionAborted.Error(nil))
	}
}

func (g *Datagram) fail(err error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.closeErr = err
	g.mu.Unlock()
	g.signal()
}

func (g *Datagram) signal() {
	select {
	case g.notify <- struct{}{}:
	default:
	}
}

// Send writes p as one DGR_DATA frame; p must fit within this layer's MTU.
func (g *Datagram) Send(ctx context.Context, p []byte) (int, error) {
	if len(p) > fiberMTU {
		return 0, layer.ErrMessageSize.Error(nil)
	}

	g.mu.Lock()
	local, remote := g.local, g.remote
	g.mu.Unlock()

	if err := g.demux.writeFrame(ctx, frame{Type: frameDgrData, Local: local, Remote: remote, Payload: p}); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Receive returns exactly one whole buffered datagram per call. A buffer
// smaller than the payload fails with message_size and the datagram is
// dropped.
func (g *Datagram) Receive(ctx context.Context, p []byte) (int, error) {
	for {
		g.mu.Lock()
		if len(g.queue) > 0 {
			d := g.queue[0]
			g.queue = g.queue[1:]
			g.mu.Unlock()
			if len(d) > len(p) {
				return 0, layer.ErrMessageSize.Error(nil)
			}
			return copy(p, d), nil
		}
		if g.closed {
			err := g.closeErr
			g.mu.Unlock()
			return 0, err
		}
		g.mu.Unlock()

		select {
		case <-g.notify:
		case <-ctx.Done():
			return 0, layer.ErrOperationAborted.Error(ctx.Err())
		}
	}
}

func (g *Datagram) Close() error {
	g.mu.Lock()
	local, remote := g.local, g.remote
	sendRST := g.registered && !g.closed
	g.mu.Unlock()
	if sendRST {
		_ = g.demux.writeFrame(context.Background(), frame{Type: frameRST, Local: local, Remote: remote})
	}
	g.demux.unregister(fiberKey{local: local, remote: remote})
	g.fail(layer.ErrOperationAborted.Error(nil))
	return nil
}

func (g *Datagram) Shutdown(how layer.ShutdownMode) error { return nil }

func (g *Datagram) LocalEndpoint() layer.Endpoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return layer.NewEndpoint(g.local, nil, g.local != 0)
}

func (g *Datagram) RemoteEndpoint() layer.Endpoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	return layer.NewEndpoint(g.remote, nil, g.remote != 0)
}

func (g *Datagram) Cancel() {
	g.fail(layer.ErrOperationAborted.Error(nil))
}

var _ layer.Socket = (*Datagram)(nil)
