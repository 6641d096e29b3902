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

// Acceptor is bound to one local_port with a wildcard remote; it produces
// new Stream fibers on incoming SYN.
type Acceptor struct {
	demux *Demux

	mu      sync.Mutex
	local   uint32
	backlog int
	queue   []frame
	seen    map[uint32]bool
	accept  chan struct{}
	closed  bool
	closeErr error
}

// NewAcceptor returns an unbound acceptor-fiber over d.
func NewAcceptor(d *Demux) *Acceptor {
	return &Acceptor{
		demux:   d,
		backlog: synBacklog,
		seen:    make(map[uint32]bool),
		accept:  make(chan struct{}, 1),
	}
}

func (a *Acceptor) Open(ctx context.Context) error { return nil }

func (a *Acceptor) Bind(ctx context.Context, local layer.Endpoint) error {
	port, ok := local.Context().(uint32)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}
	if err := a.demux.registerAcceptor(port, a); err != nil {
		return err
	}
	a.mu.Lock()
	a.local = port
	a.mu.Unlock()
	return nil
}

// Listen clamps backlog to the fixed 128-SYN bound.
func (a *Acceptor) Listen(backlog int) error {
	if backlog <= 0 || backlog > synBacklog {
		backlog = synBacklog
	}
	a.mu.Lock()
	a.backlog = backlog
	a.mu.Unlock()
	return nil
}

func (a *Acceptor) Close() error {
	a.mu.Lock()
	local := a.local
	a.closed = true
	a.closeErr = layer.ErrOperationAborted.Error(nil)
	a.mu.Unlock()

	a.demux.unregisterAcceptor(local)
	a.wake()
	return nil
}

func (a *Acceptor) fail(err error) {
	a.mu.Lock()
	a.closed = true
	a.closeErr = err
	a.mu.Unlock()
	a.wake()
}

// enqueueSyn is called by the Demux's reader task when a SYN targets this
// acceptor's local port. A duplicate SYN from a port already queued or
// already assigned, or a SYN arriving past the backlog bound, is answered
// with RST instead of being queued.
func (a *Acceptor) enqueueSyn(f frame) {
	a.mu.Lock()
	if a.closed || a.seen[f.Local] || len(a.queue) >= a.backlog {
		a.mu.Unlock()
		a.demux.sendRST(f.Remote, f.Local)
		return
	}
	a.seen[f.Local] = true
	a.queue = append(a.queue, f)
	a.mu.Unlock()
	a.wake()
}

func (a *Acceptor) wake() {
	select {
	case a.accept <- struct{}{}:
	default:
	}
}

// Accept pops the oldest queued SYN, binds a new Stream to
// (listening_port, sender_port), and emits SYN_ACK.
func (a *Acceptor) Accept(ctx context.Context) (layer.Socket, error) {
	for {
		a.mu.Lock()
		if len(a.queue) > 0 {
			f := a.queue[0]
			a.queue = a.queue[1:]
			delete(a.seen, f.Local)
			local := a.local
			a.mu.Unlock()

			s := newStream(a.demux)
			s.mu.Lock()
			s.local = local
			s.remote = f.Local
			s.state = stateOpen
			s.mu.Unlock()

			a.demux.register(fiberKey{local: local, remote: f.Local}, s)
			if err := a.demux.writeFrame(ctx, frame{Type: frameSynAck, Local: local, Remote: f.Local}); err != nil {
				a.demux.unregister(fiberKey{local: local, remote: f.Local})
				return nil, err
			}
			return s, nil
		}
		if a.closed {
			err := a.closeErr
			a.mu.Unlock()
			return nil, err
		}
		a.mu.Unlock()

		select {
		case <-a.accept:
		case <-ctx.Done():
			return nil, layer.ErrOperationAborted.Error(ctx.Err())
		}
	}
}

var _ layer.Acceptor = (*Acceptor)(nil)
