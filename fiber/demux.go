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
	"github.com/nabbar/sockfwd/logging"
)

// fiberKey identifies an established fiber by (local_port, remote_port)
// from the owning side's point of view.
type fiberKey struct {
	local  uint32
	remote uint32
}

// target is whatever a Demux can dispatch a decoded frame to: an
// established Stream/Datagram fiber, or a Stream pending SYN-ACK.
type target interface {
	deliver(f frame)
	fail(err error)
}

// Demux owns one underlying reliable byte stream and the single reader
// task that demultiplexes it into many fibers. Every outbound frame is
// serialized through one layer.Strand so that frames from one fiber stay
// in enqueue order on the wire and control frames never overtake the data
// they refer to.
type Demux struct {
	next   layer.Socket
	writer *layer.Strand
	log    logging.Logger

	mu        sync.Mutex
	fibers    map[fiberKey]target
	pending   map[uint32]target // by own local port, while a connect's SYN-ACK is outstanding
	acceptors map[uint32]*Acceptor
	nextPort  uint32

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// NewDemux starts a Demux's reader goroutine over next.
func NewDemux(next layer.Socket, log logging.Logger) *Demux {
	if log == nil {
		log = logging.Discard()
	}
	d := &Demux{
		next:      next,
		writer:    layer.NewStrand(64),
		log:       log.WithField("layer", "fiber"),
		fibers:    make(map[fiberKey]target),
		pending:   make(map[uint32]target),
		acceptors: make(map[uint32]*Acceptor),
		nextPort:  1,
		closed:    make(chan struct{}),
	}
	go d.readLoop()
	return d
}

func (d *Demux) readLoop() {
	for {
		f, err := readFrame(context.Background(), d.next)
		if err != nil {
			d.fail(err)
			return
		}
		d.dispatch(f)
	}
}

func (d *Demux) dispatch(f frame) {
	if f.Type == frameSYN {
		d.mu.Lock()
		acc, ok := d.acceptors[f.Remote]
		d.mu.Unlock()
		if ok {
			acc.enqueueSyn(f)
		} else {
			d.sendRST(f.Remote, f.Local)
		}
		return
	}

	key := fiberKey{local: f.Remote, remote: f.Local}

	d.mu.Lock()
	t, ok := d.fibers[key]
	if !ok && (f.Type == frameSynAck || f.Type == frameRST) {
		if pt, pok := d.pending[f.Remote]; pok {
			t, ok = pt, true
		}
	}
	d.mu.Unlock()

	if !ok {
		if f.Type != frameRST {
			d.sendRST(f.Remote, f.Local)
		}
		return
	}
	t.deliver(f)
}

func (d *Demux) fail(err error) {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closeErr = err
		fibers := d.fibers
		pending := d.pending
		acceptors := d.acceptors
		d.fibers = make(map[fiberKey]target)
		d.pending = make(map[uint32]target)
		d.acceptors = make(map[uint32]*Acceptor)
		d.mu.Unlock()
		close(d.closed)

		for _, t := range fibers {
			t.fail(err)
		}
		for _, t := range pending {
			t.fail(err)
		}
		for _, a := range acceptors {
			a.fail(err)
		}
	})
}

// writeFrame serializes one frame onto the demux's single outbound writer
// strand.
func (d *Demux) writeFrame(ctx context.Context, f frame) error {
	var err error
	d.writer.Run(func() {
		err = sendFull(ctx, d.next, encodeFrame(f))
	})
	return err
}

// sendRST issues a best-effort RST for a pair this demux has no live
// target for (backlog overflow, duplicate SYN, or an unknown fiber).
func (d *Demux) sendRST(local, remote uint32) {
	go func() {
		_ = d.writeFrame(context.Background(), frame{Type: frameRST, Local: local, Remote: remote})
	}()
}

func (d *Demux) register(key fiberKey, t target) {
	d.mu.Lock()
	d.fibers[key] = t
	d.mu.Unlock()
}

func (d *Demux) unregister(key fiberKey) {
	d.mu.Lock()
	delete(d.fibers, key)
	d.mu.Unlock()
}

func (d *Demux) registerPending(port uint32, t target) {
	d.mu.Lock()
	d.pending[port] = t
	d.mu.Unlock()
}

func (d *Demux) unregisterPending(port uint32) {
	d.mu.Lock()
	delete(d.pending, port)
	d.mu.Unlock()
}

func (d *Demux) registerAcceptor(port uint32, a *Acceptor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.acceptors[port]; ok {
		return layer.ErrAddressInUse.Error(nil)
	}
	d.acceptors[port] = a
	return nil
}

func (d *Demux) unregisterAcceptor(port uint32) {
	d.mu.Lock()
	delete(d.acceptors, port)
	d.mu.Unlock()
}

// allocPort picks the next free local port: a wrapping uint32 counter
// starting at 1, skipping ports currently held by a fiber or an acceptor.
func (d *Demux) allocPort() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := uint32(0); i < ^uint32(0); i++ {
		p := d.nextPort
		d.nextPort++
		if d.nextPort == 0 {
			d.nextPort = 1
		}
		if d.portFree(p) {
			return p, nil
		}
	}
	return 0, layer.ErrAddressNotAvailable.Error(nil)
}

func (d *Demux) portFree(p uint32) bool {
	if p == 0 {
		return false
	}
	if _, ok := d.acceptors[p]; ok {
		return false
	}
	if _, ok := d.pending[p]; ok {
		return false
	}
	for k := range d.fibers {
		if k.local == p {
			return false
		}
	}
	return true
}

// Close stops the reader loop's effects from reaching any further fiber
// (new frames are dropped once every owned fiber has been flushed) and
// closes the underlying stream.
func (d *Demux) Close() error {
	d.fail(layer.ErrOperationAborted.Error(nil))
	d.writer.Close()
	return d.next.Close()
}
