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

// Package forwarder provides the full-duplex session splice: two
// half-duplex pumps, each owning a bounded buffer, relaying whatever one
// side reads straight to the other side's Send. Used by a circuit
// intermediate forwarding a hop and by application services splicing a
// fiber into a local socket.
package forwarder

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/logging"
)

// pumpBufferSize is the per-direction buffer size.
const pumpBufferSize = 50 * 1024

// Splice is a full-duplex link between two layer.Socket values. Either
// direction's error stops both.
type Splice struct {
	inbound  layer.Socket
	outbound layer.Socket
	log      logging.Logger

	started atomic.Bool

	cancel context.CancelFunc

	err  error // written once, before close(done); safe to read after <-done
	done chan struct{}
}

// New builds a Splice forwarding bytes between inbound and outbound. log
// may be nil, in which case a discarding logger is used. Each Splice is
// tagged with a fresh uuid so its start/stop lines can be told apart from
// every other splice running concurrently.
func New(inbound, outbound layer.Socket, log logging.Logger) *Splice {
	if log == nil {
		log = logging.Discard()
	}
	return &Splice{
		inbound:  inbound,
		outbound: outbound,
		log:      log.WithField("session", "forwarder").WithField("id", uuid.NewString()),
		done:     make(chan struct{}),
	}
}

// Start launches the two pumps under an errgroup: ctx bounds the splice's
// lifetime, and the group's derived context is canceled the moment either
// pump returns an error, which unblocks the other side's Receive/Send.
// Start returns immediately; use Wait to block until the splice has fully
// stopped.
func (s *Splice) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted.Error(nil)
	}

	parent, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.log.Info("session[forwarder]: start")

	g, gctx := errgroup.WithContext(parent)
	g.Go(func() error { return pump(gctx, s.inbound, s.outbound) })
	g.Go(func() error { return pump(gctx, s.outbound, s.inbound) })

	go func() {
		s.err = g.Wait()
		s.stopBoth()
		close(s.done)
	}()

	return nil
}

// pump performs the half-duplex read/write loop: receive into a private
// buffer, then send the exact number of bytes received to the other side.
func pump(ctx context.Context, from, to layer.Socket) error {
	buf := make([]byte, pumpBufferSize)
	for {
		n, rErr := from.Receive(ctx, buf)
		if n > 0 {
			if _, wErr := to.Send(ctx, buf[:n]); wErr != nil {
				return wErr
			}
		}
		if rErr != nil {
			return rErr
		}
	}
}

func (s *Splice) stopBoth() {
	s.log.Info("session[forwarder]: stop")
	_ = s.inbound.Close()
	_ = s.outbound.Close()
}

// Stop tears down both sides and unblocks any pending pump reads/writes.
func (s *Splice) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

// Wait blocks until both pumps have exited, returning the first error
// either side reported (context cancellation included).
func (s *Splice) Wait() error {
	<-s.done
	return s.err
}
