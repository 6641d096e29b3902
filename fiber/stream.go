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
	"bytes"
	"context"
	"sync"

	"github.com/nabbar/sockfwd/layer"
)

type streamState uint8

const (
	stateClosed streamState = iota
	stateConnecting
	stateSynReceived
	stateOpen
	stateHalfClosedLocal
)

// Stream is one endpoint of a virtual reliable stream multiplexed over a
// Demux, identified by (local_port, remote_port).
type Stream struct {
	demux *Demux

	mu          sync.Mutex
	state       streamState
	local       uint32
	remote      uint32
	connectDone chan error

	recvBuf    bytes.Buffer
	recvLen    int
	recvPaused bool
	sendCredit int

	closed   chan struct{}
	closeErr error

	recvSignal chan struct{}
	sendSignal chan struct{}
}

func newStream(d *Demux) *Stream {
	s := &Stream{
		demux:      d,
		sendCredit: recvHighWater,
		closed:     make(chan struct{}),
		recvSignal: make(chan struct{}, 1),
		sendSignal: make(chan struct{}, 1),
	}
	return s
}

// NewStream returns an unconnected stream fiber over d; call Connect to
// dial a listening acceptor-fiber.
func NewStream(d *Demux) *Stream {
	return newStream(d)
}

func (s *Stream) Open(ctx context.Context) error { return nil }

func (s *Stream) Bind(ctx context.Context, local layer.Endpoint) error {
	port, ok := local.Context().(uint32)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}
	s.mu.Lock()
	s.local = port
	s.mu.Unlock()
	return nil
}

// Connect picks a free local port (or uses the one Bind already set),
// sends SYN{local, remote} where remote is the target acceptor-fiber's
// listening port, and waits for SYN_ACK or RST.
func (s *Stream) Connect(ctx context.Context, remote layer.Endpoint) error {
	target, ok := remote.Context().(uint32)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}

	s.mu.Lock()
	local := s.local
	s.mu.Unlock()

	if local == 0 {
		p, err := s.demux.allocPort()
		if err != nil {
			return err
		}
		local = p
	}

	done := make(chan error, 1)
	s.mu.Lock()
	s.local = local
	s.state = stateConnecting
	s.connectDone = done
	s.mu.Unlock()

	s.demux.registerPending(local, s)
	defer s.demux.unregisterPending(local)

	if err := s.demux.writeFrame(ctx, frame{Type: frameSYN, Local: local, Remote: target}); err != nil {
		s.mu.Lock()
		s.state = stateClosed
		s.mu.Unlock()
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.mu.Lock()
		s.state = stateClosed
		s.mu.Unlock()
		return layer.ErrOperationAborted.Error(ctx.Err())
	}
}

// deliver handles a frame addressed to this fiber, whether it is still a
// pending connect (SynAck/RST only) or already established.
func (s *Stream) deliver(f frame) {
	switch f.Type {
	case frameSynAck:
		s.mu.Lock()
		if s.state != stateConnecting {
			s.mu.Unlock()
			return
		}
		s.remote = f.Local
		s.state = stateOpen
		done := s.connectDone
		local := s.local
		s.mu.Unlock()

		s.demux.register(fiberKey{local: local, remote: f.Local}, s)
		if done != nil {
			done <- nil
		}

	case frameRST:
		s.terminate(layer.ErrConnectionAborted.Error(nil))

	case frameStreamData:
		s.mu.Lock()
		if s.state != stateOpen && s.state != stateHalfClosedLocal {
			s.mu.Unlock()
			return
		}
		s.recvBuf.Write(f.Payload)
		s.recvLen += len(f.Payload)
		pause := !s.recvPaused && s.recvLen > recvHighWater
		if pause {
			s.recvPaused = true
		}
		local, remote := s.local, s.remote
		s.mu.Unlock()
		s.signal(s.recvSignal)
		if pause {
			_ = s.demux.writeFrame(context.Background(), frame{Type: frameAckWindow, Local: local, Remote: remote, Payload: encodeCredit(0)})
		}

	case frameAckWindow:
		credit := decodeCredit(f.Payload)
		s.mu.Lock()
		s.sendCredit = int(credit)
		s.mu.Unlock()
		s.signal(s.sendSignal)
	}
}

func (s *Stream) fail(err error) {
	s.terminate(err)
}

func (s *Stream) terminate(err error) {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	s.closeErr = err
	done := s.connectDone
	local, remote := s.local, s.remote
	s.mu.Unlock()

	close(s.closed)
	if done != nil {
		select {
		case done <- err:
		default:
		}
	}
	s.signal(s.recvSignal)
	s.signal(s.sendSignal)
	s.demux.unregister(fiberKey{local: local, remote: remote})
}

func (s *Stream) signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Send fragments p into frames respecting the peer's last advertised
// credit, blocking once that credit is exhausted.
func (s *Stream) Send(ctx context.Context, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		s.mu.Lock()
		for s.sendCredit <= 0 && (s.state == stateOpen || s.state == stateHalfClosedLocal) {
			s.mu.Unlock()
			select {
			case <-s.sendSignal:
			case <-s.closed:
			case <-ctx.Done():
				return total, layer.ErrOperationAborted.Error(ctx.Err())
			}
			s.mu.Lock()
		}
		if s.state != stateOpen && s.state != stateHalfClosedLocal {
			err := s.closeErr
			s.mu.Unlock()
			if err == nil {
				err = layer.ErrNotConnected.Error(nil)
			}
			return total, err
		}

		chunk := len(p) - total
		if chunk > s.sendCredit {
			chunk = s.sendCredit
		}
		if chunk > fiberMTU {
			chunk = fiberMTU
		}
		s.sendCredit -= chunk
		local, remote := s.local, s.remote
		s.mu.Unlock()

		if err := s.demux.writeFrame(ctx, frame{Type: frameStreamData, Local: local, Remote: remote, Payload: p[total : total+chunk]}); err != nil {
			return total, err
		}
		total += chunk
	}
	return total, nil
}

// Receive returns already-buffered bytes, blocking until data, a terminal
// error, or ctx cancellation arrives.
func (s *Stream) Receive(ctx context.Context, p []byte) (int, error) {
	for {
		s.mu.Lock()
		if s.recvBuf.Len() > 0 {
			n, _ := s.recvBuf.Read(p)
			s.recvLen -= n
			var resumeCredit uint32
			resume := s.recvPaused && s.recvLen < recvLowWater
			if resume {
				s.recvPaused = false
				resumeCredit = uint32(recvHighWater - s.recvLen)
			}
			local, remote := s.local, s.remote
			s.mu.Unlock()

			if resume {
				_ = s.demux.writeFrame(ctx, frame{Type: frameAckWindow, Local: local, Remote: remote, Payload: encodeCredit(resumeCredit)})
			}
			return n, nil
		}
		if s.state == stateClosed {
			err := s.closeErr
			s.mu.Unlock()
			if err == nil {
				err = layer.ErrBrokenPipe.Error(nil)
			}
			return 0, err
		}
		s.mu.Unlock()

		select {
		case <-s.recvSignal:
		case <-ctx.Done():
			return 0, layer.ErrOperationAborted.Error(ctx.Err())
		}
	}
}

// Close sends RST and disposes of the fiber.
func (s *Stream) Close() error {
	s.mu.Lock()
	local, remote := s.local, s.remote
	alreadyClosed := s.state == stateClosed
	s.mu.Unlock()

	if !alreadyClosed {
		_ = s.demux.writeFrame(context.Background(), frame{Type: frameRST, Local: local, Remote: remote})
	}
	s.terminate(layer.ErrOperationAborted.Error(nil))
	return nil
}

// Shutdown supports only ShutdownWrite, moving Open to HalfClosedLocal;
// reads continue to drain whatever the peer still sends.
func (s *Stream) Shutdown(how layer.ShutdownMode) error {
	if how == layer.ShutdownRead {
		return nil
	}
	s.mu.Lock()
	if s.state == stateOpen {
		s.state = stateHalfClosedLocal
	}
	s.mu.Unlock()
	return nil
}

func (s *Stream) LocalEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layer.NewEndpoint(s.local, nil, s.local != 0)
}

func (s *Stream) RemoteEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layer.NewEndpoint(s.remote, nil, s.remote != 0)
}

func (s *Stream) Cancel() {
	s.terminate(layer.ErrOperationAborted.Error(nil))
}

var _ layer.Socket = (*Stream)(nil)
