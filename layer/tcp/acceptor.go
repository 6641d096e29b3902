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

package tcp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/nabbar/sockfwd/layer"
)

// Acceptor is a layer.Acceptor wrapping a *net.TCPListener. Address reuse
// is enabled on bind.
type Acceptor struct {
	mu    sync.Mutex
	lst   *net.TCPListener
	local layer.Endpoint
}

func NewAcceptor() *Acceptor {
	return &Acceptor{local: layer.ZeroEndpoint()}
}

func (a *Acceptor) Open(context.Context) error {
	return nil
}

func (a *Acceptor) Bind(_ context.Context, local layer.Endpoint) error {
	addr := addrOf(local)
	if addr == nil {
		return layer.ErrBadAddress.Error(nil)
	}

	cfg := net.ListenConfig{
		Control: reuseAddrControl,
	}

	l, err := cfg.Listen(context.Background(), "tcp", addr.String())
	if err != nil {
		return layer.MapNetError(err)
	}

	a.mu.Lock()
	a.lst = l.(*net.TCPListener)
	a.local = layer.NewEndpoint(a.lst.Addr(), nil, true)
	a.mu.Unlock()

	return nil
}

// Listen is a no-op for TCP: net.ListenConfig.Listen already puts the
// socket in the listening state during Bind. backlog is accepted for
// interface symmetry with layer.Acceptor but the OS backlog is fixed at
// bind time on most platforms Go targets.
func (a *Acceptor) Listen(int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lst == nil {
		return layer.ErrNotConnected.Error(nil)
	}
	return nil
}

func (a *Acceptor) Close() error {
	a.mu.Lock()
	l := a.lst
	a.mu.Unlock()

	if l == nil {
		return nil
	}
	return layer.MapNetError(l.Close())
}

func (a *Acceptor) Accept(ctx context.Context) (layer.Socket, error) {
	a.mu.Lock()
	l := a.lst
	local := a.local
	a.mu.Unlock()

	if l == nil {
		return nil, layer.ErrNotConnected.Error(nil)
	}

	type result struct {
		c   *net.TCPConn
		err error
	}
	done := make(chan result, 1)

	go func() {
		c, err := l.AcceptTCP()
		done <- result{c: c, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, layer.MapNetError(r.err)
		}
		remote := layer.NewEndpoint(r.c.RemoteAddr(), nil, true)
		return NewFromConn(r.c, local, remote), nil
	case <-ctx.Done():
		_ = l.SetDeadline(time.Now())
		r := <-done
		_ = l.SetDeadline(time.Time{})
		if r.c != nil {
			_ = r.c.Close()
		}
		return nil, layer.ErrOperationAborted.Error(ctx.Err())
	}
}

var _ layer.Acceptor = (*Acceptor)(nil)
