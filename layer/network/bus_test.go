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

package network_test

import (
	"context"

	"github.com/nabbar/sockfwd/layer"
)

// busSocket is a shared in-memory multicast medium standing in for a real
// broadcast-style datagram transport: every Send on one endpoint's view of
// the bus is visible to every Receive on every other endpoint sharing the
// same channel, letting these tests exercise network.Socket's header
// encapsulation and destination filtering without a real link.
type busSocket struct {
	ch chan []byte
}

func newBus() chan []byte {
	return make(chan []byte, 16)
}

func busEndpoint(ch chan []byte) *busSocket {
	return &busSocket{ch: ch}
}

func (b *busSocket) Open(ctx context.Context) error                     { return nil }
func (b *busSocket) Bind(ctx context.Context, local layer.Endpoint) error { return nil }
func (b *busSocket) Connect(ctx context.Context, remote layer.Endpoint) error {
	return nil
}
func (b *busSocket) Close() error                          { return nil }
func (b *busSocket) Shutdown(how layer.ShutdownMode) error  { return nil }
func (b *busSocket) Send(ctx context.Context, p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	b.ch <- cp
	return len(p), nil
}
func (b *busSocket) Receive(ctx context.Context, p []byte) (int, error) {
	select {
	case got := <-b.ch:
		return copy(p, got), nil
	case <-ctx.Done():
		return 0, layer.ErrOperationAborted.Error(ctx.Err())
	}
}
func (b *busSocket) LocalEndpoint() layer.Endpoint  { return layer.ZeroEndpoint() }
func (b *busSocket) RemoteEndpoint() layer.Endpoint { return layer.ZeroEndpoint() }
func (b *busSocket) Cancel()                        {}

var _ layer.Socket = (*busSocket)(nil)
