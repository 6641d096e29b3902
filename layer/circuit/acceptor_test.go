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

package circuit_test

import (
	"context"
	"time"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/circuit"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeNextAcceptor is a layer.Acceptor whose Accept drains a preloaded
// queue of sockets, standing in for a real stream acceptor (e.g. tcp.Acceptor)
// beneath circuit.Acceptor.
type fakeNextAcceptor struct {
	queue chan layer.Socket
}

func newFakeNextAcceptor(n int) *fakeNextAcceptor {
	return &fakeNextAcceptor{queue: make(chan layer.Socket, n)}
}

func (f *fakeNextAcceptor) Open(context.Context) error           { return nil }
func (f *fakeNextAcceptor) Bind(context.Context, layer.Endpoint) error { return nil }
func (f *fakeNextAcceptor) Listen(int) error                     { return nil }
func (f *fakeNextAcceptor) Close() error                         { return nil }
func (f *fakeNextAcceptor) Accept(ctx context.Context) (layer.Socket, error) {
	select {
	case s := <-f.queue:
		return s, nil
	case <-ctx.Done():
		return nil, layer.ErrOperationAborted.Error(ctx.Err())
	}
}

var _ layer.Acceptor = (*fakeNextAcceptor)(nil)

var _ = Describe("Acceptor", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	})

	AfterEach(func() {
		cancel()
	})

	It("hands the caller a terminating Socket once the handshake validates a bound id", func() {
		next := newFakeNextAcceptor(1)
		client, server := newPipePair()
		next.queue <- server

		acc := circuit.NewAcceptor(next, nil, nil, nil)
		acc.BindRole("hop1", circuit.RoleTerminate)

		accepted := make(chan layer.Socket, 1)
		acceptErr := make(chan error, 1)
		go func() {
			s, err := acc.Accept(ctx)
			if err != nil {
				acceptErr <- err
				return
			}
			accepted <- s
		}()

		Expect(writeWireFrame(client.conn, &wireInitConnection{ID: "hop1", Forward: 0})).ToNot(HaveOccurred())

		var reply wireValidateConnection
		Expect(readWireFrame(client.conn, &reply)).ToNot(HaveOccurred())
		Expect(reply.Status).To(Equal(uint8(0)))

		Eventually(accepted, 2*time.Second).Should(Receive())
	})

	It("refuses and keeps listening when the id is not bound to the terminating role", func() {
		next := newFakeNextAcceptor(2)
		badClient, badServer := newPipePair()
		goodClient, goodServer := newPipePair()
		next.queue <- badServer
		next.queue <- goodServer

		acc := circuit.NewAcceptor(next, nil, nil, nil)
		acc.BindRole("allowed", circuit.RoleTerminate)

		accepted := make(chan layer.Socket, 1)
		go func() {
			s, err := acc.Accept(ctx)
			Expect(err).ToNot(HaveOccurred())
			accepted <- s
		}()

		Expect(writeWireFrame(badClient.conn, &wireInitConnection{ID: "not-allowed", Forward: 0})).ToNot(HaveOccurred())
		var reply wireValidateConnection
		Expect(readWireFrame(badClient.conn, &reply)).ToNot(HaveOccurred())
		Expect(reply.Status).To(Equal(uint8(1)))

		Expect(writeWireFrame(goodClient.conn, &wireInitConnection{ID: "allowed", Forward: 0})).ToNot(HaveOccurred())
		var goodReply wireValidateConnection
		Expect(readWireFrame(goodClient.conn, &goodReply)).ToNot(HaveOccurred())
		Expect(goodReply.Status).To(Equal(uint8(0)))

		Eventually(accepted, 2*time.Second).Should(Receive())
	})

	It("cancels a blocked Accept via ctx", func() {
		next := newFakeNextAcceptor(0)
		acc := circuit.NewAcceptor(next, nil, nil, nil)

		shortCtx, shortCancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer shortCancel()
		_, err := acc.Accept(shortCtx)
		Expect(err).To(HaveOccurred())
	})
})
