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

var _ = Describe("Socket", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		client *pipeSocket
		server *pipeSocket
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		client, server = newPipePair()
	})

	AfterEach(func() {
		cancel()
	})

	It("walks a single-hop chain and opens once the hop validates", func() {
		cfg := circuit.Config{ID: "hop1"}
		s := circuit.New(client, cfg)

		done := make(chan error, 1)
		go func() { done <- s.Connect(ctx, layer.NewEndpoint("x", layer.ZeroEndpoint(), true)) }()

		var init wireInitConnection
		Expect(readWireFrame(server.conn, &init)).ToNot(HaveOccurred())
		Expect(init.ID).To(Equal("hop1"))
		Expect(init.Forward).To(Equal(uint8(0)))
		Expect(writeWireFrame(server.conn, &wireValidateConnection{Status: 0})).ToNot(HaveOccurred())

		var err error
		Eventually(done, 2*time.Second).Should(Receive(&err))
		Expect(err).ToNot(HaveOccurred())
	})

	It("walks a multi-hop chain, forwarding the remaining chain at every intermediate hop", func() {
		cfg := circuit.Config{
			ID: "hop1",
			Hops: []circuit.HopSpec{
				{ID: "hop2"},
			},
		}
		s := circuit.New(client, cfg)

		done := make(chan error, 1)
		go func() { done <- s.Connect(ctx, layer.NewEndpoint("x", layer.ZeroEndpoint(), true)) }()

		var first wireInitConnection
		Expect(readWireFrame(server.conn, &first)).ToNot(HaveOccurred())
		Expect(first.ID).To(Equal("hop1"))
		Expect(first.Forward).To(Equal(uint8(1)))
		Expect(first.RemainingHops).ToNot(BeEmpty())
		Expect(writeWireFrame(server.conn, &wireValidateConnection{Status: 0})).ToNot(HaveOccurred())

		var second wireInitConnection
		Expect(readWireFrame(server.conn, &second)).ToNot(HaveOccurred())
		Expect(second.ID).To(Equal("hop2"))
		Expect(second.Forward).To(Equal(uint8(0)))
		Expect(writeWireFrame(server.conn, &wireValidateConnection{Status: 0})).ToNot(HaveOccurred())

		var err error
		Eventually(done, 2*time.Second).Should(Receive(&err))
		Expect(err).ToNot(HaveOccurred())
	})

	It("fails Connect with ErrConnectionRefused when a hop reports a nonzero status", func() {
		cfg := circuit.Config{ID: "hop1"}
		s := circuit.New(client, cfg)

		done := make(chan error, 1)
		go func() { done <- s.Connect(ctx, layer.NewEndpoint("x", layer.ZeroEndpoint(), true)) }()

		var init wireInitConnection
		Expect(readWireFrame(server.conn, &init)).ToNot(HaveOccurred())
		Expect(writeWireFrame(server.conn, &wireValidateConnection{Status: 1})).ToNot(HaveOccurred())

		var err error
		Eventually(done, 2*time.Second).Should(Receive(&err))
		Expect(err).To(HaveOccurred())
	})

	It("passes Send/Receive/Shutdown/Cancel straight through to next once open", func() {
		cfg := circuit.Config{ID: "hop1"}
		s := circuit.New(client, cfg)

		done := make(chan error, 1)
		go func() { done <- s.Connect(ctx, layer.NewEndpoint("x", layer.ZeroEndpoint(), true)) }()

		var init wireInitConnection
		Expect(readWireFrame(server.conn, &init)).ToNot(HaveOccurred())
		Expect(writeWireFrame(server.conn, &wireValidateConnection{Status: 0})).ToNot(HaveOccurred())

		var err error
		Eventually(done, 2*time.Second).Should(Receive(&err))
		Expect(err).ToNot(HaveOccurred())

		go func() { _, _ = s.Send(ctx, []byte("payload")) }()
		buf := make([]byte, 16)
		n, rerr := server.Receive(ctx, buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("payload"))
	})
})
