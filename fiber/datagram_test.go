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

package fiber_test

import (
	"context"
	"fmt"
	"time"

	"github.com/nabbar/sockfwd/fiber"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Datagram", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		dA, dB *fiber.Demux
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		a, b := newPipePair()
		dA = fiber.NewDemux(a, nil)
		dB = fiber.NewDemux(b, nil)
	})

	AfterEach(func() {
		cancel()
		_ = dA.Close()
		_ = dB.Close()
	})

	// pairedDatagrams wires a Datagram on dA to one on dB without any
	// handshake: each Connect registers directly against its own local
	// port and the peer's, so both sides must know each other's port up
	// front.
	pairedDatagrams := func(portA, portB uint32) (*fiber.Datagram, *fiber.Datagram) {
		gA := fiber.NewDatagram(dA)
		Expect(gA.Bind(ctx, fiber.Port(portA))).ToNot(HaveOccurred())
		Expect(gA.Connect(ctx, fiber.Port(portB))).ToNot(HaveOccurred())

		gB := fiber.NewDatagram(dB)
		Expect(gB.Bind(ctx, fiber.Port(portB))).ToNot(HaveOccurred())
		Expect(gB.Connect(ctx, fiber.Port(portA))).ToNot(HaveOccurred())

		return gA, gB
	}

	Describe("Connect/Bind", func() {
		It("registers the pair with the demux with no SYN round trip", func() {
			gA, gB := pairedDatagrams(300, 301)
			Expect(gA).ToNot(BeNil())
			Expect(gB).ToNot(BeNil())
		})

		It("allocates a local port automatically when Bind was never called", func() {
			gA := fiber.NewDatagram(dA)
			Expect(gA.Connect(ctx, fiber.Port(302))).ToNot(HaveOccurred())
			ep := gA.LocalEndpoint()
			Expect(ep.Context()).ToNot(Equal(uint32(0)))
		})
	})

	Describe("Send/Receive", func() {
		It("delivers one whole datagram per Receive call", func() {
			gA, gB := pairedDatagrams(303, 304)

			_, err := gA.Send(ctx, []byte("hello datagram"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 64)
			n, err := gB.Receive(ctx, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("hello datagram"))
		})

		It("rejects a Send larger than the fiber MTU", func() {
			gA, _ := pairedDatagrams(305, 306)
			oversized := make([]byte, 70*1024)
			_, err := gA.Send(ctx, oversized)
			Expect(err).To(HaveOccurred())
		})

		It("drops a received datagram and fails with message_size when it doesn't fit the caller's buffer", func() {
			gA, gB := pairedDatagrams(307, 308)

			_, err := gA.Send(ctx, []byte("this is more than four bytes"))
			Expect(err).ToNot(HaveOccurred())

			tiny := make([]byte, 4)
			_, err = gB.Receive(ctx, tiny)
			Expect(err).To(HaveOccurred())
		})

		It("keeps only the most recent datagrams once the queue bound is exceeded", func() {
			gA, gB := pairedDatagrams(309, 310)

			const bound = 256
			for i := 0; i < bound+10; i++ {
				_, err := gA.Send(ctx, []byte(fmt.Sprintf("msg-%d", i)))
				Expect(err).ToNot(HaveOccurred())
			}

			time.Sleep(50 * time.Millisecond)

			buf := make([]byte, 64)
			n, err := gB.Receive(ctx, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("msg-10"))
		})
	})

	Describe("RST", func() {
		It("fails a Datagram's pending Receive once the peer sends RST via Close", func() {
			gA, gB := pairedDatagrams(311, 312)

			done := make(chan error, 1)
			go func() {
				_, err := gB.Receive(ctx, make([]byte, 8))
				done <- err
			}()

			time.Sleep(20 * time.Millisecond)
			Expect(gA.Close()).ToNot(HaveOccurred())

			var err error
			Eventually(done, 2*time.Second).Should(Receive(&err))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Cancel", func() {
		It("aborts a blocked Receive", func() {
			gA, _ := pairedDatagrams(313, 314)

			done := make(chan error, 1)
			go func() {
				_, err := gA.Receive(ctx, make([]byte, 8))
				done <- err
			}()

			time.Sleep(20 * time.Millisecond)
			gA.Cancel()

			var err error
			Eventually(done, 2*time.Second).Should(Receive(&err))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LocalEndpoint/RemoteEndpoint", func() {
		It("reports unset endpoints before any Bind/Connect", func() {
			g := fiber.NewDatagram(dA)
			Expect(g.LocalEndpoint().IsSet()).To(BeFalse())
			Expect(g.RemoteEndpoint().IsSet()).To(BeFalse())
		})

		It("reports both ports once paired", func() {
			gA, _ := pairedDatagrams(315, 316)
			Expect(gA.LocalEndpoint().Context()).To(Equal(uint32(315)))
			Expect(gA.RemoteEndpoint().Context()).To(Equal(uint32(316)))
		})
	})
})
