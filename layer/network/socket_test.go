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
	"time"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/network"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Socket", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Send/Receive", func() {
		It("delivers a payload addressed to the receiver's bound network_id", func() {
			ch := newBus()
			sender := network.New(busEndpoint(ch))
			receiver := network.New(busEndpoint(ch))

			Expect(sender.Bind(ctx, layer.NewEndpoint(uint16(1), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(receiver.Bind(ctx, layer.NewEndpoint(uint16(2), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(sender.Connect(ctx, layer.NewEndpoint(uint16(2), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())

			_, err := sender.Send(ctx, []byte("hello"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 16)
			n, err := receiver.Receive(ctx, buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("hello"))
		})

		It("silently drops a datagram addressed to a different network_id", func() {
			ch := newBus()
			sender := network.New(busEndpoint(ch))
			receiver := network.New(busEndpoint(ch))

			Expect(sender.Bind(ctx, layer.NewEndpoint(uint16(1), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(receiver.Bind(ctx, layer.NewEndpoint(uint16(2), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(sender.Connect(ctx, layer.NewEndpoint(uint16(5), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())

			_, err := sender.Send(ctx, []byte("ignored"))
			Expect(err).ToNot(HaveOccurred())

			timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			buf := make([]byte, 16)
			_, err = receiver.Receive(timeoutCtx, buf)
			Expect(err).To(HaveOccurred())
		})

		It("fails with message_size when the payload does not fit the caller's buffer", func() {
			ch := newBus()
			sender := network.New(busEndpoint(ch))
			receiver := network.New(busEndpoint(ch))

			Expect(sender.Bind(ctx, layer.NewEndpoint(uint16(1), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(receiver.Bind(ctx, layer.NewEndpoint(uint16(2), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(sender.Connect(ctx, layer.NewEndpoint(uint16(2), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())

			_, err := sender.Send(ctx, []byte("too long for this buffer"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 4)
			_, err = receiver.Receive(ctx, buf)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Bind", func() {
		It("rejects an unset local endpoint", func() {
			ch := newBus()
			s := network.New(busEndpoint(ch))
			err := s.Bind(ctx, layer.ZeroEndpoint())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("LocalEndpoint", func() {
		It("reports the bound network_id after Bind", func() {
			ch := newBus()
			s := network.New(busEndpoint(ch))
			Expect(s.Bind(ctx, layer.NewEndpoint(uint16(7), layer.ZeroEndpoint(), true))).ToNot(HaveOccurred())
			Expect(s.LocalEndpoint().Context()).To(Equal(uint16(7)))
		})
	})
})
