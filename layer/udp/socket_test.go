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

package udp_test

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/udp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Socket", func() {
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

	It("exchanges datagrams between a bound server and a connected client", func() {
		server := udp.New()
		Expect(server.Bind(ctx, layer.NewEndpoint(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, nil, true))).ToNot(HaveOccurred())
		defer server.Close()

		serverAddr := server.LocalEndpoint().Context().(*net.UDPAddr)

		client := udp.New()
		Expect(client.Connect(ctx, layer.NewEndpoint(serverAddr, nil, true))).ToNot(HaveOccurred())
		defer client.Close()

		_, err := client.Send(ctx, []byte("hi there"))
		Expect(err).ToNot(HaveOccurred())

		buf := make([]byte, 64)
		n, err := server.Receive(ctx, buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("hi there"))
	})

	It("fails Receive with message_size when a datagram doesn't fit the caller's buffer", func() {
		server := udp.New()
		Expect(server.Bind(ctx, layer.NewEndpoint(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, nil, true))).ToNot(HaveOccurred())
		defer server.Close()
		serverAddr := server.LocalEndpoint().Context().(*net.UDPAddr)

		client := udp.New()
		Expect(client.Connect(ctx, layer.NewEndpoint(serverAddr, nil, true))).ToNot(HaveOccurred())
		defer client.Close()

		_, err := client.Send(ctx, make([]byte, 32))
		Expect(err).ToNot(HaveOccurred())

		tiny := make([]byte, 4)
		_, err = server.Receive(ctx, tiny)
		Expect(err).To(HaveOccurred())
	})

	It("fails Bind when the endpoint carries no *net.UDPAddr", func() {
		s := udp.New()
		err := s.Bind(ctx, layer.NewEndpoint("not-a-udp-addr", nil, true))
		Expect(err).To(HaveOccurred())
	})

	It("reports not-connected for Send/Receive before Connect or Bind", func() {
		s := udp.New()
		_, err := s.Send(ctx, []byte("x"))
		Expect(err).To(HaveOccurred())
		_, err = s.Receive(ctx, make([]byte, 1))
		Expect(err).To(HaveOccurred())
	})

	It("Shutdown behaves like Close since UDP has no half-close", func() {
		s := udp.New()
		Expect(s.Bind(ctx, layer.NewEndpoint(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, nil, true))).ToNot(HaveOccurred())
		Expect(s.Shutdown(layer.ShutdownWrite)).ToNot(HaveOccurred())

		_, err := s.Send(ctx, []byte("x"))
		Expect(err).To(HaveOccurred())
	})
})
