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

package tcp_test

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// freeLoopbackPort reserves an ephemeral TCP port by briefly listening on it,
// so a tcp.Acceptor can be bound deterministically to a known address rather
// than to the wildcard port tcp.Acceptor.Bind does not expose.
func freeLoopbackPort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

var _ = Describe("Socket and Acceptor", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		acc    *tcp.Acceptor
		port   int
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		port = freeLoopbackPort()
		acc = tcp.NewAcceptor()
		Expect(acc.Bind(ctx, layer.NewEndpoint(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}, nil, true))).ToNot(HaveOccurred())
		Expect(acc.Listen(0)).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		cancel()
		_ = acc.Close()
	})

	It("connects a client socket to the bound acceptor and exchanges data both ways", func() {
		accepted := make(chan layer.Socket, 1)
		go func() {
			s, err := acc.Accept(ctx)
			Expect(err).ToNot(HaveOccurred())
			accepted <- s
		}()

		client := tcp.New()
		Expect(client.Connect(ctx, layer.NewEndpoint(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}, nil, true))).ToNot(HaveOccurred())
		defer client.Close()

		var server layer.Socket
		Eventually(accepted, 2*time.Second).Should(Receive(&server))
		defer server.Close()

		_, err := client.Send(ctx, []byte("ping"))
		Expect(err).ToNot(HaveOccurred())
		buf := make([]byte, 16)
		n, err := server.Receive(ctx, buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("ping"))

		_, err = server.Send(ctx, []byte("pong"))
		Expect(err).ToNot(HaveOccurred())
		n, err = client.Receive(ctx, buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("pong"))
	})

	It("gives the client a LocalEndpoint once Connect succeeds without an explicit Bind", func() {
		accepted := make(chan layer.Socket, 1)
		go func() {
			s, err := acc.Accept(ctx)
			Expect(err).ToNot(HaveOccurred())
			accepted <- s
		}()

		client := tcp.New()
		Expect(client.Connect(ctx, layer.NewEndpoint(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}, nil, true))).ToNot(HaveOccurred())
		defer client.Close()

		var server layer.Socket
		Eventually(accepted, 2*time.Second).Should(Receive(&server))
		defer server.Close()

		Expect(client.LocalEndpoint().IsSet()).To(BeTrue())
		Expect(client.RemoteEndpoint().IsSet()).To(BeTrue())
	})

	It("fails Connect to an address with nothing listening", func() {
		client := tcp.New()
		freePort := freeLoopbackPort()
		err := client.Connect(ctx, layer.NewEndpoint(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: freePort}, nil, true))
		Expect(err).To(HaveOccurred())
	})

	It("fails Bind when the endpoint carries no *net.TCPAddr", func() {
		s := tcp.New()
		err := s.Bind(ctx, layer.NewEndpoint("not-a-tcp-addr", nil, true))
		Expect(err).To(HaveOccurred())
	})

	It("reports not-connected for Send/Receive/Shutdown before Connect", func() {
		s := tcp.New()
		_, err := s.Send(ctx, []byte("x"))
		Expect(err).To(HaveOccurred())
		_, err = s.Receive(ctx, make([]byte, 1))
		Expect(err).To(HaveOccurred())
		err = s.Shutdown(layer.ShutdownWrite)
		Expect(err).To(HaveOccurred())
	})

	It("Close is a no-op on a never-connected socket", func() {
		s := tcp.New()
		Expect(s.Close()).ToNot(HaveOccurred())
	})

	It("cancels a blocked Accept via ctx", func() {
		shortCtx, shortCancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer shortCancel()
		_, err := acc.Accept(shortCtx)
		Expect(err).To(HaveOccurred())
	})
})
