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

package forwarder_test

import (
	"context"
	"time"

	"github.com/nabbar/sockfwd/forwarder"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Splice", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc

		inRemote, inbound   *pipeSocket
		outRemote, outbound *pipeSocket
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		inRemote, inbound = newPipePair()
		outRemote, outbound = newPipePair()
	})

	AfterEach(func() {
		cancel()
	})

	It("relays bytes in both directions between the two sockets", func() {
		s := forwarder.New(inbound, outbound, nil)
		Expect(s.Start(ctx)).ToNot(HaveOccurred())
		defer s.Stop()

		go func() { _, _ = inRemote.conn.Write([]byte("to outbound")) }()
		buf := make([]byte, 64)
		n, err := outRemote.conn.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("to outbound"))

		go func() { _, _ = outRemote.conn.Write([]byte("to inbound")) }()
		n, err = inRemote.conn.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("to inbound"))
	})

	It("returns ErrAlreadyStarted on a second Start call", func() {
		s := forwarder.New(inbound, outbound, nil)
		Expect(s.Start(ctx)).ToNot(HaveOccurred())
		defer s.Stop()

		err := s.Start(ctx)
		Expect(err).To(HaveOccurred())
	})

	It("stops both pumps and reports the I/O error once one side closes", func() {
		s := forwarder.New(inbound, outbound, nil)
		Expect(s.Start(ctx)).ToNot(HaveOccurred())

		Expect(inRemote.conn.Close()).ToNot(HaveOccurred())

		err := s.Wait()
		Expect(err).To(HaveOccurred())

		buf := make([]byte, 1)
		_, werr := outRemote.conn.Write(buf)
		Expect(werr).To(HaveOccurred())
	})

	It("Stop cancels the splice, closes both sockets, and unblocks Wait promptly", func() {
		s := forwarder.New(inbound, outbound, nil)
		Expect(s.Start(ctx)).ToNot(HaveOccurred())

		done := make(chan struct{})
		go func() {
			s.Stop()
			close(done)
		}()
		Eventually(done, 3*time.Second).Should(BeClosed())

		buf := make([]byte, 1)
		_, werr := inRemote.conn.Write(buf)
		Expect(werr).To(HaveOccurred())
		_, werr = outRemote.conn.Write(buf)
		Expect(werr).To(HaveOccurred())

		Expect(s.Wait()).To(HaveOccurred())
	})

	It("Wait blocks until both pumps have exited", func() {
		s := forwarder.New(inbound, outbound, nil)
		Expect(s.Start(ctx)).ToNot(HaveOccurred())

		waitDone := make(chan error, 1)
		go func() { waitDone <- s.Wait() }()

		Consistently(waitDone, 200*time.Millisecond).ShouldNot(Receive())

		Expect(outRemote.conn.Close()).ToNot(HaveOccurred())
		Eventually(waitDone, 3*time.Second).Should(Receive())
	})
})
