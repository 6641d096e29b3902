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
	"net"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func stackOf(head map[string]string, tail ...map[string]string) layer.ParamStack {
	s := layer.ParamStack{}
	for i := len(tail) - 1; i >= 0; i-- {
		s = s.Push(tail[i])
	}
	return s.Push(head)
}

var _ = Describe("Resolve", func() {
	It("builds a bind-style endpoint from a port alone", func() {
		ep, _, err := tcp.Resolve(stackOf(map[string]string{"port": "8080"}))
		Expect(err).ToNot(HaveOccurred())
		addr, ok := ep.Context().(*net.TCPAddr)
		Expect(ok).To(BeTrue())
		Expect(addr.Port).To(Equal(8080))
		Expect(addr.IP).To(BeNil())
	})

	It("builds a connect-style endpoint from addr and port", func() {
		ep, _, err := tcp.Resolve(stackOf(map[string]string{"addr": "127.0.0.1", "port": "9090"}))
		Expect(err).ToNot(HaveOccurred())
		addr, ok := ep.Context().(*net.TCPAddr)
		Expect(ok).To(BeTrue())
		Expect(addr.Port).To(Equal(9090))
		Expect(addr.IP.String()).To(Equal("127.0.0.1"))
	})

	It("fails when port is missing", func() {
		_, _, err := tcp.Resolve(stackOf(map[string]string{"addr": "127.0.0.1"}))
		Expect(err).To(HaveOccurred())
	})

	It("fails when port is not numeric", func() {
		_, _, err := tcp.Resolve(stackOf(map[string]string{"port": "not-a-number"}))
		Expect(err).To(HaveOccurred())
	})

	It("fails when addr cannot be resolved", func() {
		_, _, err := tcp.Resolve(stackOf(map[string]string{"addr": "this.is.not.valid.invalid", "port": "80"}))
		Expect(err).To(HaveOccurred())
	})

	It("passes an empty head stack through unchanged", func() {
		ep, _, err := tcp.Resolve(layer.ParamStack{})
		Expect(err).ToNot(HaveOccurred())
		Expect(ep.IsSet()).To(BeFalse())
	})
})
