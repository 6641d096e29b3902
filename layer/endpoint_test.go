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

package layer_test

import (
	"github.com/nabbar/sockfwd/layer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Endpoint", func() {
	Describe("ZeroEndpoint", func() {
		It("is unset", func() {
			Expect(layer.ZeroEndpoint().IsSet()).To(BeFalse())
		})

		It("prints as <unset>", func() {
			Expect(layer.ZeroEndpoint().String()).To(Equal("<unset>"))
		})
	})

	Describe("NewEndpoint", func() {
		It("carries the given context, next and set flag", func() {
			next := layer.NewEndpoint("next", nil, true)
			ep := layer.NewEndpoint("ctx", next, true)

			Expect(ep.Context()).To(Equal("ctx"))
			Expect(ep.Next()).To(Equal(next))
			Expect(ep.IsSet()).To(BeTrue())
		})
	})

	Describe("Equal", func() {
		It("holds the equality law: a == b iff context, next and set all match", func() {
			a := layer.NewEndpoint("x", layer.NewEndpoint(1, nil, true), true)
			b := layer.NewEndpoint("x", layer.NewEndpoint(1, nil, true), true)
			Expect(a.Equal(b)).To(BeTrue())
			Expect(b.Equal(a)).To(BeTrue())
		})

		It("differs on context", func() {
			a := layer.NewEndpoint("x", nil, true)
			b := layer.NewEndpoint("y", nil, true)
			Expect(a.Equal(b)).To(BeFalse())
		})

		It("differs on set flag", func() {
			a := layer.NewEndpoint("x", nil, true)
			b := layer.NewEndpoint("x", nil, false)
			Expect(a.Equal(b)).To(BeFalse())
		})

		It("differs on next", func() {
			a := layer.NewEndpoint("x", layer.NewEndpoint(1, nil, true), true)
			b := layer.NewEndpoint("x", layer.NewEndpoint(2, nil, true), true)
			Expect(a.Equal(b)).To(BeFalse())
		})

		It("treats a nil next as only equal to another nil next", func() {
			a := layer.NewEndpoint("x", nil, true)
			b := layer.NewEndpoint("x", layer.ZeroEndpoint(), true)
			Expect(a.Equal(b)).To(BeFalse())
		})

		It("is false against nil", func() {
			a := layer.NewEndpoint("x", nil, true)
			Expect(a.Equal(nil)).To(BeFalse())
		})

		It("recurses through an arbitrarily deep chain", func() {
			build := func() layer.Endpoint {
				return layer.NewEndpoint("iface0", layer.NewEndpoint(uint16(7), layer.NewEndpoint(uint32(42), nil, true), true), true)
			}
			Expect(build().Equal(build())).To(BeTrue())
		})
	})

	Describe("String", func() {
		It("chains next's String with its own context", func() {
			ep := layer.NewEndpoint("tcp", layer.NewEndpoint("udp", nil, true), true)
			Expect(ep.String()).To(Equal("tcp < udp"))
		})
	})
})
