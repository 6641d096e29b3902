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

package routing_test

import (
	"context"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/routing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	It("creates a router the first time a name is referenced", func() {
		reg := routing.NewRegistry()
		r := reg.GetOrCreate("core")
		Expect(r).ToNot(BeNil())
		Expect(r.Name()).To(Equal("core"))
	})

	It("returns the same router for repeated lookups of the same name", func() {
		reg := routing.NewRegistry()
		Expect(reg.GetOrCreate("core")).To(BeIdenticalTo(reg.GetOrCreate("core")))
	})

	It("keeps distinct names as distinct routers", func() {
		reg := routing.NewRegistry()
		Expect(reg.GetOrCreate("core")).ToNot(BeIdenticalTo(reg.GetOrCreate("edge")))
	})
})

var _ = Describe("Router (via routing.Socket)", func() {
	var (
		ctx  context.Context
		reg  *routing.Registry
		next layer.Resolver
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = routing.NewRegistry()
		next = layer.ResolverFunc(func(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
			return layer.ZeroEndpoint(), stack, nil
		})
	})

	bindSocket := func(addr string, link *fakeLink) *routing.Socket {
		r := routing.NewResolver(next, reg)
		ep, _, err := r.Resolve(layer.ParamStack{{"network_address": addr, "router": "core"}})
		Expect(err).ToNot(HaveOccurred())

		s := routing.New(link)
		Expect(s.Bind(ctx, ep)).ToNot(HaveOccurred())
		return s
	}

	It("registers the bound address as reachable through the link's network_id", func() {
		link := newFakeLink(7)
		bindSocket("42", link)

		router := reg.GetOrCreate("core")
		id, ok := router.ResolveAddress(42)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(uint16(7)))
	})

	It("unregisters the address on Close", func() {
		link := newFakeLink(7)
		s := bindSocket("42", link)

		Expect(s.Close()).ToNot(HaveOccurred())

		router := reg.GetOrCreate("core")
		_, ok := router.ResolveAddress(42)
		Expect(ok).To(BeFalse())
	})

	It("forwards to the link registered for a destination network_id", func() {
		link := newFakeLink(7)
		bindSocket("42", link)

		router := reg.GetOrCreate("core")
		n, err := router.Forward(ctx, 7, []byte("payload"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(len("payload")))
		Expect(link.sent.Load()).To(Equal(int32(1)))
	})

	It("fails to forward toward an unknown network_id", func() {
		router := reg.GetOrCreate("core")
		_, err := router.Forward(ctx, 999, []byte("x"))
		Expect(err).To(HaveOccurred())
	})

	It("lets a relay add a static route toward a link it does not itself bind", func() {
		router := reg.GetOrCreate("core")
		via := newFakeLink(9)
		router.AddRoute(9, via)

		_, err := router.Forward(ctx, 9, []byte("relayed"))
		Expect(err).ToNot(HaveOccurred())
		Expect(via.sent.Load()).To(Equal(int32(1)))
	})
})
