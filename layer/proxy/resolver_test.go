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

package proxy_test

import (
	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/proxy"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// recordingResolver captures the stack it was handed and returns a fixed
// sentinel Endpoint, standing in for the next layer's Resolver (e.g. tcp.Resolve).
type recordingResolver struct {
	got layer.ParamStack
}

func (r *recordingResolver) Resolve(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
	r.got = stack
	return layer.NewEndpoint("dialed", nil, true), stack.Tail(), nil
}

var _ = Describe("NewResolver", func() {
	It("parses an HTTP config and synthesizes the proxy's own dial address for next", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{
			"http_host": "proxy.example", "http_port": "8080",
			"http_username": "u", "http_password": "p",
		})

		ep, _, err := r.Resolve(stack)
		Expect(err).ToNot(HaveOccurred())

		cfg, ok := ep.Context().(proxy.Config)
		Expect(ok).To(BeTrue())
		Expect(cfg.Variant).To(Equal(proxy.VariantHTTP))
		Expect(cfg.ProxyHost).To(Equal("proxy.example"))
		Expect(cfg.ProxyPort).To(Equal(8080))
		Expect(cfg.Username).To(Equal("u"))

		Expect(ep.Next()).ToNot(BeNil())
		Expect(ep.Next().Context()).To(Equal("dialed"))

		Expect(next.got.Head()).To(Equal(map[string]string{"addr": "proxy.example", "port": "8080"}))
	})

	It("fails when http_host is missing", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{"http_port": "8080"})
		_, _, err := r.Resolve(stack)
		Expect(err).To(HaveOccurred())
	})

	It("fails when http_port is not numeric", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{"http_host": "proxy.example", "http_port": "x"})
		_, _, err := r.Resolve(stack)
		Expect(err).To(HaveOccurred())
	})

	It("parses a SOCKS5 config from socks_version/addr/port", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{
			"socks_version": "5", "addr": "10.0.0.1", "port": "1080",
		})

		ep, _, err := r.Resolve(stack)
		Expect(err).ToNot(HaveOccurred())

		cfg, ok := ep.Context().(proxy.Config)
		Expect(ok).To(BeTrue())
		Expect(cfg.Variant).To(Equal(proxy.VariantSOCKS5))
		Expect(cfg.ProxyHost).To(Equal("10.0.0.1"))
		Expect(cfg.ProxyPort).To(Equal(1080))
	})

	It("parses a SOCKS4 config", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{
			"socks_version": "4", "addr": "10.0.0.1", "port": "1080",
		})

		ep, _, err := r.Resolve(stack)
		Expect(err).ToNot(HaveOccurred())
		cfg := ep.Context().(proxy.Config)
		Expect(cfg.Variant).To(Equal(proxy.VariantSOCKS4))
	})

	It("fails on an unsupported socks_version", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{
			"socks_version": "6", "addr": "10.0.0.1", "port": "1080",
		})
		_, _, err := r.Resolve(stack)
		Expect(err).To(HaveOccurred())
	})

	It("fails when the SOCKS addr is missing", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		stack := layer.ParamStack{}.Push(map[string]string{"socks_version": "5", "port": "1080"})
		_, _, err := r.Resolve(stack)
		Expect(err).To(HaveOccurred())
	})

	It("fails when the head of the stack is missing entirely", func() {
		next := &recordingResolver{}
		r := proxy.NewResolver(next)

		_, _, err := r.Resolve(layer.ParamStack{})
		Expect(err).To(HaveOccurred())
	})
})
