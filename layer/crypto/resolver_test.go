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

package crypto_test

import (
	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/layer/crypto"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingResolver struct {
	got layer.ParamStack
}

func (r *recordingResolver) Resolve(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
	r.got = stack
	return layer.NewEndpoint("dialed", nil, true), stack.Tail(), nil
}

var _ = Describe("NewResolver", func() {
	It("parses a complete buffer-sourced config and recurses into next on the tail", func() {
		next := &recordingResolver{}
		r := crypto.NewResolver(next, crypto.VariantThin)

		tail := layer.ParamStack{}.Push(map[string]string{"next_layer": "marker"})
		stack := tail.Push(map[string]string{
			"server_name": "localhost",
			"ca_src": "buffer", "ca_buffer": "ca-pem",
			"crt_src": "buffer", "crt_buffer": "crt-pem",
			"key_src": "buffer", "key_buffer": "key-pem",
			"cipher_list": "TLS_AES_128_GCM_SHA256,TLS_AES_256_GCM_SHA384",
		})

		ep, tail, err := r.Resolve(stack)
		Expect(err).ToNot(HaveOccurred())

		cfg, ok := ep.Context().(crypto.Config)
		Expect(ok).To(BeTrue())
		Expect(cfg.ServerName).To(Equal("localhost"))
		Expect(cfg.Variant).To(Equal(crypto.VariantThin))
		Expect(cfg.CASrc).To(Equal("buffer"))
		Expect(cfg.CABuffer).To(Equal("ca-pem"))
		Expect(cfg.CrtBuffer).To(Equal("crt-pem"))
		Expect(cfg.KeyBuffer).To(Equal("key-pem"))
		Expect(cfg.Ciphers).To(Equal([]string{"TLS_AES_128_GCM_SHA256", "TLS_AES_256_GCM_SHA384"}))

		Expect(ep.Next()).ToNot(BeNil())
		Expect(tail).To(BeEmpty())
		Expect(next.got.Head()).To(Equal(map[string]string{"next_layer": "marker"}))
	})

	It("fails when ca_src is missing", func() {
		next := &recordingResolver{}
		r := crypto.NewResolver(next, crypto.VariantThin)

		stack := layer.ParamStack{}.Push(map[string]string{
			"crt_src": "buffer", "crt_buffer": "crt-pem",
			"key_src": "buffer", "key_buffer": "key-pem",
		})
		_, _, err := r.Resolve(stack)
		Expect(err).To(HaveOccurred())
	})

	It("fails when crt_src names a file source with no crt_file", func() {
		next := &recordingResolver{}
		r := crypto.NewResolver(next, crypto.VariantThin)

		stack := layer.ParamStack{}.Push(map[string]string{
			"ca_src": "buffer", "ca_buffer": "ca-pem",
			"crt_src": "file",
			"key_src": "buffer", "key_buffer": "key-pem",
		})
		_, _, err := r.Resolve(stack)
		Expect(err).To(HaveOccurred())
	})

	It("accepts a config with no dhparam_src at all", func() {
		next := &recordingResolver{}
		r := crypto.NewResolver(next, crypto.VariantBuffered)

		stack := layer.ParamStack{}.Push(map[string]string{
			"ca_src": "buffer", "ca_buffer": "ca-pem",
			"crt_src": "buffer", "crt_buffer": "crt-pem",
			"key_src": "buffer", "key_buffer": "key-pem",
		})
		ep, _, err := r.Resolve(stack)
		Expect(err).ToNot(HaveOccurred())
		cfg := ep.Context().(crypto.Config)
		Expect(cfg.DHParamSrc).To(BeEmpty())
		Expect(cfg.Variant).To(Equal(crypto.VariantBuffered))
	})

	It("fails when the head of the stack is missing entirely", func() {
		next := &recordingResolver{}
		r := crypto.NewResolver(next, crypto.VariantThin)

		_, _, err := r.Resolve(layer.ParamStack{})
		Expect(err).To(HaveOccurred())
	})
})
