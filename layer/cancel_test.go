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
	"context"
	"net"
	"time"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RunCancelable", func() {
	var a, b net.Conn

	BeforeEach(func() {
		a, b = net.Pipe()
	})

	AfterEach(func() {
		_ = a.Close()
		_ = b.Close()
	})

	It("returns op's own result unchanged when it finishes before ctx is done", func() {
		go func() { _, _ = b.Write([]byte("hi")) }()

		buf := make([]byte, 2)
		n, err := layer.RunCancelable(context.Background(), a, func() (int, error) {
			return a.Read(buf)
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("degrades to a direct call when ctx carries no deadline or cancellation", func() {
		n, err := layer.RunCancelable(context.Background(), a, func() (int, error) {
			return 7, nil
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(7))
	})

	It("forces the deadline and reports an aborted operation once ctx is canceled mid-call", func() {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := layer.RunCancelable(ctx, a, func() (int, error) {
				return a.Read(make([]byte, 8))
			})
			Expect(err).To(HaveOccurred())
			e := errors.Get(err)
			Expect(e).ToNot(BeNil())
			Expect(e.IsCode(layer.ErrOperationAborted)).To(BeTrue())
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()
		Eventually(done, 2*time.Second).Should(BeClosed())
	})

	It("treats nil ctx the same as context.Background", func() {
		n, err := layer.RunCancelable(nil, a, func() (int, error) {
			return 3, nil
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(3))
	})
})
