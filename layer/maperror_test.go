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
	"io"
	"net"
	"syscall"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MapNetError", func() {
	It("returns nil for a nil input", func() {
		Expect(layer.MapNetError(nil)).To(BeNil())
	})

	DescribeTable("maps a raw net/os error to the matching domain code",
		func(raw error, code errors.CodeError) {
			mapped := layer.MapNetError(raw)
			e := errors.Get(mapped)
			Expect(e).ToNot(BeNil())
			Expect(e.IsCode(code)).To(BeTrue())
		},
		Entry("io.EOF", io.EOF, layer.ErrBrokenPipe),
		Entry("net.ErrClosed", net.ErrClosed, layer.ErrOperationAborted),
		Entry("context.Canceled", context.Canceled, layer.ErrOperationAborted),
		Entry("context.DeadlineExceeded", context.DeadlineExceeded, layer.ErrOperationAborted),
		Entry("ECONNRESET", syscall.ECONNRESET, layer.ErrBrokenPipe),
		Entry("ECONNREFUSED", syscall.ECONNREFUSED, layer.ErrConnectionRefused),
		Entry("ECONNABORTED", syscall.ECONNABORTED, layer.ErrConnectionAborted),
		Entry("EPIPE", syscall.EPIPE, layer.ErrBrokenPipe),
		Entry("EADDRINUSE", syscall.EADDRINUSE, layer.ErrAddressInUse),
		Entry("EADDRNOTAVAIL", syscall.EADDRNOTAVAIL, layer.ErrAddressNotAvailable),
	)

	It("leaves an already-domain-coded error unchanged", func() {
		original := layer.ErrBadAddress.Error(nil)
		Expect(layer.MapNetError(original)).To(Equal(original))
	})

	It("falls back to ErrIOError for an unrecognized plain error", func() {
		mapped := layer.MapNetError(io.ErrUnexpectedEOF)
		e := errors.Get(mapped)
		Expect(e).ToNot(BeNil())
		Expect(e.IsCode(layer.ErrIOError)).To(BeTrue())
	})
})
