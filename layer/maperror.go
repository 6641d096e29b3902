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

package layer

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	liberr "github.com/nabbar/sockfwd/errors"
)

// MapNetError transforms a raw net/os-level error into one of this
// package's domain codes, per the propagation policy: an underlying I/O
// error either becomes a domain-specific one or passes through unchanged.
// A nil input yields a nil result.
func MapNetError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, io.EOF):
		return ErrBrokenPipe.Error(err)
	case errors.Is(err, net.ErrClosed):
		return ErrOperationAborted.Error(err)
	case errors.Is(err, context.Canceled):
		return ErrOperationAborted.Error(err)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrOperationAborted.Error(err)
	case errors.Is(err, syscall.ECONNRESET):
		return ErrBrokenPipe.Error(err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return ErrConnectionRefused.Error(err)
	case errors.Is(err, syscall.ECONNABORTED):
		return ErrConnectionAborted.Error(err)
	case errors.Is(err, syscall.EPIPE):
		return ErrBrokenPipe.Error(err)
	case errors.Is(err, syscall.EADDRINUSE):
		return ErrAddressInUse.Error(err)
	case errors.Is(err, syscall.EADDRNOTAVAIL):
		return ErrAddressNotAvailable.Error(err)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return ErrOperationAborted.Error(err)
	}

	if liberr.Get(err) != nil {
		return err
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ErrIOError.Error(err)
	}

	return ErrIOError.Error(err)
}
