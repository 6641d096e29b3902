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
	"time"
)

// Deadliner is satisfied by net.Conn and every type this package's
// physical/proxy/crypto sockets wrap.
type Deadliner interface {
	SetDeadline(t time.Time) error
}

// RunCancelable runs op on its own goroutine and races it against ctx.
// Blocking net.Conn methods have no context support, so cancellation is
// implemented the same way the standard library's own net/http transport
// does it: forcing the deadline to the past wakes up the blocked syscall
// immediately. op must return promptly once d's deadline elapses.
//
// If ctx carries no deadline or cancellation (e.g. context.Background),
// RunCancelable degrades to a direct, non-canceled call.
func RunCancelable(ctx context.Context, d Deadliner, op func() (int, error)) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if ctx.Done() == nil {
		return op()
	}

	type result struct {
		n   int
		err error
	}

	done := make(chan result, 1)
	go func() {
		n, err := op()
		done <- result{n: n, err: err}
	}()

	select {
	case r := <-done:
		return r.n, r.err
	case <-ctx.Done():
		_ = d.SetDeadline(time.Now())
		r := <-done
		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.n, ErrOperationAborted.Error(ctxErr)
		}
		return r.n, r.err
	}
}
