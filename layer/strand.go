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

// Strand serializes operations that must never run concurrently against
// the same underlying resource — one TLS socket's handshake/read/write, or
// one fiber demultiplexer's outbound writer. It is a single goroutine fed
// by a buffered channel of closures, the Go rendering of an asio-style
// serialized execution context.
type Strand struct {
	work chan func()
	done chan struct{}
}

// NewStrand starts a Strand's worker goroutine. backlog sizes the buffered
// channel of pending closures; Run blocks once the backlog is full.
func NewStrand(backlog int) *Strand {
	if backlog < 1 {
		backlog = 1
	}
	s := &Strand{
		work: make(chan func(), backlog),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Strand) loop() {
	defer close(s.done)
	for fn := range s.work {
		fn()
	}
}

// Run enqueues fn and blocks until it has been executed on the strand's
// goroutine.
func (s *Strand) Run(fn func()) {
	done := make(chan struct{})
	s.work <- func() {
		defer close(done)
		fn()
	}
	<-done
}

// Post enqueues fn without waiting for it to execute.
func (s *Strand) Post(fn func()) {
	s.work <- fn
}

// Close stops accepting new work and waits for the goroutine to drain and
// exit. It is not safe to call Run or Post after Close returns.
func (s *Strand) Close() {
	close(s.work)
	<-s.done
}
