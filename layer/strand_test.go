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
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/sockfwd/layer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Strand", func() {
	It("runs every closure enqueued from many goroutines", func() {
		s := layer.NewStrand(4)
		defer s.Close()

		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s.Run(func() {
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
				})
			}(i)
		}
		wg.Wait()
		Expect(order).To(HaveLen(20))
	})

	It("Run blocks its caller until the closure has actually executed", func() {
		s := layer.NewStrand(1)
		defer s.Close()

		var done atomic.Bool
		s.Run(func() {
			time.Sleep(20 * time.Millisecond)
			done.Store(true)
		})
		Expect(done.Load()).To(BeTrue())
	})

	It("Post does not wait for the closure to run", func() {
		s := layer.NewStrand(1)
		defer s.Close()

		release := make(chan struct{})
		var ran atomic.Bool
		s.Post(func() {
			<-release
			ran.Store(true)
		})
		Expect(ran.Load()).To(BeFalse())
		close(release)
		Eventually(ran.Load).Should(BeTrue())
	})

	It("never runs two enqueued closures concurrently", func() {
		s := layer.NewStrand(8)
		defer s.Close()

		var active atomic.Int32
		var maxActive atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Run(func() {
					n := active.Add(1)
					for {
						m := maxActive.Load()
						if n <= m || maxActive.CompareAndSwap(m, n) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					active.Add(-1)
				})
			}()
		}
		wg.Wait()
		Expect(maxActive.Load()).To(Equal(int32(1)))
	})

	It("Close drains pending work and then returns", func() {
		s := layer.NewStrand(4)
		var ran atomic.Bool
		s.Post(func() { ran.Store(true) })
		s.Close()
		Expect(ran.Load()).To(BeTrue())
	})
})
