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

package registry_test

import (
	"sync"

	"github.com/nabbar/sockfwd/registry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Table", func() {
	var tbl *registry.Table[string, int]

	BeforeEach(func() {
		tbl = registry.New[string, int]()
	})

	Describe("Add and Get", func() {
		It("returns false for a missing key", func() {
			_, ok := tbl.Get("missing")
			Expect(ok).To(BeFalse())
		})

		It("returns the stored value once added", func() {
			tbl.Add("a", 1)
			v, ok := tbl.Get("a")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1))
		})

		It("overwrites an existing key", func() {
			tbl.Add("a", 1)
			tbl.Add("a", 2)
			v, _ := tbl.Get("a")
			Expect(v).To(Equal(2))
		})
	})

	Describe("Del", func() {
		It("removes a stored key", func() {
			tbl.Add("a", 1)
			tbl.Del("a")
			_, ok := tbl.Get("a")
			Expect(ok).To(BeFalse())
		})

		It("is a no-op on a missing key", func() {
			Expect(func() { tbl.Del("missing") }).ToNot(Panic())
		})
	})

	Describe("Len", func() {
		It("counts entries", func() {
			Expect(tbl.Len()).To(Equal(0))
			tbl.Add("a", 1)
			tbl.Add("b", 2)
			Expect(tbl.Len()).To(Equal(2))
			tbl.Del("a")
			Expect(tbl.Len()).To(Equal(1))
		})
	})

	Describe("Walk", func() {
		It("visits every entry", func() {
			tbl.Add("a", 1)
			tbl.Add("b", 2)
			tbl.Add("c", 3)

			seen := map[string]int{}
			tbl.Walk(func(k string, v int) bool {
				seen[k] = v
				return true
			})
			Expect(seen).To(Equal(map[string]int{"a": 1, "b": 2, "c": 3}))
		})

		It("stops early when fn returns false", func() {
			tbl.Add("a", 1)
			tbl.Add("b", 2)
			tbl.Add("c", 3)

			count := 0
			tbl.Walk(func(k string, v int) bool {
				count++
				return false
			})
			Expect(count).To(Equal(1))
		})

		It("walks a snapshot unaffected by concurrent mutation", func() {
			tbl.Add("a", 1)
			tbl.Add("b", 2)

			Expect(func() {
				tbl.Walk(func(k string, v int) bool {
					tbl.Add("c", 3)
					tbl.Del("b")
					return true
				})
			}).ToNot(Panic())
		})
	})

	Describe("concurrent use", func() {
		It("tolerates concurrent Add/Get/Del/Walk without racing", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					key := string(rune('a' + n%26))
					tbl.Add(key, n)
					tbl.Get(key)
					tbl.Walk(func(k string, v int) bool { return true })
					tbl.Del(key)
				}(i)
			}
			wg.Wait()
		})
	})
})
