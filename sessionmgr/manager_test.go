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

package sessionmgr_test

import (
	"sync/atomic"

	"github.com/nabbar/sockfwd/sessionmgr"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeSession struct {
	stopped atomic.Bool
}

func (f *fakeSession) Stop() { f.stopped.Store(true) }

var _ = Describe("Manager", func() {
	var mgr *sessionmgr.Manager

	BeforeEach(func() {
		mgr = sessionmgr.New()
	})

	Describe("Add and Get", func() {
		It("returns a fresh id per session and retrieves it back", func() {
			s1 := &fakeSession{}
			s2 := &fakeSession{}

			id1 := mgr.Add(s1)
			id2 := mgr.Add(s2)
			Expect(id1).ToNot(Equal(id2))

			got, ok := mgr.Get(id1)
			Expect(ok).To(BeTrue())
			Expect(got).To(BeIdenticalTo(s1))
		})

		It("reports absence for an unknown id", func() {
			_, ok := mgr.Get(999)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Remove", func() {
		It("forgets a session without stopping it", func() {
			s := &fakeSession{}
			id := mgr.Add(s)
			mgr.Remove(id)

			_, ok := mgr.Get(id)
			Expect(ok).To(BeFalse())
			Expect(s.stopped.Load()).To(BeFalse())
		})
	})

	Describe("Len", func() {
		It("tracks how many sessions are registered", func() {
			Expect(mgr.Len()).To(Equal(0))
			mgr.Add(&fakeSession{})
			mgr.Add(&fakeSession{})
			Expect(mgr.Len()).To(Equal(2))
		})
	})

	Describe("StopAll", func() {
		It("stops every registered session and forgets it", func() {
			s1 := &fakeSession{}
			s2 := &fakeSession{}
			mgr.Add(s1)
			mgr.Add(s2)

			mgr.StopAll()

			Expect(s1.stopped.Load()).To(BeTrue())
			Expect(s2.stopped.Load()).To(BeTrue())
			Expect(mgr.Len()).To(Equal(0))
		})

		It("is idempotent on a second call", func() {
			s := &fakeSession{}
			mgr.Add(s)

			mgr.StopAll()
			Expect(func() { mgr.StopAll() }).ToNot(Panic())
		})

		It("does not stop a session added only after the first StopAll", func() {
			s1 := &fakeSession{}
			mgr.Add(s1)
			mgr.StopAll()

			s2 := &fakeSession{}
			mgr.Add(s2)
			mgr.StopAll()

			Expect(s2.stopped.Load()).To(BeFalse())
		})
	})
})
