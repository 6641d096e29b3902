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

// Package sessionmgr is the process-wide manager of active sessions (each,
// e.g., one forwarder.Splice fronting a circuit hop), assigning each a
// monotonic id so StopAll can tear every one of them down at shutdown.
package sessionmgr

import (
	"sync"
	"sync/atomic"

	"github.com/nabbar/sockfwd/registry"
)

// Session is anything a Manager can stop on demand. forwarder.Splice
// satisfies this directly; application services registering other kinds
// of long-running work implement it the same way.
type Session interface {
	Stop()
}

// Manager assigns each added Session a monotonic id and keeps a strong
// reference to it only for as long as it takes to call Stop during
// shutdown; it does not own session lifetimes beyond that. Built on
// registry.Table, the same Add/Get/Del/Walk primitive layer/iface and
// layer/routing use for their own process-wide tables.
type Manager struct {
	table *registry.Table[uint64, Session]
	next  atomic.Uint64

	mu      sync.Mutex
	stopped bool
}

// New returns an empty session manager.
func New() *Manager {
	return &Manager{table: registry.New[uint64, Session]()}
}

// Add registers s under a freshly allocated monotonic id and returns it,
// so the caller can later Get or explicitly remove the same session.
func (m *Manager) Add(s Session) uint64 {
	id := m.next.Add(1)
	m.table.Add(id, s)
	return id
}

// Get returns the session registered under id, if any.
func (m *Manager) Get(id uint64) (Session, bool) {
	return m.table.Get(id)
}

// Remove unregisters id without stopping it; used once a session has
// already stopped itself and only needs to be forgotten.
func (m *Manager) Remove(id uint64) {
	m.table.Del(id)
}

// Len reports how many sessions are currently registered.
func (m *Manager) Len() int {
	return m.table.Len()
}

// StopAll calls Stop on every currently registered session and forgets
// them. Safe to call more than once; later calls are a no-op once the
// manager has already been drained.
func (m *Manager) StopAll() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()

	var ids []uint64
	m.table.Walk(func(id uint64, s Session) bool {
		ids = append(ids, id)
		s.Stop()
		return true
	})
	for _, id := range ids {
		m.table.Del(id)
	}
}
