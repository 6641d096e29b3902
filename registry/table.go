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

// Package registry provides the mutex+map Add/Get/Del/Walk idiom shared by
// the interface manager, the routing table and the session manager: every
// process-wide table this module needs is an explicit value of this type
// constructed once by the caller and threaded down, never a package-level
// global.
package registry

import "sync"

// Table is a thread-safe key/value map with no ordering guarantees beyond
// what Walk's caller imposes on the snapshot it is handed.
type Table[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// New returns an empty Table.
func New[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{m: make(map[K]V)}
}

// Add inserts or overwrites the value stored at key.
func (t *Table[K, V]) Add(key K, val V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[key] = val
}

// Get returns the value stored at key and whether it was present.
func (t *Table[K, V]) Get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.m[key]
	return v, ok
}

// Del removes key, if present.
func (t *Table[K, V]) Del(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, key)
}

// Len returns the number of entries currently stored.
func (t *Table[K, V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}

// Walk calls fn once per entry, in an unspecified order, over a snapshot
// taken under the read lock. Stops early if fn returns false.
func (t *Table[K, V]) Walk(fn func(key K, val V) bool) {
	t.mu.RLock()
	snap := make(map[K]V, len(t.m))
	for k, v := range t.m {
		snap[k] = v
	}
	t.mu.RUnlock()

	for k, v := range snap {
		if !fn(k, v) {
			return
		}
	}
}
