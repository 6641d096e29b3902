/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package atomic

import (
	"sync"
	"sync/atomic"
)

type Value[T any] interface {
	// SetDefaultLoad sets the value Load returns when nothing has been stored yet.
	SetDefaultLoad(def T)
	// SetDefaultStore sets the value substituted whenever Store is called with the zero value.
	SetDefaultStore(def T)

	// Load returns the stored value, or the default load value if none was stored.
	Load() (val T)
	// Store sets the value, substituting the default store value for a zero val.
	Store(val T)
	// Swap stores new and returns the previous value, substituting the default store value for a zero new.
	Swap(new T) (old T)
	// CompareAndSwap stores new if the current value equals old, and reports whether it did.
	CompareAndSwap(old, new T) (swapped bool)
}

type Map[K comparable] interface {
	// Load returns the value stored for key, and whether it was present.
	Load(key K) (value any, ok bool)
	// Store sets the value for key, overwriting any existing entry.
	Store(key K, value any)

	// LoadOrStore returns the existing value for key if present, otherwise stores and returns value.
	LoadOrStore(key K, value any) (actual any, loaded bool)
	// LoadAndDelete removes key and returns its value, if it was present.
	LoadAndDelete(key K) (value any, loaded bool)

	// Delete removes key if it is present; it reports nothing back.
	Delete(key K)
	// Swap stores value for key and returns the previous value for that key, if any.
	Swap(key K, value any) (previous any, loaded bool)

	// CompareAndSwap stores new for key if the current value equals old, and reports whether it did.
	CompareAndSwap(key K, old, new any) bool
	// CompareAndDelete removes key if its current value equals old, and reports whether it did.
	CompareAndDelete(key K, old any) (deleted bool)

	// Range calls f for each entry until f returns false. Iteration order is unspecified.
	Range(f func(key K, value any) bool)
}

type MapTyped[K comparable, V any] interface {
	// Load returns the value stored for key, and whether it was present.
	Load(key K) (value V, ok bool)
	// Store sets the value for key, overwriting any existing entry.
	Store(key K, value V)

	// LoadOrStore returns the existing value for key if present, otherwise stores and returns value.
	LoadOrStore(key K, value V) (actual V, loaded bool)
	// LoadAndDelete removes key and returns its value, if it was present.
	LoadAndDelete(key K) (value V, loaded bool)

	// Delete removes key if it is present; it reports nothing back.
	Delete(key K)
	// Swap stores value for key and returns the previous value for that key, if any.
	Swap(key K, value V) (previous V, loaded bool)

	// CompareAndSwap stores new for key if the current value equals old, and reports whether it did.
	CompareAndSwap(key K, old, new V) bool
	// CompareAndDelete removes key if its current value equals old, and reports whether it did.
	CompareAndDelete(key K, old V) (deleted bool)

	// Range calls f for each entry until f returns false. Iteration order is unspecified.
	Range(f func(key K, value V) bool)
}

// NewValue returns a Value with both default load and default store set to the zero value of T.
func NewValue[T any]() Value[T] {
	var (
		tmp1 T
		tmp2 T
	)

	return NewValueDefault[T](tmp1, tmp2)
}

// NewValueDefault returns a Value with the given default load and default store values.
func NewValueDefault[T any](load, store T) Value[T] {
	o := &val[T]{
		av: new(atomic.Value),
		dl: new(atomic.Value),
		ds: new(atomic.Value),
	}

	o.SetDefaultLoad(load)
	o.SetDefaultStore(store)

	return o
}

// NewMapAny returns a Map backed by a sync.Map.
func NewMapAny[K comparable]() Map[K] {
	return &ma[K]{
		m: sync.Map{},
	}
}

// NewMapTyped returns a MapTyped backed by a sync.Map, wrapping values as V.
func NewMapTyped[K comparable, V any]() MapTyped[K, V] {
	return &mt[K, V]{
		m: NewMapAny[K](),
	}
}
