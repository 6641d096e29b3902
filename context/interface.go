/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package context

import (
	"context"

	libatm "github.com/nabbar/sockfwd/atomic"
)

type FuncContextConfig[T comparable] func() Config[T]
type FuncWalk[T comparable] func(key T, val interface{}) bool

type MapManage[T comparable] interface {
	// Clean removes every key-value pair.
	Clean()
	// Load returns the value stored for key, and whether it was present.
	Load(key T) (val interface{}, ok bool)
	// Store sets the value for key; a nil cfg leaves key unchanged.
	Store(key T, cfg interface{})
	// Delete removes key if it is present; it reports nothing back.
	Delete(key T)
}

type Context interface {
	// GetContext returns the associated context, or context.Background if none was set.
	GetContext() context.Context
}

type Config[T comparable] interface {
	context.Context
	MapManage[T]
	Context

	// Clone returns an independent copy of this Config under ctx, or the current context if ctx is nil.
	Clone(ctx context.Context) Config[T]
	// Merge copies every entry of cfg into this Config, reporting whether it did anything.
	Merge(cfg Config[T]) bool
	// Walk calls fct for every key-value pair.
	Walk(fct FuncWalk[T])
	// WalkLimit calls fct for every key-value pair whose key is in validKeys, or all pairs if validKeys is empty.
	WalkLimit(fct FuncWalk[T], validKeys ...T)

	// LoadOrStore returns the existing value for key if present, otherwise stores and returns cfg.
	LoadOrStore(key T, cfg interface{}) (val interface{}, loaded bool)
	// LoadAndDelete removes key and returns its value, if it was present.
	LoadAndDelete(key T) (val interface{}, loaded bool)
}

// New returns a Config backed by ctx, defaulting to context.Background if ctx is nil.
func New[T comparable](ctx context.Context) Config[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	return &ccx[T]{
		m: libatm.NewMapAny[T](),
		x: ctx,
	}
}

// Deprecated: see New
func NewConfig[T comparable](ctx context.Context) Config[T] {
	return New[T](ctx)
}
