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
	"fmt"
	"reflect"
)

// Endpoint is the recursive address value shared by every layer: a pair
// (context, next) plus a "set" flag, compared set-state first, then
// context, then recursively on next. Endpoints are immutable value types;
// sharing one between two sockets (e.g. a listening endpoint and the peer
// socket an Acceptor hands out) is free because there is nothing to copy
// that isn't already safe to share.
type Endpoint interface {
	// Context returns this layer's own address fragment (e.g. a *net.TCPAddr
	// for layer/tcp, a circuit hop id for layer/circuit).
	Context() interface{}
	// Next returns the endpoint of the next layer down, or nil at the
	// bottom of the stack.
	Next() Endpoint
	// IsSet reports whether this endpoint carries a concrete address, as
	// opposed to a zero-value placeholder (e.g. the local endpoint of a
	// socket that has not yet been bound).
	IsSet() bool
	// Equal implements this type's equality law:
	// a == b ⇔ context(a) == context(b) ∧ next(a) == next(b) ∧ set(a) == set(b).
	Equal(other Endpoint) bool
	String() string
}

// point is the concrete, layer-agnostic Endpoint implementation every
// concrete layer's endpoint type embeds or wraps.
type point struct {
	ctx  interface{}
	next Endpoint
	set  bool
}

// NewEndpoint builds an Endpoint from a layer-specific context value, the
// next layer's endpoint, and whether this endpoint is concretely set.
func NewEndpoint(ctx interface{}, next Endpoint, set bool) Endpoint {
	return &point{ctx: ctx, next: next, set: set}
}

// ZeroEndpoint is the unset placeholder endpoint, used as the LocalEndpoint
// or RemoteEndpoint of a socket before it is bound or connected.
func ZeroEndpoint() Endpoint {
	return &point{set: false}
}

func (p *point) Context() interface{} { return p.ctx }
func (p *point) Next() Endpoint       { return p.next }
func (p *point) IsSet() bool          { return p.set }

func (p *point) Equal(other Endpoint) bool {
	if other == nil {
		return false
	}
	if p.set != other.IsSet() {
		return false
	}
	if !reflect.DeepEqual(p.ctx, other.Context()) {
		return false
	}

	n1, n2 := p.next, other.Next()
	if n1 == nil && n2 == nil {
		return true
	}
	if n1 == nil || n2 == nil {
		return false
	}
	return n1.Equal(n2)
}

func (p *point) String() string {
	if !p.set {
		return "<unset>"
	}
	if p.next == nil {
		return fmt.Sprintf("%v", p.ctx)
	}
	return fmt.Sprintf("%v < %s", p.ctx, p.next.String())
}
