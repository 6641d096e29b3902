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

// Package layer defines the generic contract every protocol layer of the
// stack implements: a Protocol of compile-time-ish constants, a recursive
// Endpoint, a Resolver that turns a parameter stack into an Endpoint, and
// the Socket/Acceptor pair that every concrete layer (layer/tcp, layer/udp,
// layer/proxy, layer/crypto, layer/circuit, layer/iface, fiber, ...) wraps
// around its next layer, the same way crypto/tls.Conn wraps a net.Conn.
//
// A stack is a plain Go value composed at construction time, e.g. a
// fiber.Demux riding on a circuit.Socket riding on a crypto.Socket riding on
// a tcp.Socket: each layer's Socket holds the next layer's Socket and
// delegates to it, annotating results as it goes back up.
package layer

import "context"

// Facility enumerates what kind of traffic a layer can carry. A layer
// exposes an Acceptor only when it advertises FacilityStream.
type Facility uint8

const (
	FacilityStream Facility = 1 << iota
	FacilityDatagram
)

// Has reports whether f includes the given facility.
func (f Facility) Has(o Facility) bool {
	return f&o != 0
}

func (f Facility) String() string {
	switch {
	case f.Has(FacilityStream) && f.Has(FacilityDatagram):
		return "stream+datagram"
	case f.Has(FacilityStream):
		return "stream"
	case f.Has(FacilityDatagram):
		return "datagram"
	default:
		return "none"
	}
}

// Protocol carries the per-layer constants every layer needs to publish: a
// numeric id, a fixed per-frame overhead, the MTU this layer offers to the
// layer above it (derived from the next layer's MTU), the endpoint stack
// depth, and the facilities this layer carries.
type Protocol interface {
	// ID is a small numeric identifier for this layer, unique within a
	// running process; used for diagnostics, not for wire framing.
	ID() uint16
	// Overhead is the number of bytes this layer consumes from every frame
	// it forwards to the next layer (header, padding, framing).
	Overhead() int
	// MTU returns the maximum payload this layer can carry given the next
	// layer's MTU.
	MTU(nextMTU int) int
	// EndpointStackSize returns 1 + nextSize: the depth of the endpoint
	// chain rooted at this layer.
	EndpointStackSize(nextSize int) int
	// Facilities reports what kind of traffic this layer carries.
	Facilities() Facility
}

// ShutdownMode selects which half of a full-duplex Socket to shut down.
type ShutdownMode uint8

const (
	ShutdownRead ShutdownMode = iota
	ShutdownWrite
	ShutdownBoth
)

// Socket is the operation set every layer's socket type exposes. Every
// blocking method takes a context.Context instead of a completion
// callback: the Go-idiomatic rendering of asynchronous I/O in a runtime
// that supports cancellation.
type Socket interface {
	// Open prepares the socket for use (e.g. opens the underlying OS
	// descriptor) without binding or connecting it.
	Open(ctx context.Context) error
	// Bind associates the socket with a local Endpoint, for later Accept
	// (via an Acceptor) or for a connectionless Send/Receive pair.
	Bind(ctx context.Context, local Endpoint) error
	// Connect establishes the socket against a remote Endpoint, recursing
	// into the next layer's Connect as needed.
	Connect(ctx context.Context, remote Endpoint) error
	// Close releases the socket and, unless shared, its next-layer socket.
	Close() error
	// Shutdown half- or fully-closes the socket without releasing it.
	Shutdown(how ShutdownMode) error
	// Send writes p, fragmenting or framing it as this layer requires, and
	// returns the number of bytes of p consumed.
	Send(ctx context.Context, p []byte) (int, error)
	// Receive reads into p and returns the number of bytes written into p.
	Receive(ctx context.Context, p []byte) (int, error)
	// LocalEndpoint returns the endpoint this socket is bound or connected
	// from, or a zero Endpoint if unset.
	LocalEndpoint() Endpoint
	// RemoteEndpoint returns the endpoint this socket is connected to, or a
	// zero Endpoint if unset.
	RemoteEndpoint() Endpoint
	// Cancel posts ErrOperationAborted to every pending op on this socket
	// without closing it.
	Cancel()
}

// Acceptor is exposed only by stream-facility layers. It mirrors Socket's
// lifecycle but produces new Sockets instead of carrying data itself.
type Acceptor interface {
	// Open prepares the acceptor for use.
	Open(ctx context.Context) error
	// Bind associates the acceptor with the local Endpoint it will listen
	// on.
	Bind(ctx context.Context, local Endpoint) error
	// Listen marks the acceptor ready to accept, with backlog pending
	// connections queued before new attempts are refused.
	Listen(backlog int) error
	// Close releases the acceptor, canceling every pending Accept with
	// ErrOperationAborted and closing any next-layer resource it owns
	// uniquely.
	Close() error
	// Accept blocks until a peer socket is available or ctx is done.
	Accept(ctx context.Context) (Socket, error)
}

// Resolver turns a parameter stack into a fully populated Endpoint by
// consuming the head map and recursing into the next layer's Resolver on
// the tail. Missing required fields must be reported as
// ErrMissingConfigParameters; an unknown layer name as ErrInvalidArgument.
type Resolver interface {
	Resolve(stack ParamStack) (Endpoint, ParamStack, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(stack ParamStack) (Endpoint, ParamStack, error)

func (f ResolverFunc) Resolve(stack ParamStack) (Endpoint, ParamStack, error) {
	return f(stack)
}
