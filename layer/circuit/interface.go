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

// Package circuit is a data-link layer chaining N hops end to end over a
// single physical stream. The client dials only the
// first hop; every following hop is reached by exchanging more handshake
// messages on that same stream once the current hop has spliced itself
// into a plain forwarder.
package circuit

import "github.com/nabbar/sockfwd/layer"

// Role is a capability an Acceptor has bound an id to. Under the split
// acceptor model, the same id may be bound with both a forwarding
// and a terminating role — is why an id maps to a set of Role, not one.
type Role uint8

const (
	RoleForward Role = iota
	RoleTerminate
)

// HopSpec names one link of the chain: the id the current hop will be
// asked for in its InitConnection, and the parameter stack needed to dial
// it (the layers below circuit — typically TLS<TCP>).
type HopSpec struct {
	ID     string
	Params layer.ParamStack
}

// Config is the circuit layer's resolved, static configuration: the id of
// the first hop (the one this process dials directly) plus the ordered
// chain of hops beyond it, down to the real server.
type Config struct {
	ID            string
	Hops          []HopSpec
	DefaultParams layer.ParamStack
}

type protocol struct{}

// Protocol is the shared layer.Protocol value for layer/circuit. Every
// InitConnection/ValidateConnection round trip costs one stack depth but no
// per-byte framing overhead once the handshake completes.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16                  { return 30 }
func (protocol) Overhead() int               { return 0 }
func (protocol) MTU(nextMTU int) int         { return nextMTU }
func (protocol) EndpointStackSize(n int) int { return 1 + n }
func (protocol) Facilities() layer.Facility  { return layer.FacilityStream }
