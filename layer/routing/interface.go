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

// Package routing holds the named Router: a process-wide table resolving
// a 32-bit network_address to the 16-bit network_id it is currently
// reachable through, plus a relay table resolving a destination
// network_id to the next-hop socket that forwards toward it. A
// routing.Socket binds a single (network_address, router)
// pair and, once bound, is a plain pass-through datagram socket over its
// own network_id link; the Router is the separate, shared piece that a
// relay node consults to forward traffic between links it does not itself
// terminate.
package routing

import "github.com/nabbar/sockfwd/layer"

type protocol struct{}

// Protocol is the shared layer.Protocol value for layer/routing: it adds
// no framing of its own, only a process-wide lookup on top of the network
// layer underneath.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16                  { return 60 }
func (protocol) Overhead() int               { return 0 }
func (protocol) MTU(nextMTU int) int         { return nextMTU }
func (protocol) EndpointStackSize(n int) int { return 1 + n }
func (protocol) Facilities() layer.Facility  { return layer.FacilityDatagram }
