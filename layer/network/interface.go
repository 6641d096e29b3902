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

// Package network assigns a 16-bit network_id to a bound iface.Socket and
// encapsulates every datagram with a 4-byte (source_id, dest_id) header,
// so the routing layer above can tell which locally bound network_id a
// relayed datagram belongs to and which one is the destination.
package network

import "github.com/nabbar/sockfwd/layer"

// headerSize is the wire size of the (source_id uint16, dest_id uint16)
// header every Send prepends and every Receive strips.
const headerSize = 4

type protocol struct{}

// Protocol is the shared layer.Protocol value for layer/network.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16                  { return 50 }
func (protocol) Overhead() int               { return headerSize }
func (protocol) MTU(nextMTU int) int         { return nextMTU - headerSize }
func (protocol) EndpointStackSize(n int) int { return 1 + n }
func (protocol) Facilities() layer.Facility  { return layer.FacilityDatagram }
