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

// Package tcp is the terminal physical layer binding the stack to an OS TCP
// socket. It is the bottommost layer of every canonical stack composition
// (e.g. Fiber < Circuit < TLS < TCP).
package tcp

import "github.com/nabbar/sockfwd/layer"

// mtu is the conservative Ethernet MTU (1500) minus typical IPv4+TCP
// headers (20+20, plus room for TCP options).
const mtu = 1440

// protocol implements layer.Protocol for the physical TCP layer.
type protocol struct{}

// Protocol is the shared layer.Protocol value for every tcp.Socket.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16        { return 1 }
func (protocol) Overhead() int     { return 0 }
func (protocol) MTU(int) int       { return mtu }
func (protocol) EndpointStackSize(int) int {
	return 1
}
func (protocol) Facilities() layer.Facility {
	return layer.FacilityStream
}
