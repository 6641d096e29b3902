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

// Package udp is the terminal physical layer binding the stack to an OS UDP
// socket. UDP is stateless and datagram-only; layer/iface binds to it.
package udp

import "github.com/nabbar/sockfwd/layer"

// mtu mirrors layer/tcp's conservative Ethernet estimate minus the smaller
// 8-byte UDP header (no TCP options/ack overhead to budget for).
const mtu = 1472

type protocol struct{}

// Protocol is the shared layer.Protocol value for every udp.Socket.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16    { return 2 }
func (protocol) Overhead() int { return 0 }

// MTU returns nextMTU capped at mtu, or mtu when nextMTU is not positive.
// udp.Socket is itself the bottom of the stack, so nextMTU is the physical
// link's own estimate and nothing further is subtracted from it here.
func (protocol) MTU(nextMTU int) int {
	if nextMTU <= 0 || nextMTU > mtu {
		return mtu
	}
	return nextMTU
}

func (protocol) EndpointStackSize(int) int { return 1 }
func (protocol) Facilities() layer.Facility {
	return layer.FacilityDatagram
}
