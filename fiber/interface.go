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

// Package fiber turns one reliable ordered byte stream into many virtual
// ones: a Demux owns the underlying stream and a single reader task,
// dispatching 12-byte-framed packets to stream fibers, datagram fibers, or
// acceptor-fibers identified by (local_port, remote_port). It is the
// hardest and most original subsystem in this module and gets the most
// direct code; the other layers exist to deliver one reliable byte stream
// up to this package.
package fiber

import "github.com/nabbar/sockfwd/layer"

// frameType distinguishes the six packet kinds this layer's wire format
// names.
type frameType uint8

const (
	frameStreamData frameType = 1
	frameDgrData    frameType = 2
	frameSYN        frameType = 3
	frameSynAck     frameType = 4
	frameRST        frameType = 5
	frameAckWindow  frameType = 6
)

const (
	// headerSize is the fixed 12-byte frame header: type(1) flags(1)
	// length(2) local_port(4) remote_port(4).
	headerSize = 12

	// fiberMTU is this layer's own payload ceiling ("maximum payload length
	// is 60 KiB minus lower-layer overheads"); the actual per-send chunk
	// size is further capped by the stack's own MTU at runtime.
	fiberMTU = 60 * 1024

	// synBacklog is the maximum number of queued SYNs per acceptor-fiber
	// before further SYNs are RST.
	synBacklog = 128

	// dgrQueueBound is the maximum number of buffered datagrams per
	// datagram fiber before the oldest is dropped.
	dgrQueueBound = 256

	// recvLowWater/recvHighWater are the per-fiber stream receive buffer's
	// resume/pause thresholds.
	recvLowWater  = 256 * 1024
	recvHighWater = 1024 * 1024
)

type protocol struct{}

// Protocol is the shared layer.Protocol value for the fiber layer. fiber
// has no parameter-stack endpoint of its own — its endpoint is the
// (local_port, remote_port) pair negotiated at Connect or Accept time —
// so this exists only for the diagnostic ID/overhead/MTU bookkeeping
// every other layer provides.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16    { return 70 }
func (protocol) Overhead() int { return headerSize }
func (protocol) MTU(nextMTU int) int {
	m := nextMTU - headerSize
	if m > fiberMTU {
		return fiberMTU
	}
	return m
}
func (protocol) EndpointStackSize(n int) int { return 1 + n }
func (protocol) Facilities() layer.Facility {
	return layer.FacilityStream | layer.FacilityDatagram
}

// Port builds the Endpoint passed to Stream.Connect/Datagram.Connect or to
// Bind: fiber addresses a peer by a bare uint32 port, not a parameter
// stack.
func Port(port uint32) layer.Endpoint {
	return layer.NewEndpoint(port, nil, true)
}
