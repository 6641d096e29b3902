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

// Package crypto wraps a stream layer in mutual TLS, with a thin variant
// that delegates reads and writes straight to the TLS engine, and a
// buffered ("pull-loop") variant that runs a dedicated puller goroutine
// feeding a private buffer so user reads return immediately from
// already-pulled bytes instead of waiting on a single TLS record.
package crypto

import (
	"github.com/nabbar/sockfwd/layer"
)

// Variant selects between the thin and buffered Socket implementations.
type Variant uint8

const (
	VariantThin Variant = iota
	VariantBuffered
)

const (
	// pullChunk is the size of the slice each puller read fills; one read
	// adds at most this many bytes to the private buffer.
	pullChunk = 50 * 1024

	// pullHighWater is the buffered byte count at which the puller pauses.
	pullHighWater = 16 * 1024 * 1024

	// pullLowWater is the buffered byte count below which a paused puller
	// resumes.
	pullLowWater = 1024 * 1024
)

type protocol struct{}

// Protocol is the shared layer.Protocol value for every crypto.Socket.
// TLS record overhead is absorbed by the engine itself (the caller never
// sees ciphertext), so Overhead is reported as 0 and MTU passes through
// the next layer's own MTU unchanged; the real per-record overhead only
// affects how many next-layer writes one user write turns into, which
// crypto/tls already manages internally.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16          { return 20 }
func (protocol) Overhead() int       { return 0 }
func (protocol) MTU(nextMTU int) int { return nextMTU }
func (protocol) EndpointStackSize(n int) int {
	return 1 + n
}
func (protocol) Facilities() layer.Facility {
	return layer.FacilityStream
}
