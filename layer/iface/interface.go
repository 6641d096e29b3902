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

// Package iface names a connected/bound datagram transport by a string
// interface_id and lets multiple upper-layer sockets share the same
// underlying transport instead of each binding their own.
package iface

import (
	"sync"

	"github.com/nabbar/sockfwd/layer"
	"github.com/nabbar/sockfwd/registry"
)

// Manager is the process-wide interface table: an explicit value
// constructed once by the caller and threaded down, never a package-level
// global. It is a registry.Table of refcounted transports rather than of
// bare layer.Socket values, because several upper-layer sockets may share
// one interface and the last one out must be the one that actually closes
// it.
type Manager = *registry.Table[string, *shared]

// NewManager returns an empty interface table.
func NewManager() Manager {
	return registry.New[string, *shared]()
}

type shared struct {
	mu   sync.Mutex
	sock layer.Socket
	refs int
}

type protocol struct{}

// Protocol is the shared layer.Protocol value for layer/iface: no framing
// overhead of its own, it only adds a name to an existing transport.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16                  { return 40 }
func (protocol) Overhead() int               { return 0 }
func (protocol) MTU(nextMTU int) int         { return nextMTU }
func (protocol) EndpointStackSize(n int) int { return 1 + n }
func (protocol) Facilities() layer.Facility  { return layer.FacilityDatagram }
