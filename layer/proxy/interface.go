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

// Package proxy sits between a stream layer and a physical layer and
// performs a blocking traversal handshake (HTTP CONNECT or SOCKS4/4A/5)
// before exposing a plain byte stream to the layer above it.
package proxy

import "github.com/nabbar/sockfwd/layer"

// Variant selects which traversal protocol Socket.Connect performs.
type Variant uint8

const (
	VariantHTTP Variant = iota
	VariantSOCKS4
	VariantSOCKS4A
	VariantSOCKS5
)

// Scheme is an HTTP proxy authentication scheme, ordered weakest-first so
// the strongest supported challenge can be picked with a simple max.
type Scheme uint8

const (
	SchemeNone Scheme = iota
	SchemeBasic
	SchemeDigest
	SchemeNTLM
	SchemeNegotiate
)

// Config is the resolved, static configuration of a proxy.Socket: which
// variant to speak, the proxy server's own address, and the credentials
// available for the HTTP challenge/response round.
type Config struct {
	Variant Variant

	ProxyHost string
	ProxyPort int

	Username string
	Password string
	Domain   string

	// ReuseNTLM/ReuseKerb mirror the http_reuse_ntlm/http_reuse_kerb config
	// flags: once a scheme has been negotiated successfully on a
	// connection, a following request on the same underlying stream skips
	// renegotiation. This module never reconnects a proxy.Socket, so the
	// flags are accepted for parameter-stack round-trip fidelity but have
	// no observable effect beyond the single Connect they configure.
	ReuseNTLM bool
	ReuseKerb bool

	SocksVersion int // 4 or 5; ignored for VariantHTTP
}

type protocol struct{}

// Protocol is the shared layer.Protocol value for every proxy.Socket: no
// per-frame overhead survives the handshake, so MTU passes through
// unchanged.
var Protocol layer.Protocol = protocol{}

func (protocol) ID() uint16                { return 10 }
func (protocol) Overhead() int             { return 0 }
func (protocol) MTU(nextMTU int) int       { return nextMTU }
func (protocol) EndpointStackSize(n int) int { return 1 + n }
func (protocol) Facilities() layer.Facility {
	return layer.FacilityStream
}

// Target builds the Endpoint passed to Socket.Connect: the ultimate
// destination the proxy is asked to forward to. It carries no next
// endpoint because, unlike every other layer, the proxy never dials the
// target itself — the target is data inside the handshake, not an address
// the Go runtime connects to.
func Target(host string, port int) layer.Endpoint {
	return layer.NewEndpoint(targetAddr{host: host, port: port}, nil, true)
}

type targetAddr struct {
	host string
	port int
}
