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

package proxy

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/idna"

	"github.com/nabbar/sockfwd/layer"
)

// Socket wraps a next-layer stream Socket and performs a blocking proxy
// traversal handshake the first time Connect is called. Reads and writes
// after a successful Connect pass straight through to the
// next layer's stream.
type Socket struct {
	next layer.Socket
	cfg  Config

	mu     sync.Mutex
	rd     *bufio.Reader
	local  layer.Endpoint
	remote layer.Endpoint
}

// New wraps next with the proxy traversal described by cfg.
func New(next layer.Socket, cfg Config) *Socket {
	return &Socket{next: next, cfg: cfg, local: layer.ZeroEndpoint(), remote: layer.ZeroEndpoint()}
}

func (s *Socket) Open(ctx context.Context) error {
	return s.next.Open(ctx)
}

func (s *Socket) Bind(ctx context.Context, local layer.Endpoint) error {
	return s.next.Bind(ctx, local)
}

// Connect dials the proxy server via the next layer, then performs the
// handshake for target (built with Target). On success, subsequent Send and
// Receive pass through to the next layer's already-established stream.
func (s *Socket) Connect(ctx context.Context, target layer.Endpoint) error {
	if target == nil || !target.IsSet() {
		return layer.ErrBadAddress.Error(nil)
	}
	t, ok := target.Context().(targetAddr)
	if !ok {
		return layer.ErrBadAddress.Error(nil)
	}

	dial := layer.NewEndpoint(&net.TCPAddr{IP: net.ParseIP(s.cfg.ProxyHost), Port: s.cfg.ProxyPort}, nil, true)
	if net.ParseIP(s.cfg.ProxyHost) == nil {
		dial = layer.NewEndpoint(hostPort{host: s.cfg.ProxyHost, port: s.cfg.ProxyPort}, nil, true)
	}

	if err := s.next.Connect(ctx, resolveDialEndpoint(dial)); err != nil {
		return err
	}

	s.mu.Lock()
	s.rd = bufio.NewReader(&socketReader{ctx: ctx, s: s.next})
	s.mu.Unlock()

	host := toASCIIHost(t.host)

	var err error
	switch s.cfg.Variant {
	case VariantHTTP:
		err = s.connectHTTP(ctx, host, t.port)
	case VariantSOCKS4, VariantSOCKS4A:
		err = s.connectSOCKS4(ctx, host, t.port)
	case VariantSOCKS5:
		err = s.connectSOCKS5(ctx, host, t.port)
	default:
		err = layer.ErrInvalidArgument.Error(nil)
	}

	if err != nil {
		_ = s.next.Close()
		return err
	}

	s.mu.Lock()
	s.remote = target
	s.local = s.next.LocalEndpoint()
	s.mu.Unlock()

	return nil
}

func (s *Socket) Close() error {
	return s.next.Close()
}

func (s *Socket) Shutdown(how layer.ShutdownMode) error {
	return s.next.Shutdown(how)
}

func (s *Socket) Send(ctx context.Context, p []byte) (int, error) {
	return s.next.Send(ctx, p)
}

// Receive drains anything buffered by the handshake reader before falling
// through to the next layer, so bytes the server pipelines immediately
// after the handshake reply are not lost.
func (s *Socket) Receive(ctx context.Context, p []byte) (int, error) {
	s.mu.Lock()
	rd := s.rd
	s.mu.Unlock()

	if rd != nil && rd.Buffered() > 0 {
		return rd.Read(p)
	}
	return s.next.Receive(ctx, p)
}

func (s *Socket) LocalEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local
}

func (s *Socket) RemoteEndpoint() layer.Endpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

func (s *Socket) Cancel() {
	s.next.Cancel()
}

var _ layer.Socket = (*Socket)(nil)

// toASCIIHost punycode-encodes an internationalized target hostname so the
// wire framing below (SOCKS4A/SOCKS5 domain names, the HTTP CONNECT target)
// only ever carries ASCII, as each of those protocols requires. Literal IPs
// and already-ASCII hosts pass through unchanged; a host idna rejects as
// malformed is sent through verbatim and left for the proxy to refuse.
func toASCIIHost(host string) string {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

// hostPort is a DNS-name dial target; resolveDialEndpoint turns it (or a
// *net.TCPAddr) into whatever the next layer's Connect expects.
type hostPort struct {
	host string
	port int
}

// resolveDialEndpoint is the identity function for *net.TCPAddr-backed
// endpoints and resolves hostPort ones here with net.LookupHost into a
// *net.TCPAddr on the first address found, since layer/tcp's
// Socket.Connect accepts a *net.TCPAddr only. A hostPort whose lookup fails
// is returned unchanged.
func resolveDialEndpoint(ep layer.Endpoint) layer.Endpoint {
	if hp, ok := ep.Context().(hostPort); ok {
		if addrs, err := net.LookupHost(hp.host); err == nil && len(addrs) > 0 {
			if ip := net.ParseIP(addrs[0]); ip != nil {
				return layer.NewEndpoint(&net.TCPAddr{IP: ip, Port: hp.port}, nil, true)
			}
		}
	}
	return ep
}

// socketReader adapts a layer.Socket's Receive to io.Reader for bufio,
// which the HTTP response-line/header parser below needs.
type socketReader struct {
	ctx context.Context
	s   layer.Socket
}

func (r *socketReader) Read(p []byte) (int, error) {
	n, err := r.s.Receive(r.ctx, p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, fmt.Errorf("short read")
	}
	return n, nil
}
