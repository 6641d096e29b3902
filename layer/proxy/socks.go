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
	"context"
	"io"
	"net"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"
)

// connectSOCKS4 speaks SOCKS4 or, when host is not a literal IPv4 address,
// SOCKS4A (RFC-less but de-facto standard: DSTIP set to 0.0.0.1 and the
// hostname appended as a NUL-terminated string after the empty USERID). No
// corpus example implements this framing, so it is hand-rolled directly
// from the byte layout.
func (s *Socket) connectSOCKS4(ctx context.Context, host string, port int) error {
	ip := net.ParseIP(host)
	isV4 := ip != nil && ip.To4() != nil

	req := make([]byte, 0, 32)
	req = append(req, 0x04, 0x01)
	req = append(req, byte(port>>8), byte(port))

	if isV4 {
		req = append(req, ip.To4()...)
		req = append(req, 0x00) // USERID terminator
	} else {
		req = append(req, 0x00, 0x00, 0x00, 0x01) // SOCKS4A sentinel
		req = append(req, 0x00)                   // USERID terminator
		req = append(req, []byte(host)...)
		req = append(req, 0x00) // DSTHOST terminator
	}

	if _, err := s.Send(ctx, req); err != nil {
		return err
	}

	reply := make([]byte, 8)
	if err := s.readFull(ctx, reply); err != nil {
		return err
	}

	if reply[0] != 0x00 || reply[1] != 0x5A {
		return errors.Newf(layer.ErrConnectionAborted.Uint16(), "socks4 request rejected with code %#x", reply[1])
	}
	return nil
}

// connectSOCKS5 negotiates NO_AUTH (no SOCKS5 authentication is required)
// and issues a CONNECT request with a domain name ATYP when host is not a
// literal IP, IPv4 ATYP otherwise.
func (s *Socket) connectSOCKS5(ctx context.Context, host string, port int) error {
	if _, err := s.Send(ctx, []byte{0x05, 0x01, 0x00}); err != nil {
		return err
	}

	methodReply := make([]byte, 2)
	if err := s.readFull(ctx, methodReply); err != nil {
		return err
	}
	if methodReply[0] != 0x05 || methodReply[1] != 0x00 {
		return errors.Newf(layer.ErrConnectionAborted.Uint16(), "socks5 rejected NO_AUTH with method %#x", methodReply[1])
	}

	req := []byte{0x05, 0x01, 0x00}
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		req = append(req, 0x01)
		req = append(req, ip.To4()...)
	} else {
		req = append(req, 0x03, byte(len(host)))
		req = append(req, []byte(host)...)
	}
	req = append(req, byte(port>>8), byte(port))

	if _, err := s.Send(ctx, req); err != nil {
		return err
	}

	hdr := make([]byte, 4)
	if err := s.readFull(ctx, hdr); err != nil {
		return err
	}
	if hdr[0] != 0x05 || hdr[1] != 0x00 {
		return errors.Newf(layer.ErrConnectionAborted.Uint16(), "socks5 request rejected with code %#x", hdr[1])
	}

	var addrLen int
	switch hdr[3] {
	case 0x01:
		addrLen = 4
	case 0x04:
		addrLen = 16
	case 0x03:
		ln := make([]byte, 1)
		if err := s.readFull(ctx, ln); err != nil {
			return err
		}
		addrLen = int(ln[0])
	default:
		return errors.Newf(layer.ErrProtocolError.Uint16(), "socks5 reply carries unsupported address type %#x", hdr[3])
	}

	rest := make([]byte, addrLen+2)
	return s.readFull(ctx, rest)
}

// readFull reads exactly len(p) bytes from the handshake's buffered reader.
func (s *Socket) readFull(_ context.Context, p []byte) error {
	s.mu.Lock()
	rd := s.rd
	s.mu.Unlock()

	if _, err := io.ReadFull(rd, p); err != nil {
		return layer.ErrProtocolError.Error(err)
	}
	return nil
}
