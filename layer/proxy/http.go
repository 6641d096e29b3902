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
	"fmt"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"
)

// connectHTTP performs the HTTP CONNECT handshake. NTLM/Negotiate need up
// to three rounds on the same connection (Type1 ->
// challenge -> Type3); the loop below re-sends CONNECT with an updated
// Proxy-Authorization header until the proxy answers 200, refuses outright,
// or exhausts the round budget.
func (s *Socket) connectHTTP(ctx context.Context, host string, port int) error {
	target := fmt.Sprintf("%s:%d", host, port)

	var (
		ntlm    *ntlmRound
		authHdr string
	)

	const maxRounds = 4
	for round := 0; round < maxRounds; round++ {
		if err := s.sendConnect(ctx, target, authHdr); err != nil {
			return err
		}

		status, hdr, err := s.readConnectReply(ctx)
		if err != nil {
			return err
		}

		if status == 200 {
			return nil
		}
		if status != 407 {
			return errors.Newf(layer.ErrConnectionAborted.Uint16(), "proxy refused CONNECT with status %d", status)
		}

		scheme, challenge, err := pickChallenge(hdr.Values("Proxy-Authenticate"))
		if err != nil {
			return err
		}

		authHdr, ntlm, err = s.computeAuthHeader(scheme, challenge, target, ntlm)
		if err != nil {
			return err
		}
	}

	return layer.ErrConnectionAborted.Error(fmt.Errorf("exceeded proxy auth rounds"))
}

func (s *Socket) sendConnect(ctx context.Context, target, authHeader string) error {
	var b strings.Builder
	b.WriteString("CONNECT ")
	b.WriteString(target)
	b.WriteString(" HTTP/1.1\r\n")
	b.WriteString("Host: ")
	b.WriteString(target)
	b.WriteString("\r\n")
	if authHeader != "" {
		b.WriteString("Proxy-Authorization: ")
		b.WriteString(authHeader)
		b.WriteString("\r\n")
	}
	b.WriteString("Proxy-Connection: Keep-Alive\r\n")
	b.WriteString("\r\n")

	_, err := s.Send(ctx, []byte(b.String()))
	return err
}

func (s *Socket) readConnectReply(context.Context) (int, http.Header, error) {
	s.mu.Lock()
	rd := s.rd
	s.mu.Unlock()

	tp := textproto.NewReader(rd)

	line, err := tp.ReadLine()
	if err != nil {
		return 0, nil, layer.ErrProtocolError.Error(err)
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return 0, nil, errors.Newf(layer.ErrProtocolError.Uint16(), "malformed status line %q", line)
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, nil, layer.ErrProtocolError.Error(err)
	}

	mh, err := tp.ReadMIMEHeader()
	if err != nil && len(mh) == 0 {
		return status, http.Header{}, nil
	}

	return status, http.Header(mh), nil
}

// pickChallenge selects the strongest scheme this module supports among
// the Proxy-Authenticate challenges offered.
func pickChallenge(challenges []string) (Scheme, string, error) {
	best := SchemeNone
	bestChallenge := ""

	for _, c := range challenges {
		sch, ch := parseChallenge(c)
		if sch > best {
			best, bestChallenge = sch, ch
		}
	}

	if best == SchemeNone {
		return SchemeNone, "", ErrUnsupportedScheme.Error(nil)
	}
	return best, bestChallenge, nil
}

func parseChallenge(c string) (Scheme, string) {
	c = strings.TrimSpace(c)
	switch {
	case strings.HasPrefix(c, "Negotiate"):
		return SchemeNegotiate, strings.TrimSpace(strings.TrimPrefix(c, "Negotiate"))
	case strings.HasPrefix(c, "NTLM"):
		return SchemeNTLM, strings.TrimSpace(strings.TrimPrefix(c, "NTLM"))
	case strings.HasPrefix(c, "Digest"):
		return SchemeDigest, strings.TrimSpace(strings.TrimPrefix(c, "Digest"))
	case strings.HasPrefix(c, "Basic"):
		return SchemeBasic, strings.TrimSpace(strings.TrimPrefix(c, "Basic"))
	default:
		return SchemeNone, ""
	}
}

func (s *Socket) computeAuthHeader(scheme Scheme, challenge, target string, prev *ntlmRound) (string, *ntlmRound, error) {
	if s.cfg.Username == "" && scheme != SchemeNone {
		return "", nil, ErrNoCredentials.Error(nil)
	}

	switch scheme {
	case SchemeBasic:
		return basicHeader(s.cfg.Username, s.cfg.Password), nil, nil
	case SchemeDigest:
		return digestHeader(s.cfg, challenge, target)
	case SchemeNTLM, SchemeNegotiate:
		return ntlmHeader(s.cfg, challenge, prev, scheme == SchemeNegotiate)
	default:
		return "", nil, ErrUnsupportedScheme.Error(nil)
	}
}
