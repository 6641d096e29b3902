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
	"encoding/base64"

	"github.com/Azure/go-ntlmssp"
)

// ntlmRound tracks progress across the two extra CONNECT round-trips NTLM
// needs: Type1 negotiate, then Type3 authenticate once the proxy answers
// with a Type2 challenge.
type ntlmRound struct {
	sentType1 bool
}

// ntlmHeader drives one step of the NTLM (or Negotiate, treated as NTLM
// since no SPNEGO/Kerberos library exists in the corpus) handshake. On the
// first call (prev == nil) it emits the Type1 negotiate message; once the
// proxy's Type2 challenge arrives it emits the final Type3 response and
// returns prev == nil to signal the handshake is complete.
func ntlmHeader(cfg Config, challenge string, prev *ntlmRound, negotiate bool) (string, *ntlmRound, error) {
	scheme := "NTLM"
	if negotiate {
		scheme = "Negotiate"
	}

	if prev == nil || !prev.sentType1 {
		neg := ntlmssp.NewNegotiateMessage(cfg.Domain, "")
		return scheme + " " + base64.StdEncoding.EncodeToString(neg), &ntlmRound{sentType1: true}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(challenge)
	if err != nil {
		return "", nil, ErrUnsupportedScheme.Error(err)
	}

	auth, err := ntlmssp.ProcessChallenge(raw, cfg.Username, cfg.Password)
	if err != nil {
		return "", nil, ErrUnsupportedScheme.Error(err)
	}

	return scheme + " " + base64.StdEncoding.EncodeToString(auth), nil, nil
}
