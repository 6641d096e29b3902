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
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// digestHeader implements the RFC 2617 "digest" challenge/response for the
// CONNECT method. No example repo in the corpus implements RFC 2617 itself
// (go-ntlmssp only covers NTLM), so this hashes directly with crypto/md5
// per the RFC's own algorithm rather than reaching for a third-party
// client, which would add a dependency for four lines of hashing.
func digestHeader(cfg Config, challenge, target string) (string, *ntlmRound, error) {
	realm := digestParam(challenge, "realm")
	nonce := digestParam(challenge, "nonce")
	opaque := digestParam(challenge, "opaque")
	qop := digestParam(challenge, "qop")

	if nonce == "" {
		return "", nil, ErrUnsupportedScheme.Error(nil)
	}

	cnonce, err := randomHex(8)
	if err != nil {
		return "", nil, err
	}

	const method = "CONNECT"
	uri := target
	nc := "00000001"

	ha1 := md5Hex(fmt.Sprintf("%s:%s:%s", cfg.Username, realm, cfg.Password))
	ha2 := md5Hex(fmt.Sprintf("%s:%s", method, uri))

	var response string
	useQop := qop != "" && digestHasAuthQop(qop)
	if useQop {
		response = md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, nonce, nc, cnonce, "auth", ha2))
	} else {
		response = md5Hex(fmt.Sprintf("%s:%s:%s", ha1, nonce, ha2))
	}

	hdr := fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`,
		cfg.Username, realm, nonce, uri, response)
	if useQop {
		hdr += fmt.Sprintf(`, qop=auth, nc=%s, cnonce="%s"`, nc, cnonce)
	}
	if opaque != "" {
		hdr += fmt.Sprintf(`, opaque="%s"`, opaque)
	}

	return hdr, nil, nil
}

func digestHasAuthQop(qop string) bool {
	for _, v := range regexp.MustCompile(`\s*,\s*`).Split(qop, -1) {
		if v == "auth" {
			return true
		}
	}
	return false
}

var digestParamRe = regexp.MustCompile(`([a-zA-Z]+)=(?:"([^"]*)"|([^,\s]+))`)

func digestParam(challenge, name string) string {
	for _, m := range digestParamRe.FindAllStringSubmatch(challenge, -1) {
		if m[1] == name {
			if m[2] != "" {
				return m[2]
			}
			return m[3]
		}
	}
	return ""
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", ErrUnsupportedScheme.Error(err)
	}
	return hex.EncodeToString(b), nil
}
