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

// Package cipher wraps crypto/tls's modern cipher suite identifiers —
// ECDHE/RSA key exchange, AES-GCM and ChaCha20-Poly1305 AEADs, plus the
// three TLS 1.3 suites — with string/int parsing for config files. RC4,
// 3DES, CBC, and anything else crypto/tls itself has deprecated has no
// constant here.
package cipher

import (
	"crypto/tls"
	"math"
	"slices"
	"strings"
)

// Cipher represents a TLS cipher suite identifier.
type Cipher uint16

const (
	Unknown Cipher = Cipher(0)

	TLS_RSA_WITH_AES_128_GCM_SHA256             = Cipher(tls.TLS_RSA_WITH_AES_128_GCM_SHA256)
	TLS_RSA_WITH_AES_256_GCM_SHA384             = Cipher(tls.TLS_RSA_WITH_AES_256_GCM_SHA384)
	TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256       = Cipher(tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256)
	TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256     = Cipher(tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256)
	TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384       = Cipher(tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384)
	TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384     = Cipher(tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384)
	TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256 = Cipher(tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256)
	TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256 = Cipher(tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256)

	// TLS 1.3 cipher suites.
	TLS_AES_128_GCM_SHA256       = Cipher(tls.TLS_AES_128_GCM_SHA256)
	TLS_AES_256_GCM_SHA384       = Cipher(tls.TLS_AES_256_GCM_SHA384)
	TLS_CHACHA20_POLY1305_SHA256 = Cipher(tls.TLS_CHACHA20_POLY1305_SHA256)
)

// List returns every supported cipher suite, TLS 1.0-1.2 then TLS 1.3.
func List() []Cipher {
	return []Cipher{
		TLS_RSA_WITH_AES_128_GCM_SHA256,
		TLS_RSA_WITH_AES_256_GCM_SHA384,
		TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
		TLS_AES_128_GCM_SHA256,
		TLS_AES_256_GCM_SHA384,
		TLS_CHACHA20_POLY1305_SHA256,
	}
}

// ListString returns a list of all supported cipher suites as strings.
//
// It includes both TLS 1.0 - 1.2 and TLS 1.3 cipher suites.
func ListString() []string {
	var res = make([]string, 0)
	for _, c := range List() {
		res = append(res, c.String())
	}
	return res
}

// Parse matches s, case-insensitively and with any of ".", "-", or " "
// treated as "_", against the known cipher suite names.
func Parse(s string) Cipher {
	s = strings.ToLower(s)
	s = strings.Replace(s, "\"", "", -1)  // nolint
	s = strings.Replace(s, "'", "", -1)   // nolint
	s = strings.Replace(s, "tls", "", -1) // nolint
	s = strings.Replace(s, ".", "_", -1)  // nolint
	s = strings.Replace(s, "-", "_", -1)  // nolint
	s = strings.Replace(s, " ", "_", -1)  // nolint
	s = strings.TrimSpace(s)

	p := strings.Split(s, "_")

	switch {
	case containString(p, TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256.Code()):
		return TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256
	case containString(p, TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256.Code()):
		return TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
	case containString(p, TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384.Code()):
		return TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
	case containString(p, TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384.Code()):
		return TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
	case containString(p, TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256.Code()):
		return TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256
	case containString(p, TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256.Code()):
		return TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256
	case containString(p, TLS_CHACHA20_POLY1305_SHA256.Code()):
		return TLS_CHACHA20_POLY1305_SHA256
	case containString(p, TLS_RSA_WITH_AES_128_GCM_SHA256.Code()):
		return TLS_RSA_WITH_AES_128_GCM_SHA256
	case containString(p, TLS_RSA_WITH_AES_256_GCM_SHA384.Code()):
		return TLS_RSA_WITH_AES_256_GCM_SHA384
	case containString(p, TLS_AES_128_GCM_SHA256.Code()):
		return TLS_AES_128_GCM_SHA256
	case containString(p, TLS_AES_256_GCM_SHA384.Code()):
		return TLS_AES_256_GCM_SHA384
	default:
		return Unknown
	}
}

// ParseInt matches a raw crypto/tls cipher suite id, clamped to uint16
// range.
func ParseInt(d int) Cipher {
	var i uint16
	if d > math.MaxUint16 {
		i = math.MaxUint16
	} else if d < 1 {
		i = 0
	} else {
		i = uint16(d)
	}

	switch i {
	case tls.TLS_RSA_WITH_AES_128_GCM_SHA256:
		return TLS_RSA_WITH_AES_128_GCM_SHA256
	case tls.TLS_RSA_WITH_AES_256_GCM_SHA384:
		return TLS_RSA_WITH_AES_256_GCM_SHA384
	case tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:
		return TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256
	case tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256:
		return TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
	case tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384:
		return TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
	case tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384:
		return TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
	case tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256:
		return TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256
	case tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256:
		return TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256
	case tls.TLS_AES_128_GCM_SHA256:
		return TLS_AES_128_GCM_SHA256
	case tls.TLS_AES_256_GCM_SHA384:
		return TLS_AES_256_GCM_SHA384
	case tls.TLS_CHACHA20_POLY1305_SHA256:
		return TLS_CHACHA20_POLY1305_SHA256
	default:
		return Unknown
	}
}

func ParseBytes(p []byte) Cipher {
	return Parse(string(p))
}

// Check reports whether cipher names a known suite.
func Check(cipher uint16) bool {
	if c := ParseInt(int(cipher)); c == Unknown {
		return false
	}
	return true
}

func containString[S ~[]string](s S, v S) bool {
	keys := []string{
		"chacha20",
		"poly1305",
		"ecdhe",
		"rsa",
		"ecdsa",
		"aes",
		"128",
		"256",
		"sha256",
		"sha384",
		"gcm",
	}

	for _, k := range keys {
		if !keyContainString(s, v, k) {
			return false
		}
	}

	return true
}

func keyContainString[S ~[]string](s S, v S, k string) bool {
	if slices.Contains(s, k) && !slices.Contains(v, k) {
		return false
	} else if !slices.Contains(s, k) && slices.Contains(v, k) {
		return false
	}

	return true
}
