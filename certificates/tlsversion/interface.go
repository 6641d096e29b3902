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

// Package tlsversion wraps crypto/tls's protocol version constants with
// string/int parsing so they can come out of config files. TLS 1.0 and 1.1
// are not represented: a forwarder terminating or originating TLS has no
// reason to ever negotiate down to them.
package tlsversion

import (
	"crypto/tls"
	"strings"
)

// Version represents a TLS protocol version.
type Version int

const (
	VersionUnknown Version = iota
	VersionTLS12   = Version(tls.VersionTLS12)
	VersionTLS13   = Version(tls.VersionTLS13)
)

// List returns the known versions, highest first.
func List() []Version {
	return []Version{
		VersionTLS13,
		VersionTLS12,
	}
}

// Parse matches s against a TLS version, tolerating the usual "tls1.2",
// "TLSv1.3", "1.2" spellings. Anything else, including "1.0"/"1.1", is
// VersionUnknown.
func Parse(s string) Version {
	s = strings.ToLower(s)
	s = strings.Replace(s, "\"", "", -1)  // nolint
	s = strings.Replace(s, "'", "", -1)   // nolint
	s = strings.Replace(s, "tls", "", -1) // nolint
	s = strings.Replace(s, "ssl", "", -1) // nolint
	s = strings.Replace(s, "v", "", -1)   // nolint
	s = strings.Replace(s, ".", "", -1)   // nolint
	s = strings.Replace(s, "-", "", -1)   // nolint
	s = strings.Replace(s, "_", "", -1)   // nolint
	s = strings.Replace(s, " ", "", -1)   // nolint
	s = strings.TrimSpace(s)

	switch {
	case strings.EqualFold(s, "12"):
		return VersionTLS12
	case strings.EqualFold(s, "13"):
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

// ParseInt matches the raw crypto/tls version constant d.
func ParseInt(d int) Version {
	switch d {
	case tls.VersionTLS12:
		return VersionTLS12
	case tls.VersionTLS13:
		return VersionTLS13
	default:
		return VersionUnknown
	}
}

func ParseBytes(p []byte) Version {
	return Parse(string(p))
}
