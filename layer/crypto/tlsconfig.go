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

package crypto

import (
	"crypto/tls"

	"golang.org/x/net/idna"

	"github.com/nabbar/sockfwd/certificates"
	tlsaut "github.com/nabbar/sockfwd/certificates/auth"
	tlscpr "github.com/nabbar/sockfwd/certificates/cipher"
	"github.com/nabbar/sockfwd/layer"
)

// buildTLSConfig assembles a *tls.Config from cfg via the certificates
// package: mutual authentication is required, the peer certificate is
// verified against the supplied CA, and an optional cipher-list restricts
// the negotiated suite.
func buildTLSConfig(cfg Config) (*tls.Config, error) {
	c := certificates.New()

	if err := loadCA(c, cfg); err != nil {
		return nil, err
	}
	if err := loadCertPair(c, cfg); err != nil {
		return nil, err
	}
	if err := loadDHParam(c, cfg); err != nil {
		return nil, err
	}

	c.SetClientAuth(tlsaut.RequireAndVerifyClientCert)

	if len(cfg.Ciphers) > 0 {
		list := make([]tlscpr.Cipher, 0, len(cfg.Ciphers))
		for _, s := range cfg.Ciphers {
			if p := tlscpr.Parse(s); p != tlscpr.Unknown {
				list = append(list, p)
			}
		}
		c.SetCipherList(list)
	}

	return c.TLS(serverNameASCII(cfg.ServerName)), nil
}

// serverNameASCII punycode-encodes an internationalized ServerName before
// it reaches tls.Config.ServerName, which the TLS SNI extension requires to
// be ASCII. A name idna rejects as malformed is passed through unchanged
// and left for the handshake itself to fail on.
func serverNameASCII(name string) string {
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return name
	}
	return ascii
}

func loadCA(c certificates.TLSConfig, cfg Config) error {
	switch cfg.CASrc {
	case "file":
		if err := c.AddRootCAFile(cfg.CAFile); err != nil {
			return layer.ErrBadAddress.Error(err)
		}
	case "buffer":
		if !c.AddRootCAString(cfg.CABuffer) {
			return layer.ErrBadAddress.Error(nil)
		}
	}
	return nil
}

func loadCertPair(c certificates.TLSConfig, cfg Config) error {
	switch cfg.CrtSrc {
	case "file":
		if err := c.AddCertificatePairFile(cfg.KeyFile, cfg.CrtFile); err != nil {
			return ErrHandshakeFailed.Error(err)
		}
	case "buffer":
		if err := c.AddCertificatePairString(cfg.KeyBuffer, cfg.CrtBuffer); err != nil {
			return ErrHandshakeFailed.Error(err)
		}
	}
	return nil
}

func loadDHParam(c certificates.TLSConfig, cfg Config) error {
	switch cfg.DHParamSrc {
	case "file":
		return c.AddDHParamFile(cfg.DHParamFile)
	case "buffer":
		return c.AddDHParamString(cfg.DHParamBuffer)
	}
	return nil
}
