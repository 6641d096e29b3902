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

package certificates

import (
	"crypto/tls"
	"io"

	tlsaut "github.com/nabbar/sockfwd/certificates/auth"
	tlscas "github.com/nabbar/sockfwd/certificates/ca"
	tlscrt "github.com/nabbar/sockfwd/certificates/certs"
	tlscpr "github.com/nabbar/sockfwd/certificates/cipher"
	tlscrv "github.com/nabbar/sockfwd/certificates/curves"
	tlsvrs "github.com/nabbar/sockfwd/certificates/tlsversion"
)

// config is the concrete TLSConfig implementation. Fields are plain slices
// guarded by the caller's own usage discipline, matching the rest of this
// package (rootca.go, authClient.go, curves.go, cert.go): every public method
// reads/appends the slice directly, no internal locking.
type config struct {
	rand io.Reader

	cert       []tlscrt.Cert
	cipherList []tlscpr.Cipher
	curveList  []tlscrv.Curves

	caRoot     []tlscas.Cert
	clientAuth tlsaut.ClientAuth
	clientCA   []tlscas.Cert

	tlsMinVersion tlsvrs.Version
	tlsMaxVersion tlsvrs.Version

	dynSizingDisabled     bool
	ticketSessionDisabled bool

	// dhParam is informational DH parameter material carried alongside the
	// certificate config. crypto/tls has no classic finite-field DH knob
	// (ECDHE curve selection is handled by curveList/SetCurveList instead),
	// so dhParam is validated and stored for round-trip/export purposes
	// only; it is never fed into the assembled *tls.Config.
	dhParam []byte
}

func (o *config) RegisterRand(rand io.Reader) {
	o.rand = rand
}

func (o *config) SetVersionMin(v tlsvrs.Version) {
	o.tlsMinVersion = v
}

func (o *config) GetVersionMin() tlsvrs.Version {
	return o.tlsMinVersion
}

func (o *config) SetVersionMax(v tlsvrs.Version) {
	o.tlsMaxVersion = v
}

func (o *config) GetVersionMax() tlsvrs.Version {
	return o.tlsMaxVersion
}

func (o *config) SetCipherList(c []tlscpr.Cipher) {
	o.cipherList = make([]tlscpr.Cipher, 0)
	o.AddCiphers(c...)
}

func (o *config) AddCiphers(c ...tlscpr.Cipher) {
	o.cipherList = append(o.cipherList, c...)
}

func (o *config) GetCiphers() []tlscpr.Cipher {
	var res = make([]tlscpr.Cipher, 0)

	for _, i := range o.cipherList {
		if tlscpr.Check(uint16(i)) {
			res = append(res, i)
		}
	}

	return res
}

func (o *config) SetDynamicSizingDisabled(flag bool) {
	o.dynSizingDisabled = flag
}

func (o *config) SetSessionTicketDisabled(flag bool) {
	o.ticketSessionDisabled = flag
}

// dhParamSet validates and stores PEM-encoded DH parameters (openssl dhparam
// style) for the endpoint context; see AddDHParamFile/AddDHParamString on the
// TLSConfig interface for the parsing entry points.
func (o *config) dhParamSet(p []byte) error {
	if len(p) == 0 {
		return ErrorParamsEmpty.Error(nil)
	}

	if !looksLikeDHParam(p) {
		return ErrorCertAppend.Error(nil)
	}

	o.dhParam = append([]byte(nil), p...)
	return nil
}

func (o *config) GetDHParam() []byte {
	if o.dhParam == nil {
		return nil
	}

	return append([]byte(nil), o.dhParam...)
}

func (o *config) AddDHParamString(pem string) error {
	return o.dhParamSet([]byte(pem))
}

func (o *config) AddDHParamFile(pemFile string) error {
	var loaded []byte

	fct := func(p []byte) error {
		loaded = p
		return nil
	}

	if e := checkFile(fct, pemFile); e != nil {
		return e
	}

	return o.dhParamSet(loaded)
}

func (o *config) TLS(serverName string) *tls.Config {
	return o.TlsConfig(serverName)
}

func (o *config) TlsConfig(serverName string) *tls.Config {
	/* #nosec */
	cnf := &tls.Config{
		InsecureSkipVerify: false,
	}

	if o.rand != nil {
		cnf.Rand = o.rand
	}

	if serverName != "" {
		cnf.ServerName = serverName
	}

	if o.ticketSessionDisabled {
		cnf.SessionTicketsDisabled = true
	}

	if o.dynSizingDisabled {
		cnf.DynamicRecordSizingDisabled = true
	}

	if o.tlsMinVersion != tlsvrs.VersionUnknown {
		cnf.MinVersion = uint16(o.tlsMinVersion)
	}

	if o.tlsMaxVersion != tlsvrs.VersionUnknown {
		cnf.MaxVersion = uint16(o.tlsMaxVersion)
	}

	if len(o.cipherList) > 0 {
		cs := make([]uint16, 0, len(o.cipherList))
		for _, c := range o.cipherList {
			cs = append(cs, uint16(c))
		}
		cnf.CipherSuites = cs
	}

	if len(o.curveList) > 0 {
		cv := make([]tls.CurveID, 0, len(o.curveList))
		for _, c := range o.curveList {
			cv = append(cv, tls.CurveID(c))
		}
		cnf.CurvePreferences = cv
	}

	if pool := o.GetRootCAPool(); len(o.caRoot) > 0 {
		cnf.RootCAs = pool
	}

	if len(o.cert) > 0 {
		cnf.Certificates = o.GetCertificatePair()
	}

	if o.clientAuth != tlsaut.NoClientCert {
		cnf.ClientAuth = tls.ClientAuthType(o.clientAuth)
		if len(o.clientCA) > 0 {
			cnf.ClientCAs = o.GetClientCAPool()
		}
	}

	return cnf
}

func (o *config) Clone() TLSConfig {
	n := &config{
		rand:                  o.rand,
		cert:                  append(make([]tlscrt.Cert, 0, len(o.cert)), o.cert...),
		cipherList:            append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...),
		curveList:             append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...),
		caRoot:                append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...),
		clientAuth:            o.clientAuth,
		clientCA:              append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...),
		tlsMinVersion:         o.tlsMinVersion,
		tlsMaxVersion:         o.tlsMaxVersion,
		dynSizingDisabled:     o.dynSizingDisabled,
		ticketSessionDisabled: o.ticketSessionDisabled,
	}

	if o.dhParam != nil {
		n.dhParam = append([]byte(nil), o.dhParam...)
	}

	return n
}

func (o *config) Config() *Config {
	return &Config{
		CurveList:            append(make([]tlscrv.Curves, 0, len(o.curveList)), o.curveList...),
		CipherList:           append(make([]tlscpr.Cipher, 0, len(o.cipherList)), o.cipherList...),
		RootCA:               append(make([]tlscas.Cert, 0, len(o.caRoot)), o.caRoot...),
		ClientCA:             append(make([]tlscas.Cert, 0, len(o.clientCA)), o.clientCA...),
		VersionMin:           o.tlsMinVersion,
		VersionMax:           o.tlsMaxVersion,
		AuthClient:           o.clientAuth,
		DHParam:              string(o.dhParam),
		DynamicSizingDisable: o.dynSizingDisabled,
		SessionTicketDisable: o.ticketSessionDisabled,
	}
}

func asStruct(cfg TLSConfig) *config {
	if c, ok := cfg.(*config); ok {
		return c
	}

	return nil
}
