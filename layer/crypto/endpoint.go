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
	"strings"

	"github.com/nabbar/sockfwd/layer"
)

// Config is the resolved, static configuration of a crypto.Socket: the
// locations of the certificate material
// ({ca_src,ca_file|ca_buffer,crt_src,crt_file|crt_buffer,key_src,key_file|key_buffer,dhparam_src,dhparam_file|dhparam_buffer}),
// kept as plain strings (rather than a pre-built *tls.Config) so two
// Endpoints built from identical parameters remain comparable by
// reflect.DeepEqual per the Endpoint equality law.
type Config struct {
	ServerName string
	Variant    Variant

	CASrc    string
	CAFile   string
	CABuffer string

	CrtSrc    string
	CrtFile   string
	CrtBuffer string

	KeySrc    string
	KeyFile   string
	KeyBuffer string

	DHParamSrc    string
	DHParamFile   string
	DHParamBuffer string

	Ciphers []string
}

// NewResolver returns a layer.Resolver that consumes the TLS layer's head
// map and recurses into next's Resolve to build the Endpoint for the
// wrapped stream. variant selects the thin or buffered Socket
// implementation crypto.New will build from the resulting Config.
func NewResolver(next layer.Resolver, variant Variant) layer.Resolver {
	return layer.ResolverFunc(func(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
		head := stack.Head()
		if head == nil {
			return nil, nil, layer.ErrMissingConfigParameters.Error(nil)
		}

		cfg, err := parseConfig(head, variant)
		if err != nil {
			return nil, nil, err
		}

		nextEp, tail, err := next.Resolve(stack.Tail())
		if err != nil {
			return nil, nil, err
		}

		return layer.NewEndpoint(cfg, nextEp, true), tail, nil
	})
}

func parseConfig(head map[string]string, variant Variant) (Config, error) {
	cfg := Config{
		ServerName: head["server_name"],
		Variant:    variant,
	}

	var err error
	if cfg.CASrc, cfg.CAFile, cfg.CABuffer, err = requireSrc(head, "ca"); err != nil {
		return Config{}, err
	}
	if cfg.CrtSrc, cfg.CrtFile, cfg.CrtBuffer, err = requireSrc(head, "crt"); err != nil {
		return Config{}, err
	}
	if cfg.KeySrc, cfg.KeyFile, cfg.KeyBuffer, err = requireSrc(head, "key"); err != nil {
		return Config{}, err
	}

	// dhparam is accepted for round-trip/interop completeness per
	// certificates.TLSConfig.AddDHParamString's own doc comment, but is
	// optional: crypto/tls has no classic finite-field DH knob to feed it
	// into, so its absence never blocks a handshake.
	if _, ok := head["dhparam_src"]; ok {
		cfg.DHParamSrc, cfg.DHParamFile, cfg.DHParamBuffer, _ = requireSrc(head, "dhparam")
	}

	if v := head["cipher_list"]; v != "" {
		cfg.Ciphers = strings.Split(v, ",")
	}

	return cfg, nil
}

// requireSrc reads the {prefix}_src key (must be "file" or "buffer") plus
// the matching {prefix}_file or {prefix}_buffer key.
func requireSrc(head map[string]string, prefix string) (src, file, buffer string, err error) {
	src = head[prefix+"_src"]
	switch src {
	case "file":
		file = head[prefix+"_file"]
		if file == "" {
			return "", "", "", layer.ErrMissingConfigParameters.Error(nil)
		}
	case "buffer":
		buffer = head[prefix+"_buffer"]
		if buffer == "" {
			return "", "", "", layer.ErrMissingConfigParameters.Error(nil)
		}
	default:
		return "", "", "", layer.ErrMissingConfigParameters.Error(nil)
	}
	return src, file, buffer, nil
}
