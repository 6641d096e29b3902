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
	"strconv"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"
)

// NewResolver returns a layer.Resolver that consumes the proxy layer's head
// map (its http_* / socks_* keys) and recurses into next's Resolve to
// build the Endpoint for dialing the proxy server itself. The head map
// decides the variant: presence of "socks_version" selects SOCKS4 or
// SOCKS5; otherwise HTTP CONNECT is assumed. SOCKS4 vs. SOCKS4A is not
// decided here — it depends on whether the target handed to Socket.Connect
// is a literal IP or a hostname, so Socket.Connect itself picks the 4A wire
// variant at handshake time.
//
// The proxy's own dial address is synthesized into a fresh head map
// ({addr, port}) and handed to next.Resolve so that, e.g., a PROXY<TCP>
// stack has TCP actually dial the proxy machine — the ultimate CONNECT/SOCKS
// target is not part of this static configuration; it is supplied at
// Socket.Connect time via Target, since the HTTP variant's own parameter
// table gives it no target key at all and this module applies the same
// convention to SOCKS for consistency.
func NewResolver(next layer.Resolver) layer.Resolver {
	return layer.ResolverFunc(func(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
		head := stack.Head()
		if head == nil {
			return nil, nil, layer.ErrMissingConfigParameters.Error(nil)
		}

		cfg, err := parseConfig(head)
		if err != nil {
			return nil, nil, err
		}

		synth := stack.Tail().Push(map[string]string{
			"addr": cfg.ProxyHost,
			"port": strconv.Itoa(cfg.ProxyPort),
		})

		nextEp, tail, err := next.Resolve(synth)
		if err != nil {
			return nil, nil, err
		}

		return layer.NewEndpoint(cfg, nextEp, true), tail, nil
	})
}

func parseConfig(head map[string]string) (Config, error) {
	if v, ok := head["socks_version"]; ok {
		return parseSocksConfig(head, v)
	}
	return parseHTTPConfig(head)
}

func parseHTTPConfig(head map[string]string) (Config, error) {
	host := head["http_host"]
	if host == "" {
		return Config{}, errors.Newf(layer.ErrMissingConfigParameters.Uint16(), "missing config parameter %q", "http_host")
	}

	port, err := strconv.Atoi(head["http_port"])
	if err != nil {
		return Config{}, errors.Newf(layer.ErrMissingConfigParameters.Uint16(), "missing config parameter %q", "http_port")
	}

	return Config{
		Variant:   VariantHTTP,
		ProxyHost: host,
		ProxyPort: port,
		Username:  head["http_username"],
		Password:  head["http_password"],
		Domain:    head["http_domain"],
		ReuseNTLM: head["http_reuse_ntlm"] == "true",
		ReuseKerb: head["http_reuse_kerb"] == "true",
	}, nil
}

func parseSocksConfig(head map[string]string, version string) (Config, error) {
	v, err := strconv.Atoi(version)
	if err != nil || (v != 4 && v != 5) {
		return Config{}, errors.Newf(layer.ErrInvalidArgument.Uint16(), "invalid config parameter %q", "socks_version")
	}

	addr := head["addr"]
	if addr == "" {
		return Config{}, errors.Newf(layer.ErrMissingConfigParameters.Uint16(), "missing config parameter %q", "addr")
	}

	port, err := strconv.Atoi(head["port"])
	if err != nil {
		return Config{}, errors.Newf(layer.ErrMissingConfigParameters.Uint16(), "missing config parameter %q", "port")
	}

	variant := VariantSOCKS5
	if v == 4 {
		variant = VariantSOCKS4
	}

	return Config{
		Variant:      variant,
		ProxyHost:    addr,
		ProxyPort:    port,
		SocksVersion: v,
	}, nil
}
