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

package udp

import (
	"net"
	"strconv"

	"github.com/nabbar/sockfwd/layer"
)

// Resolve implements layer.Resolver with the same {addr, port}/{port} head
// map as layer/tcp's Resolve.
func Resolve(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
	head := stack.Head()
	if head == nil {
		return layer.ZeroEndpoint(), stack.Tail(), nil
	}

	ps, err := stack.Require("port")
	if err != nil {
		return nil, nil, err
	}

	port, err := strconv.Atoi(ps)
	if err != nil {
		return nil, nil, layer.ErrInvalidArgument.Error(err)
	}

	addr := head["addr"]
	if addr == "" {
		ep := layer.NewEndpoint(&net.UDPAddr{Port: port}, nil, true)
		return ep, stack.Tail(), nil
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		resolved, err := net.ResolveIPAddr("ip", addr)
		if err != nil {
			return nil, nil, layer.ErrBadAddress.Error(err)
		}
		ip = resolved.IP
	}

	ep := layer.NewEndpoint(&net.UDPAddr{IP: ip, Port: port}, nil, true)
	return ep, stack.Tail(), nil
}

var Resolver layer.Resolver = layer.ResolverFunc(Resolve)

func addrOf(ep layer.Endpoint) *net.UDPAddr {
	if ep == nil || !ep.IsSet() {
		return nil
	}
	a, _ := ep.Context().(*net.UDPAddr)
	return a
}
