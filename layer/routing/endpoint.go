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

package routing

import (
	"strconv"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"
)

// config is the resolved {network_address, router} endpoint context: the
// address this socket binds or dials as, and the named Router it registers
// with.
type config struct {
	Addr   uint32
	Router *Router
}

// NewResolver consumes the routing layer's {network_address, router} keys,
// looking the named router up in (or creating it in) reg, and recurses
// into next's Resolve on the tail to reach the network layer underneath.
func NewResolver(next layer.Resolver, reg *Registry) layer.Resolver {
	return layer.ResolverFunc(func(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
		rawAddr, err := stack.Require("network_address")
		if err != nil {
			return nil, nil, err
		}
		routerName, err := stack.Require("router")
		if err != nil {
			return nil, nil, err
		}

		addr, err := strconv.ParseUint(rawAddr, 10, 32)
		if err != nil {
			return nil, nil, errors.Newf(layer.ErrInvalidArgument.Uint16(), "invalid config parameter %q: %v", "network_address", err)
		}

		nextEp, tail, err := next.Resolve(stack.Tail())
		if err != nil {
			return nil, nil, err
		}

		cfg := config{Addr: uint32(addr), Router: reg.GetOrCreate(routerName)}
		return layer.NewEndpoint(cfg, nextEp, true), tail, nil
	})
}
