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

package network

import (
	"strconv"

	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"
)

// NewResolver consumes the network layer's {network_id} key and recurses
// into next's Resolve on the tail to reach the iface layer underneath.
func NewResolver(next layer.Resolver) layer.Resolver {
	return layer.ResolverFunc(func(stack layer.ParamStack) (layer.Endpoint, layer.ParamStack, error) {
		raw, err := stack.Require("network_id")
		if err != nil {
			return nil, nil, err
		}

		id, err := strconv.ParseUint(raw, 10, 16)
		if err != nil {
			return nil, nil, errors.Newf(layer.ErrInvalidArgument.Uint16(), "invalid config parameter %q: %v", "network_id", err)
		}

		nextEp, tail, err := next.Resolve(stack.Tail())
		if err != nil {
			return nil, nil, err
		}

		return layer.NewEndpoint(uint16(id), nextEp, true), tail, nil
	})
}

// idOf extracts the network_id carried by ep's Context, failing with
// ErrBadAddress if ep is unset or was not built by this layer's resolver.
func idOf(ep layer.Endpoint) (uint16, error) {
	if ep == nil || !ep.IsSet() {
		return 0, layer.ErrBadAddress.Error(nil)
	}
	id, ok := ep.Context().(uint16)
	if !ok {
		return 0, errors.Newf(layer.ErrBadAddress.Uint16(), "invalid network_id endpoint context %T", ep.Context())
	}
	return id, nil
}
