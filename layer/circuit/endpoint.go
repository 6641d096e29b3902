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

package circuit

import (
	"github.com/nabbar/sockfwd/errors"
	"github.com/nabbar/sockfwd/layer"
)

// NewResolver returns a layer.Resolver consuming the circuit layer's head
// map: a {circuit_id, next_nodes, default_parameters} row. circuit_id
// names the first hop this process dials directly; next_nodes is
// the serialized chain beyond it, embedded verbatim into the
// InitConnection messages as the hops are walked; default_parameters is
// the parameter stack (for the layers below circuit) used to dial that
// first hop. Unlike every other layer's resolver, the layers below circuit
// are resolved from this dedicated field rather than from stack.Tail(),
// because circuit is the point in the stack where a single static chain of
// maps can no longer describe every hop's own transport parameters — those
// live inside next_nodes instead.
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

		nextEp, _, err := next.Resolve(cfg.DefaultParams)
		if err != nil {
			return nil, nil, err
		}

		return layer.NewEndpoint(cfg, nextEp, true), stack.Tail(), nil
	})
}

func parseConfig(head map[string]string) (Config, error) {
	id, ok := head["circuit_id"]
	if !ok || id == "" {
		return Config{}, errors.Newf(layer.ErrMissingConfigParameters.Uint16(), "missing config parameter %q", "circuit_id")
	}

	hops, err := DeserializeHops(head["next_nodes"])
	if err != nil {
		return Config{}, errors.Newf(layer.ErrInvalidArgument.Uint16(), "invalid config parameter %q: %v", "next_nodes", err)
	}

	params, err := DeserializeParams(head["default_parameters"])
	if err != nil {
		return Config{}, errors.Newf(layer.ErrInvalidArgument.Uint16(), "invalid config parameter %q: %v", "default_parameters", err)
	}

	return Config{ID: id, Hops: hops, DefaultParams: params}, nil
}
