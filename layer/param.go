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

package layer

import "github.com/nabbar/sockfwd/errors"

// ParamStack is the ordered, top-layer-first sequence of per-layer
// configuration maps a Resolver consumes.
type ParamStack []map[string]string

// Head returns the top map, or nil if the stack is empty.
func (s ParamStack) Head() map[string]string {
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

// Tail returns the stack with its head map removed.
func (s ParamStack) Tail() ParamStack {
	if len(s) <= 1 {
		return ParamStack{}
	}
	return s[1:]
}

// Push returns a new stack with m prepended as the new head.
func (s ParamStack) Push(m map[string]string) ParamStack {
	res := make(ParamStack, 0, len(s)+1)
	res = append(res, m)
	res = append(res, s...)
	return res
}

// Clone deep-copies the stack so a Resolver may retain the result without
// aliasing the caller's maps.
func (s ParamStack) Clone() ParamStack {
	res := make(ParamStack, len(s))
	for i, m := range s {
		cm := make(map[string]string, len(m))
		for k, v := range m {
			cm[k] = v
		}
		res[i] = cm
	}
	return res
}

// Get looks up key in the head map of the stack.
func (s ParamStack) Get(key string) (string, bool) {
	h := s.Head()
	if h == nil {
		return "", false
	}
	v, ok := h[key]
	return v, ok
}

// Require looks up key in the head map, returning ErrMissingConfigParameters
// if it is absent or empty.
func (s ParamStack) Require(key string) (string, error) {
	v, ok := s.Get(key)
	if !ok || v == "" {
		return "", errors.Newf(ErrMissingConfigParameters.Uint16(), "missing config parameter %q", key)
	}
	return v, nil
}
