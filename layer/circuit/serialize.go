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
	"encoding/json"

	"github.com/nabbar/sockfwd/layer"
)

// Serialization of the "serialized list"/"serialized stack" string fields
// the circuit parameter-stack row and InitConnection message carry uses
// encoding/json, not the cbor/v2 the wire framing (message.go) uses: these
// fields are configuration/handshake payload describing a
// map[string]string shape, not the bit-exact framed envelope that wire
// format covers separately. No corpus library targets generic
// map[string]string round-tripping better than the stdlib encoder, and
// keeping the split mirrors how `certificates` already separates its wire
// encoding (cbor) from its config encoding (yaml/toml) for the same
// reason: different concerns, different codecs.

// SerializeHops turns an ordered hop chain into the string carried as
// "next_nodes"/"remaining_hops".
func SerializeHops(hops []HopSpec) (string, error) {
	if len(hops) == 0 {
		return "", nil
	}
	b, err := json.Marshal(hops)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DeserializeHops is the inverse of SerializeHops. The round-trip law
// serialize(deserialize(s)) == s for every valid hop serialization holds
// because json.Marshal produces a canonical encoding for a given Go value
// and HopSpec carries no cyclic or unordered data.
func DeserializeHops(s string) ([]HopSpec, error) {
	if s == "" {
		return nil, nil
	}
	var hops []HopSpec
	if err := json.Unmarshal([]byte(s), &hops); err != nil {
		return nil, err
	}
	return hops, nil
}

// SerializeParams turns a parameter stack into the string carried as
// "default_parameters".
func SerializeParams(p layer.ParamStack) (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DeserializeParams is the inverse of SerializeParams.
func DeserializeParams(s string) (layer.ParamStack, error) {
	if s == "" {
		return layer.ParamStack{}, nil
	}
	var p layer.ParamStack
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return p, nil
}
