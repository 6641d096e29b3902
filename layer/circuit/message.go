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
	"context"
	"encoding/binary"

	libcbr "github.com/fxamacker/cbor/v2"

	"github.com/nabbar/sockfwd/layer"
)

// maxFrameSize bounds the 4-byte length prefix so a corrupt or hostile
// peer cannot force an unbounded allocation.
const maxFrameSize = 1 << 20

// initConnection is the InitConnection message: the id this hop is asked
// for, whether it should forward, and the serialized remainder of the
// hop chain (per SerializeHops) when forward is set.
type initConnection struct {
	ID            string `cbor:"id"`
	Forward       uint8  `cbor:"forward"`
	RemainingHops string `cbor:"remaining_hops"`
}

// validateConnection is the ValidateConnection reply: zero for success,
// nonzero for refusal.
type validateConnection struct {
	Status uint8 `cbor:"status"`
}

// writeFrame cbor-encodes v and writes it length-prefixed with a 4-byte
// little-endian length.
func writeFrame(ctx context.Context, s layer.Socket, v interface{}) error {
	payload, err := libcbr.Marshal(v)
	if err != nil {
		return err
	}

	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(payload)))

	if err := sendFull(ctx, s, hdr); err != nil {
		return err
	}
	return sendFull(ctx, s, payload)
}

// readFrame reads a 4-byte little-endian length prefix followed by that
// many cbor-encoded bytes, decoding them into v.
func readFrame(ctx context.Context, s layer.Socket, v interface{}) error {
	hdr := make([]byte, 4)
	if err := recvFull(ctx, s, hdr); err != nil {
		return err
	}

	n := binary.LittleEndian.Uint32(hdr)
	if n > maxFrameSize {
		return ErrFrameTooLarge.Error(nil)
	}

	payload := make([]byte, n)
	if err := recvFull(ctx, s, payload); err != nil {
		return err
	}

	return libcbr.Unmarshal(payload, v)
}

func sendFull(ctx context.Context, s layer.Socket, p []byte) error {
	for len(p) > 0 {
		n, err := s.Send(ctx, p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func recvFull(ctx context.Context, s layer.Socket, p []byte) error {
	for len(p) > 0 {
		n, err := s.Receive(ctx, p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			return err
		}
	}
	return nil
}
