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

package fiber

import (
	"context"
	"encoding/binary"

	"github.com/nabbar/sockfwd/layer"
)

// frame is the decoded form of one 12-byte-header packet. Local and Remote
// always carry the sender's own view of the pair; the receiver computes
// its own (local, remote) key by swapping them.
type frame struct {
	Type    frameType
	Flags   byte
	Local   uint32
	Remote  uint32
	Payload []byte
}

func encodeFrame(f frame) []byte {
	buf := make([]byte, headerSize+len(f.Payload))
	buf[0] = byte(f.Type)
	buf[1] = f.Flags
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(f.Payload)))
	binary.LittleEndian.PutUint32(buf[4:8], f.Local)
	binary.LittleEndian.PutUint32(buf[8:12], f.Remote)
	copy(buf[headerSize:], f.Payload)
	return buf
}

// readFrame blocks until one full frame has been read off s, issuing
// Receive in a loop since a layer.Socket's Receive may return short reads.
func readFrame(ctx context.Context, s layer.Socket) (frame, error) {
	hdr := make([]byte, headerSize)
	if err := recvFull(ctx, s, hdr); err != nil {
		return frame{}, err
	}

	length := binary.LittleEndian.Uint16(hdr[2:4])
	var payload []byte
	if length > 0 {
		payload = make([]byte, length)
		if err := recvFull(ctx, s, payload); err != nil {
			return frame{}, err
		}
	}

	return frame{
		Type:    frameType(hdr[0]),
		Flags:   hdr[1],
		Local:   binary.LittleEndian.Uint32(hdr[4:8]),
		Remote:  binary.LittleEndian.Uint32(hdr[8:12]),
		Payload: payload,
	}, nil
}

func recvFull(ctx context.Context, s layer.Socket, buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := s.Receive(ctx, buf[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return layer.ErrBrokenPipe.Error(nil)
		}
	}
	return nil
}

func sendFull(ctx context.Context, s layer.Socket, buf []byte) error {
	for off := 0; off < len(buf); {
		n, err := s.Send(ctx, buf[off:])
		if n > 0 {
			off += n
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return layer.ErrBrokenPipe.Error(nil)
		}
	}
	return nil
}

func encodeCredit(credit uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, credit)
	return buf
}

func decodeCredit(p []byte) uint32 {
	if len(p) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(p)
}
