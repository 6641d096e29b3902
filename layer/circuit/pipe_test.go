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

package circuit_test

import (
	"context"
	"encoding/binary"
	"net"

	libcbr "github.com/fxamacker/cbor/v2"

	"github.com/nabbar/sockfwd/layer"
)

// pipeSocket wraps one end of a net.Pipe as a layer.Socket, standing in for
// the reliable stream a circuit.Socket's next layer would normally be.
type pipeSocket struct {
	conn net.Conn
}

func newPipePair() (*pipeSocket, *pipeSocket) {
	a, b := net.Pipe()
	return &pipeSocket{conn: a}, &pipeSocket{conn: b}
}

func (p *pipeSocket) Open(ctx context.Context) error                          { return nil }
func (p *pipeSocket) Bind(ctx context.Context, local layer.Endpoint) error    { return nil }
func (p *pipeSocket) Connect(ctx context.Context, remote layer.Endpoint) error { return nil }
func (p *pipeSocket) Close() error                                            { return p.conn.Close() }
func (p *pipeSocket) Shutdown(how layer.ShutdownMode) error                   { return nil }
func (p *pipeSocket) Send(ctx context.Context, b []byte) (int, error) {
	n, err := p.conn.Write(b)
	if err != nil {
		return n, layer.ErrBrokenPipe.Error(err)
	}
	return n, nil
}
func (p *pipeSocket) Receive(ctx context.Context, b []byte) (int, error) {
	n, err := p.conn.Read(b)
	if err != nil {
		return n, layer.ErrBrokenPipe.Error(err)
	}
	return n, nil
}
func (p *pipeSocket) LocalEndpoint() layer.Endpoint  { return layer.ZeroEndpoint() }
func (p *pipeSocket) RemoteEndpoint() layer.Endpoint { return layer.ZeroEndpoint() }
func (p *pipeSocket) Cancel()                        { _ = p.conn.Close() }

var _ layer.Socket = (*pipeSocket)(nil)

// wireInitConnection and wireValidateConnection mirror circuit's own
// unexported initConnection/validateConnection wire structs (message.go),
// reproduced here so an external test can speak the handshake protocol
// without reaching into the package's private types.
type wireInitConnection struct {
	ID            string `cbor:"id"`
	Forward       uint8  `cbor:"forward"`
	RemainingHops string `cbor:"remaining_hops"`
}

type wireValidateConnection struct {
	Status uint8 `cbor:"status"`
}

func readWireFrame(conn net.Conn, v interface{}) error {
	hdr := make([]byte, 4)
	if _, err := readFullConn(conn, hdr); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(hdr)
	payload := make([]byte, n)
	if _, err := readFullConn(conn, payload); err != nil {
		return err
	}
	return libcbr.Unmarshal(payload, v)
}

func writeWireFrame(conn net.Conn, v interface{}) error {
	payload, err := libcbr.Marshal(v)
	if err != nil {
		return err
	}
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(payload)))
	if _, err := conn.Write(hdr); err != nil {
		return err
	}
	_, err = conn.Write(payload)
	return err
}

func readFullConn(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
