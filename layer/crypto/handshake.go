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

package crypto

import (
	"context"
	"crypto/tls"

	"github.com/nabbar/sockfwd/layer"
)

// dialAndHandshake dials remote through next and performs the TLS client
// handshake on strand, shared by both the thin and buffered Socket
// variants since the connection-setup sequence is identical; only what
// happens to Read afterward differs.
func dialAndHandshake(ctx context.Context, next layer.Socket, cfg Config, strand *layer.Strand, remote layer.Endpoint) (*socketConn, *tls.Conn, error) {
	if err := next.Connect(ctx, remote); err != nil {
		return nil, nil, err
	}

	tlsCfg, err := buildTLSConfig(cfg)
	if err != nil {
		_ = next.Close()
		return nil, nil, err
	}

	conn := newSocketConn(next)
	conn.setContext(ctx)
	tc := tls.Client(conn, tlsCfg)

	var hsErr error
	strand.Run(func() {
		hsErr = tc.HandshakeContext(ctx)
	})
	if hsErr != nil {
		_ = next.Close()
		return nil, nil, ErrHandshakeFailed.Error(hsErr)
	}

	return conn, tc, nil
}
