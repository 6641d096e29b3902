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

// ErrBadAddress ... ErrIOError form the single error-code namespace shared by
// every layer of the stack (physical, proxy, crypto, circuit, iface,
// network, routing, fiber). A concrete layer package reuses these codes
// directly for the kinds it can produce and only registers its own
// additional codes, in its own errors.MinPkgXxx range, for failures this
// common taxonomy does not name.
const (
	ErrBadAddress errors.CodeError = iota + errors.MinPkgLayer
	ErrAddressInUse
	ErrAddressNotAvailable
	ErrWrongProtocolType
	ErrProtocolError
	ErrConnectionAborted
	ErrConnectionRefused
	ErrMessageSize
	ErrBrokenPipe
	ErrNotConnected
	ErrNoLink
	ErrNetworkDown
	ErrOperationAborted
	ErrInterrupted
	ErrIdentifierRemoved
	ErrBadFileDescriptor
	ErrDeviceOrResourceBusy
	ErrMissingConfigParameters
	ErrInvalidArgument
	ErrIOError
)

func init() {
	errors.RegisterIdFctMessage(ErrBadAddress, getMessage)
}

func getMessage(code errors.CodeError) string {
	switch code {
	case errors.UnknownError:
		return ""
	case ErrBadAddress:
		return "bad address"
	case ErrAddressInUse:
		return "address already in use"
	case ErrAddressNotAvailable:
		return "address not available"
	case ErrWrongProtocolType:
		return "wrong protocol type"
	case ErrProtocolError:
		return "protocol framing error"
	case ErrConnectionAborted:
		return "connection aborted"
	case ErrConnectionRefused:
		return "connection refused"
	case ErrMessageSize:
		return "message too large for the receive buffer"
	case ErrBrokenPipe:
		return "broken pipe"
	case ErrNotConnected:
		return "not connected"
	case ErrNoLink:
		return "no link"
	case ErrNetworkDown:
		return "network is down"
	case ErrOperationAborted:
		return "operation aborted"
	case ErrInterrupted:
		return "interrupted"
	case ErrIdentifierRemoved:
		return "identifier removed"
	case ErrBadFileDescriptor:
		return "bad file descriptor"
	case ErrDeviceOrResourceBusy:
		return "device or resource busy"
	case ErrMissingConfigParameters:
		return "missing config parameters"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrIOError:
		return "i/o error"
	}

	return ""
}
