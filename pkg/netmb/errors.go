// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"errors"
	"fmt"
)

// Codec and exchange errors. ErrShortMessage is the only retryable one:
// it means the message seen so far is a valid prefix and more bytes may
// still arrive from the bridge.
var (
	ErrNoBuffer     = errors.New("no buffer")
	ErrMsgTooLong   = errors.New("message too long for datagram")
	ErrDataTooLong  = errors.New("data too long for a single operation")
	ErrBadMessage   = errors.New("bad message")
	ErrBusErrFlag   = errors.New("error flag set on bus error code")
	ErrShortMessage = errors.New("message too short")
	ErrInvalidParam = errors.New("invalid parameter")
	ErrTimeout      = errors.New("timed out")
	ErrMismatch     = errors.New("response does not match request")
	ErrSafety       = errors.New("safety interlock denied operation")
)

// BusError is an error response from the oven itself. The sub-code is
// stored with the high bit set, matching the wire (0x81..0x85).
type BusError uint8

func (e BusError) Error() string {
	return fmt.Sprintf("bus error %#02x: %s", uint8(e), BusErrorName(uint8(e)))
}

// BusErrorName returns the oven's description for a bus error sub-code.
func BusErrorName(code uint8) string {
	switch code {
	case BusInvalidFunction:
		return "invalid function"
	case BusInvalidAddress:
		return "invalid parameter address"
	case BusValueRange:
		return "parameter value outside range of values"
	case BusNotReady:
		return "slave not ready"
	case BusAccessDenied:
		return "write access to parameter denied"
	}
	return "unknown error"
}
