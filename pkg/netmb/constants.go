// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

// Package netmb implements the net-MODBus dialect spoken by BINDER
// laboratory ovens behind a Lantronix XPort serial-to-TCP bridge.
//
// The dialect is MODBus RTU framing carried over a raw TCP byte stream:
// requests and responses keep their serial CRC, and the bridge may split
// a single response across several TCP segments. This package provides
// the frame codec (requests, responses, CRC, the oven's shuffled float
// format) and a reassembling exchange loop over any byte-stream
// transport.
package netmb

// Wire constants
const (
	SlaveAddress = 0x01  // ovens always answer as slave 1
	BridgePort   = 10001 // XPort data channel
	MaxDatagram  = 256
	MaxWords     = 80 // per read-n / write-n operation
)

// Function is a MODBus function code.
type Function uint8

// Function codes understood by the oven
const (
	FnReadN    Function = 0x03
	FnReadNAlt Function = 0x04 // treated identically to FnReadN by the oven
	FnWrite    Function = 0x06
	FnWriteN   Function = 0x10
)

// IsReadN reports whether fn is either of the two equivalent read-n codes.
func (fn Function) IsReadN() bool {
	return fn == FnReadN || fn == FnReadNAlt
}

// errorFlag is set on the function code of a bus error response.
const errorFlag = 0x80

// Bus error sub-codes, as stored in a BusError (high bit kept set so the
// zero value can never be mistaken for a real error code)
const (
	BusInvalidFunction = 0x81 // "invalid function"
	BusInvalidAddress  = 0x82 // "invalid parameter address"
	BusValueRange      = 0x83 // "parameter value outside range of values"
	BusNotReady        = 0x84 // "slave not ready"; the controller claims this never happens
	BusAccessDenied    = 0x85 // "write access to parameter denied"
)
