// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"encoding/binary"
	"math"
)

// The oven stores floats in two consecutive 16-bit registers: IEEE-754
// single precision with the low-order word first. On the wire that means
// the four bytes of the big-endian IEEE encoding with the 16-bit halves
// swapped. The codec is a pure bit shuffle, so decode(encode(f)) == f
// bit-exactly for every value including ±0, denormals and NaN payloads.

// PutFloat writes f into the 4 bytes at off in the oven's shuffled layout.
func PutFloat(buf []byte, off int, f float32) error {
	if buf == nil || off+4 > len(buf) {
		return ErrNoBuffer
	}
	bits := math.Float32bits(f)
	binary.BigEndian.PutUint16(buf[off:], uint16(bits))
	binary.BigEndian.PutUint16(buf[off+2:], uint16(bits>>16))
	return nil
}

// GetFloat reads a shuffled 4-byte float from off. An unreadable buffer
// yields NaN along with the error.
func GetFloat(buf []byte, off int) (float32, error) {
	if buf == nil || off+4 > len(buf) {
		return float32(math.NaN()), ErrNoBuffer
	}
	lo := binary.BigEndian.Uint16(buf[off:])
	hi := binary.BigEndian.Uint16(buf[off+2:])
	return math.Float32frombits(uint32(hi)<<16 | uint32(lo)), nil
}

// FloatToWords splits f into the two register words as the oven orders
// them: low-order word first.
func FloatToWords(f float32) (w0, w1 uint16) {
	bits := math.Float32bits(f)
	return uint16(bits), uint16(bits >> 16)
}

// WordsToFloat reassembles a float from its two register words.
func WordsToFloat(w0, w1 uint16) float32 {
	return math.Float32frombits(uint32(w1)<<16 | uint32(w0))
}
