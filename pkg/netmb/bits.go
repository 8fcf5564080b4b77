// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import "encoding/binary"

// putWord writes a big-endian 16-bit word at off.
func putWord(buf []byte, off int, v uint16) error {
	if buf == nil || off+2 > len(buf) {
		return ErrNoBuffer
	}
	binary.BigEndian.PutUint16(buf[off:], v)
	return nil
}

// getWord reads a big-endian 16-bit word from off.
func getWord(buf []byte, off int) (uint16, error) {
	if buf == nil || off+2 > len(buf) {
		return 0, ErrNoBuffer
	}
	return binary.BigEndian.Uint16(buf[off:]), nil
}
