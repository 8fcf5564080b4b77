// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

const (
	crcPolynomial = 0xA001 // reflected MODBus polynomial
	crcInitial    = 0xFFFF
)

// CalculateCRC computes the oven's CRC16 over data. This is CRC-16/MODBUS
// (LSB-first, poly 0xA001, init 0xFFFF) with the two output bytes swapped,
// so the result can be appended big-endian like every other word on the
// wire.
func CalculateCRC(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc<<8 | crc>>8
}
