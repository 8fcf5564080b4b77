// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

// seal appends the checksum over everything written so far and fixes the
// final length at body+2.
func (d *Datagram) seal(body int) error {
	if err := d.SetLen(body + 2); err != nil {
		return err
	}
	return putWord(d.data[:d.n], body, CalculateCRC(d.data[:body]))
}

// BuildReadN builds a request to read words consecutive registers
// starting at addr. Function code 0x03; the oven treats 0x04 the same
// but we only ever send 0x03.
func (d *Datagram) BuildReadN(addr uint16, words int) error {
	if d == nil {
		return ErrNoBuffer
	}
	if words < 0 {
		return ErrInvalidParam
	}
	if words > MaxWords {
		return ErrDataTooLong
	}
	d.data[0] = SlaveAddress
	d.data[1] = byte(FnReadN)
	putWord(d.data[:6], 2, addr)
	putWord(d.data[:6], 4, uint16(words))
	return d.seal(6)
}

// BuildWrite builds a request to write val to the single register addr.
func (d *Datagram) BuildWrite(addr, val uint16) error {
	if d == nil {
		return ErrNoBuffer
	}
	d.data[0] = SlaveAddress
	d.data[1] = byte(FnWrite)
	putWord(d.data[:6], 2, addr)
	putWord(d.data[:6], 4, val)
	return d.seal(6)
}

// BuildWriteN builds a request to write vals to consecutive registers
// starting at addr.
func (d *Datagram) BuildWriteN(addr uint16, vals []uint16) error {
	if d == nil {
		return ErrNoBuffer
	}
	if vals == nil {
		return ErrInvalidParam
	}
	if len(vals) > MaxWords {
		return ErrDataTooLong
	}
	body := 7 + 2*len(vals)
	d.data[0] = SlaveAddress
	d.data[1] = byte(FnWriteN)
	putWord(d.data[:body], 2, addr)
	putWord(d.data[:body], 4, uint16(len(vals)))
	d.data[6] = byte(2 * len(vals))
	for i, v := range vals {
		putWord(d.data[:body], 7+2*i, v)
	}
	return d.seal(body)
}
