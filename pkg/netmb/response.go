// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

// VerifyCRC checks the trailing checksum against the message body.
func (d *Datagram) VerifyCRC() error {
	if d == nil {
		return ErrNoBuffer
	}
	if d.n < 2 {
		return ErrShortMessage
	}
	want, err := getWord(d.data[:d.n], d.n-2)
	if err != nil {
		return err
	}
	if CalculateCRC(d.data[:d.n-2]) != want {
		return ErrBadMessage
	}
	return nil
}

// Function decodes the response's function code. If the oven flagged an
// error, the returned code has the flag stripped and the error is the
// oven's BusError; an error byte that itself carries the flag is reported
// as ErrBusErrFlag since no such code exists.
func (d *Datagram) Function() (Function, error) {
	if d == nil {
		return 0, ErrNoBuffer
	}
	if d.n < 2 {
		return 0, ErrShortMessage
	}
	fn := Function(d.data[1])
	if fn&errorFlag == 0 {
		return fn, nil
	}
	fn &^= errorFlag
	if d.n < 3 {
		return fn, ErrShortMessage
	}
	ec := d.data[2]
	if ec&errorFlag != 0 {
		return fn, ErrBusErrFlag
	}
	return fn, BusError(ec | errorFlag)
}

// ParseReadN parses a read-n response, filling vals with as many register
// words as fit and returning the word count the oven actually sent. If
// the oven sent more words than vals can hold the extra words are dropped
// and ErrDataTooLong is returned alongside the true count; the response
// is still complete and must not be retried.
func (d *Datagram) ParseReadN(vals []uint16) (int, error) {
	if d == nil {
		return 0, ErrNoBuffer
	}
	fn, err := d.Function()
	if err != nil {
		return 0, err
	}
	if !fn.IsReadN() {
		return 0, ErrBadMessage
	}
	if d.n < 3 {
		return 0, ErrShortMessage
	}
	nbytes := int(d.data[2])
	if err := d.shrink(nbytes + 5); err != nil {
		return 0, err
	}
	if err := d.VerifyCRC(); err != nil {
		return 0, err
	}
	if nbytes&1 != 0 {
		return 0, ErrBadMessage
	}
	words := nbytes / 2
	for i := 0; i < len(vals) && i < words; i++ {
		vals[i], _ = getWord(d.data[:d.n], 3+2*i)
	}
	if words > len(vals) {
		return words, ErrDataTooLong
	}
	return words, nil
}

// ParseWrite parses a write-one response, returning the echoed register
// address and value.
func (d *Datagram) ParseWrite() (addr, val uint16, err error) {
	if d == nil {
		return 0, 0, ErrNoBuffer
	}
	fn, err := d.Function()
	if err != nil {
		return 0, 0, err
	}
	if fn != FnWrite {
		return 0, 0, ErrBadMessage
	}
	if err := d.shrink(8); err != nil {
		return 0, 0, err
	}
	if err := d.VerifyCRC(); err != nil {
		return 0, 0, err
	}
	addr, _ = getWord(d.data[:d.n], 2)
	val, _ = getWord(d.data[:d.n], 4)
	return addr, val, nil
}

// ParseWriteN parses a write-n response, returning the echoed start
// address and word count.
func (d *Datagram) ParseWriteN() (addr uint16, words int, err error) {
	if d == nil {
		return 0, 0, ErrNoBuffer
	}
	fn, err := d.Function()
	if err != nil {
		return 0, 0, err
	}
	if fn != FnWriteN {
		return 0, 0, ErrBadMessage
	}
	if err := d.shrink(8); err != nil {
		return 0, 0, err
	}
	if err := d.VerifyCRC(); err != nil {
		return 0, 0, err
	}
	addr, _ = getWord(d.data[:d.n], 2)
	n, _ := getWord(d.data[:d.n], 4)
	return addr, int(n), nil
}
