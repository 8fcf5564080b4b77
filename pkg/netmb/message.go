// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

// Datagram is a bounded message buffer. Requests are built into one and
// responses are reassembled into one; the logical length never exceeds
// MaxDatagram, which is more than any frame the oven can produce.
type Datagram struct {
	n    int
	data [MaxDatagram]byte
}

// Len returns the logical length in bytes.
func (d *Datagram) Len() int {
	if d == nil {
		return 0
	}
	return d.n
}

// Bytes returns the message contents. The slice aliases the datagram's
// storage and is only valid until the next mutation.
func (d *Datagram) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.data[:d.n]
}

// Reset empties the datagram.
func (d *Datagram) Reset() {
	if d != nil {
		d.n = 0
	}
}

// SetLen sets the logical length, growing or shrinking as needed.
func (d *Datagram) SetLen(n int) error {
	if d == nil {
		return ErrNoBuffer
	}
	if n < 0 {
		return ErrInvalidParam
	}
	if n > MaxDatagram {
		return ErrMsgTooLong
	}
	d.n = n
	return nil
}

// shrink sets the logical length once the definitive frame length is
// known. Asking for more bytes than are present means the message is
// still incomplete.
func (d *Datagram) shrink(n int) error {
	if d == nil {
		return ErrNoBuffer
	}
	if n > d.n {
		return ErrShortMessage
	}
	d.n = n
	return nil
}

// Append adds received bytes to the datagram, consuming at most the
// remaining capacity. It returns the number of bytes consumed;
// ErrMsgTooLong means the datagram was already full.
func (d *Datagram) Append(p []byte) (int, error) {
	if d == nil {
		return 0, ErrNoBuffer
	}
	room := MaxDatagram - d.n
	if room == 0 && len(p) > 0 {
		return 0, ErrMsgTooLong
	}
	n := copy(d.data[d.n:], p)
	d.n += n
	return n, nil
}
