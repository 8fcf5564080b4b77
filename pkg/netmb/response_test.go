// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"errors"
	"testing"
)

// respFrame builds a datagram containing body plus a valid checksum.
func respFrame(t *testing.T, body ...byte) *Datagram {
	t.Helper()
	var d Datagram
	if _, err := d.Append(body); err != nil {
		t.Fatalf("respFrame append: %v", err)
	}
	crc := CalculateCRC(body)
	if _, err := d.Append([]byte{byte(crc >> 8), byte(crc)}); err != nil {
		t.Fatalf("respFrame crc append: %v", err)
	}
	return &d
}

func TestParseReadN_Basic(t *testing.T) {
	d := respFrame(t, 0x01, 0x03, 0x04, 0x12, 0x34, 0x56, 0x78)
	vals := make([]uint16, 2)
	words, err := d.ParseReadN(vals)
	if err != nil {
		t.Fatalf("ParseReadN error: %v", err)
	}
	if words != 2 {
		t.Errorf("words = %d, want 2", words)
	}
	if vals[0] != 0x1234 || vals[1] != 0x5678 {
		t.Errorf("vals = %04X %04X, want 1234 5678", vals[0], vals[1])
	}
}

func TestParseReadN_AltFunctionCode(t *testing.T) {
	// The oven may answer read requests with code 0x04.
	d := respFrame(t, 0x01, 0x04, 0x02, 0x00, 0x2A)
	vals := make([]uint16, 1)
	words, err := d.ParseReadN(vals)
	if err != nil {
		t.Fatalf("ParseReadN error: %v", err)
	}
	if words != 1 || vals[0] != 0x002A {
		t.Errorf("got %d words, vals[0]=%04X", words, vals[0])
	}
}

func TestParseReadN_EveryPrefixIsShort(t *testing.T) {
	full := respFrame(t, 0x01, 0x03, 0x04, 0x12, 0x34, 0x56, 0x78)
	raw := full.Bytes()
	vals := make([]uint16, 2)

	for n := 0; n < len(raw); n++ {
		var d Datagram
		d.Append(raw[:n])
		if _, err := d.ParseReadN(vals); !errors.Is(err, ErrShortMessage) {
			t.Errorf("prefix of %d bytes: error = %v, want ErrShortMessage", n, err)
		}
	}
}

func TestParseReadN_TrailingBytesDiscarded(t *testing.T) {
	d := respFrame(t, 0x01, 0x03, 0x02, 0x00, 0x01)
	d.Append([]byte{0xDE, 0xAD})
	vals := make([]uint16, 1)
	words, err := d.ParseReadN(vals)
	if err != nil {
		t.Fatalf("ParseReadN with trailing bytes error: %v", err)
	}
	if words != 1 || vals[0] != 1 {
		t.Errorf("got %d words, vals[0]=%04X", words, vals[0])
	}
	if d.Len() != 7 {
		t.Errorf("datagram length after parse = %d, want 7", d.Len())
	}
}

func TestParseReadN_MoreWordsThanRequested(t *testing.T) {
	// Device answered with two words when we asked for one: the true
	// count and the words that fit are still delivered.
	d := respFrame(t, 0x01, 0x03, 0x04, 0x12, 0x34, 0x56, 0x78)
	vals := make([]uint16, 1)
	words, err := d.ParseReadN(vals)
	if !errors.Is(err, ErrDataTooLong) {
		t.Fatalf("error = %v, want ErrDataTooLong", err)
	}
	if words != 2 {
		t.Errorf("words = %d, want 2", words)
	}
	if vals[0] != 0x1234 {
		t.Errorf("vals[0] = %04X, want 1234", vals[0])
	}
}

func TestParseReadN_FewerWordsThanRequested(t *testing.T) {
	d := respFrame(t, 0x01, 0x03, 0x02, 0x00, 0x2A)
	vals := []uint16{0xFFFF, 0xFFFF, 0xFFFF}
	words, err := d.ParseReadN(vals)
	if err != nil {
		t.Fatalf("ParseReadN error: %v", err)
	}
	if words != 1 {
		t.Errorf("words = %d, want 1", words)
	}
	if vals[1] != 0xFFFF || vals[2] != 0xFFFF {
		t.Errorf("untouched vals were overwritten: %04X %04X", vals[1], vals[2])
	}
}

func TestParseReadN_OddByteCount(t *testing.T) {
	d := respFrame(t, 0x01, 0x03, 0x03, 0xAA, 0xBB, 0xCC)
	if _, err := d.ParseReadN(make([]uint16, 2)); !errors.Is(err, ErrBadMessage) {
		t.Errorf("odd byte count error = %v, want ErrBadMessage", err)
	}
}

func TestParseReadN_BadCRC(t *testing.T) {
	d := respFrame(t, 0x01, 0x03, 0x02, 0x00, 0x01)
	d.data[d.n-1] ^= 0xFF
	if _, err := d.ParseReadN(make([]uint16, 1)); !errors.Is(err, ErrBadMessage) {
		t.Errorf("bad CRC error = %v, want ErrBadMessage", err)
	}
}

func TestParseReadN_WrongFunction(t *testing.T) {
	d := respFrame(t, 0x01, 0x06, 0x10, 0x77, 0x00, 0x2A)
	if _, err := d.ParseReadN(make([]uint16, 1)); !errors.Is(err, ErrBadMessage) {
		t.Errorf("wrong function error = %v, want ErrBadMessage", err)
	}
}

func TestFunction_BusError(t *testing.T) {
	// Error response to a read: function 0x03 with the error flag, sub
	// code 2 ("invalid parameter address").
	d := respFrame(t, 0x01, 0x83, 0x02)
	fn, err := d.Function()
	if fn != FnReadN {
		t.Errorf("fn = %#02x, want 0x03", uint8(fn))
	}
	var be BusError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want BusError", err)
	}
	if uint8(be) != BusInvalidAddress {
		t.Errorf("bus error = %#02x, want %#02x", uint8(be), BusInvalidAddress)
	}
}

func TestFunction_BusErrorSurfacesFromParsers(t *testing.T) {
	d := respFrame(t, 0x01, 0x86, 0x05)
	_, _, err := d.ParseWrite()
	var be BusError
	if !errors.As(err, &be) {
		t.Fatalf("error = %v, want BusError", err)
	}
	if uint8(be) != BusAccessDenied {
		t.Errorf("bus error = %#02x, want %#02x", uint8(be), BusAccessDenied)
	}
}

func TestFunction_ErrorFlagOnErrorCode(t *testing.T) {
	// An error code that itself carries the error flag is an anomaly
	// distinct from any real bus error.
	d := respFrame(t, 0x01, 0x83, 0x82)
	_, err := d.Function()
	if !errors.Is(err, ErrBusErrFlag) {
		t.Errorf("error = %v, want ErrBusErrFlag", err)
	}
}

func TestFunction_ErrorResponseTruncated(t *testing.T) {
	var d Datagram
	d.Append([]byte{0x01, 0x83})
	if _, err := d.Function(); !errors.Is(err, ErrShortMessage) {
		t.Errorf("error = %v, want ErrShortMessage", err)
	}
}

func TestParseWrite_Echo(t *testing.T) {
	d := respFrame(t, 0x01, 0x06, 0x10, 0x77, 0x00, 0x2A)
	addr, val, err := d.ParseWrite()
	if err != nil {
		t.Fatalf("ParseWrite error: %v", err)
	}
	if addr != 0x1077 || val != 0x002A {
		t.Errorf("echo = %04X/%04X, want 1077/002A", addr, val)
	}
}

func TestParseWriteN_Echo(t *testing.T) {
	d := respFrame(t, 0x01, 0x10, 0x15, 0x81, 0x00, 0x02)
	addr, words, err := d.ParseWriteN()
	if err != nil {
		t.Fatalf("ParseWriteN error: %v", err)
	}
	if addr != 0x1581 || words != 2 {
		t.Errorf("echo = %04X/%d, want 1581/2", addr, words)
	}
}

func TestParsers_NilDatagram(t *testing.T) {
	var d *Datagram
	if _, err := d.ParseReadN(nil); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("nil ParseReadN error = %v, want ErrNoBuffer", err)
	}
	if _, _, err := d.ParseWrite(); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("nil ParseWrite error = %v, want ErrNoBuffer", err)
	}
	if _, _, err := d.ParseWriteN(); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("nil ParseWriteN error = %v, want ErrNoBuffer", err)
	}
}
