// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package oven

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ovenworks/ovenctl/pkg/netmb"
)

// fakeOven acts as the device end of the connection: it parses each
// request written to it and queues the response for reading, optionally
// a byte at a time to exercise reassembly.
type fakeOven struct {
	regs     map[uint16]uint16
	pending  bytes.Buffer
	chunk    int   // max bytes per Read, 0 = unlimited
	busError uint8 // when set, answer every request with this sub-code
}

func newFakeOven() *fakeOven {
	return &fakeOven{regs: make(map[uint16]uint16)}
}

func (f *fakeOven) setFloat(addr uint16, val float64) {
	w0, w1 := netmb.FloatToWords(float32(val))
	f.regs[addr] = w0
	f.regs[addr+1] = w1
}

func (f *fakeOven) setText(addr uint16, words int, text string) {
	for i := 0; i < words; i++ {
		ch := byte(' ')
		if i < len(text) {
			ch = text[i]
		}
		f.regs[addr+uint16(i)] = uint16(ch)
	}
}

func (f *fakeOven) respond(body []byte) {
	crc := netmb.CalculateCRC(body)
	f.pending.Write(body)
	f.pending.Write([]byte{byte(crc >> 8), byte(crc)})
}

func (f *fakeOven) Write(p []byte) (int, error) {
	fn := p[1]
	addr := binary.BigEndian.Uint16(p[2:])
	if f.busError != 0 {
		f.respond([]byte{0x01, fn | 0x80, f.busError &^ 0x80})
		return len(p), nil
	}
	switch fn {
	case 0x03, 0x04:
		words := int(binary.BigEndian.Uint16(p[4:]))
		body := []byte{0x01, fn, byte(2 * words)}
		for i := 0; i < words; i++ {
			body = binary.BigEndian.AppendUint16(body, f.regs[addr+uint16(i)])
		}
		f.respond(body)
	case 0x06:
		f.regs[addr] = binary.BigEndian.Uint16(p[4:])
		f.respond(p[:6])
	case 0x10:
		words := int(binary.BigEndian.Uint16(p[4:]))
		for i := 0; i < words; i++ {
			f.regs[addr+uint16(i)] = binary.BigEndian.Uint16(p[7+2*i:])
		}
		f.respond(p[:6])
	}
	return len(p), nil
}

func (f *fakeOven) Read(p []byte) (int, error) {
	if f.pending.Len() == 0 {
		return 0, io.EOF
	}
	if f.chunk > 0 && len(p) > f.chunk {
		p = p[:f.chunk]
	}
	return f.pending.Read(p)
}

func (f *fakeOven) Close() error { return nil }

func (f *fakeOven) client() *Client {
	return &Client{
		Host: "oven.test",
		Dial: func() (io.ReadWriteCloser, error) { return f, nil },
	}
}

func TestClient_GetTemp(t *testing.T) {
	f := newFakeOven()
	f.setFloat(RegCurTemp, 37.5)

	temp, err := f.client().GetTemp()
	if err != nil {
		t.Fatalf("GetTemp error: %v", err)
	}
	if temp != 37.5 {
		t.Errorf("GetTemp = %v, want 37.5", temp)
	}
}

func TestClient_GetTempChunkedResponse(t *testing.T) {
	f := newFakeOven()
	f.setFloat(RegCurTemp, -12.25)
	f.chunk = 1

	temp, err := f.client().GetTemp()
	if err != nil {
		t.Fatalf("GetTemp over 1-byte reads error: %v", err)
	}
	if temp != -12.25 {
		t.Errorf("GetTemp = %v, want -12.25", temp)
	}
}

func TestClient_SetSetpoint(t *testing.T) {
	f := newFakeOven()
	f.setText(RegAlarmText, alarmTextWords, "")

	if err := f.client().SetSetpoint(55, false); err != nil {
		t.Fatalf("SetSetpoint error: %v", err)
	}

	w0, w1 := netmb.FloatToWords(55)
	if f.regs[RegManSetpt] != w0 || f.regs[RegManSetpt+1] != w1 {
		t.Errorf("manual setpoint registers = %04X %04X, want %04X %04X",
			f.regs[RegManSetpt], f.regs[RegManSetpt+1], w0, w1)
	}
	if f.regs[RegBasicSetpt] != w0 || f.regs[RegBasicSetpt+1] != w1 {
		t.Errorf("basic setpoint registers = %04X %04X, want %04X %04X",
			f.regs[RegBasicSetpt], f.regs[RegBasicSetpt+1], w0, w1)
	}
}

func TestClient_SetSetpointRatedRange(t *testing.T) {
	f := newFakeOven()
	c := f.client()

	err := c.SetSetpoint(200, false)
	var tr *TempRangeError
	if !errors.As(err, &tr) {
		t.Fatalf("SetSetpoint(200) error = %v, want TempRangeError", err)
	}
	if !tr.Over || tr.Limit != RatedMaxTemp {
		t.Errorf("TempRangeError = %+v", tr)
	}
	if !errors.Is(err, netmb.ErrSafety) {
		t.Error("TempRangeError should match netmb.ErrSafety")
	}

	if err := c.SetSetpoint(-41, false); err == nil {
		t.Error("SetSetpoint(-41) should fail")
	}
}

func TestClient_CheckSafetyAlarm(t *testing.T) {
	f := newFakeOven()
	f.regs[RegAlarm] = 1
	f.setText(RegAlarmText, alarmTextWords, "OVERTEMP")

	err := f.client().CheckSafety(false)
	var ae *AlarmError
	if !errors.As(err, &ae) {
		t.Fatalf("CheckSafety error = %v, want AlarmError", err)
	}
	if ae.Text != "OVERTEMP" {
		t.Errorf("alarm text = %q, want OVERTEMP", ae.Text)
	}

	// Alarms are not overridable.
	if err := f.client().CheckSafety(true); !errors.Is(err, netmb.ErrSafety) {
		t.Errorf("CheckSafety(force) with alarm error = %v, want safety error", err)
	}
}

func TestClient_CheckSafetyDoorAndNote(t *testing.T) {
	f := newFakeOven()
	f.regs[RegDoorOpen] = 1
	c := f.client()

	err := c.CheckSafety(false)
	var de *DoorOpenError
	if !errors.As(err, &de) {
		t.Fatalf("CheckSafety error = %v, want DoorOpenError", err)
	}
	if err := c.CheckSafety(true); err != nil {
		t.Errorf("CheckSafety(force) with open door error: %v", err)
	}

	f.regs[RegDoorOpen] = 0
	f.regs[RegNote] = 1
	f.setText(RegAlarmText, alarmTextWords, "CHECK WATER")
	err = c.CheckSafety(false)
	var ne *NoteError
	if !errors.As(err, &ne) {
		t.Fatalf("CheckSafety error = %v, want NoteError", err)
	}
	if ne.Text != "CHECK WATER" {
		t.Errorf("note text = %q, want CHECK WATER", ne.Text)
	}
	if err := c.CheckSafety(true); err != nil {
		t.Errorf("CheckSafety(force) with note error: %v", err)
	}
}

func TestClient_GetAlarmTextBlank(t *testing.T) {
	f := newFakeOven()
	f.setText(RegAlarmText, alarmTextWords, "")

	text, err := f.client().GetAlarmText()
	if err != nil {
		t.Fatalf("GetAlarmText error: %v", err)
	}
	if text != "" {
		t.Errorf("all-spaces alarm text = %q, want empty", text)
	}
}

func TestClient_Modes(t *testing.T) {
	f := newFakeOven()
	c := f.client()

	if err := c.SetModeActive(false); err != nil {
		t.Fatalf("SetModeActive error: %v", err)
	}
	mode, err := c.GetMode()
	if err != nil {
		t.Fatalf("GetMode error: %v", err)
	}
	if mode != ModeManual || mode.IsIdle() {
		t.Errorf("mode after SetModeActive = %v", mode)
	}
	if mode.String() != "manual" {
		t.Errorf("mode string = %q, want manual", mode.String())
	}

	if err := c.SetModeIdle(); err != nil {
		t.Fatalf("SetModeIdle error: %v", err)
	}
	mode, err = c.GetMode()
	if err != nil {
		t.Fatalf("GetMode error: %v", err)
	}
	if !mode.IsIdle() {
		t.Errorf("mode after SetModeIdle = %v", mode)
	}
	if mode.String() != "idle" {
		t.Errorf("mode string = %q, want idle", mode.String())
	}
}

func TestClient_BedewProtection(t *testing.T) {
	f := newFakeOven()
	f.regs[RegOpLines] = 0x0006 // unrelated lines stay untouched
	c := f.client()

	if err := c.SetBedewProtection(true); err != nil {
		t.Fatalf("SetBedewProtection(true) error: %v", err)
	}
	if f.regs[RegOpLines] != 0x0007 {
		t.Errorf("op lines = %04X, want 0007", f.regs[RegOpLines])
	}
	on, err := c.BedewProtection()
	if err != nil || !on {
		t.Errorf("BedewProtection = %v, %v; want true", on, err)
	}

	if err := c.SetBedewProtection(false); err != nil {
		t.Fatalf("SetBedewProtection(false) error: %v", err)
	}
	if f.regs[RegOpLines] != 0x0006 {
		t.Errorf("op lines = %04X, want 0006", f.regs[RegOpLines])
	}
}

func TestClient_BusErrorSurfaces(t *testing.T) {
	f := newFakeOven()
	f.busError = netmb.BusAccessDenied

	err := f.client().WriteInt(RegMode, 0)
	var be netmb.BusError
	if !errors.As(err, &be) {
		t.Fatalf("WriteInt error = %v, want BusError", err)
	}
	if uint8(be) != netmb.BusAccessDenied {
		t.Errorf("bus error = %#02x, want %#02x", uint8(be), netmb.BusAccessDenied)
	}
}
