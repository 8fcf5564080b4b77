// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package oven

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/ovenworks/ovenctl/pkg/netmb"
)

// Client controls a single oven. The XPort bridge only carries one
// session at a time, so the client connects per exchange and closes
// afterwards, exactly as the bridge expects.
type Client struct {
	Host    string
	Port    int           // defaults to netmb.BridgePort
	Timeout time.Duration // connect and per-read timeout
	Retries int           // connection attempts beyond the first

	// Dial overrides the default TCP dialer, letting callers route the
	// session over a serial port or a websocket bridge instead.
	Dial func() (io.ReadWriteCloser, error)

	Trace io.Writer
	Stats *netmb.Stats
}

const defaultTimeout = 2500 * time.Millisecond

func (c *Client) dialOnce() (io.ReadWriteCloser, error) {
	if c.Dial != nil {
		return c.Dial()
	}
	port := c.Port
	if port == 0 {
		port = netmb.BridgePort
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	// The XPort bridge is IPv4 only.
	return net.DialTimeout("tcp4", net.JoinHostPort(c.Host, strconv.Itoa(port)), timeout)
}

// connect dials the oven, retrying with exponential backoff.
func (c *Client) connect() (io.ReadWriteCloser, error) {
	if c.Retries <= 0 {
		return c.dialOnce()
	}
	delay := 10 * time.Millisecond
	for i := 0; ; i++ {
		conn, err := c.dialOnce()
		if err == nil {
			return conn, nil
		}
		left := c.Retries - i - 1
		log.Printf("%v; %d tries left", err, left)
		if left == 0 {
			return nil, err
		}
		time.Sleep(delay)
		delay *= 2
	}
}

func (c *Client) session() (*netmb.Exchange, io.Closer, error) {
	conn, err := c.connect()
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	x := &netmb.Exchange{
		Conn:    conn,
		Timeout: c.Timeout,
		Trace:   c.Trace,
		Stats:   c.Stats,
	}
	return x, conn, nil
}

// ReadWords reads words consecutive registers starting at addr. An oven
// that answers with more words than asked for is tolerated with a logged
// warning; fewer is a mismatch.
func (c *Client) ReadWords(addr uint16, words int) ([]uint16, error) {
	x, conn, err := c.session()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	vals := make([]uint16, words)
	n, err := x.ReadN(addr, vals)
	if errors.Is(err, netmb.ErrDataTooLong) {
		log.Printf("oven sent %d words, wanted %d; extra discarded", n, words)
	} else if err != nil {
		return nil, err
	} else if n < words {
		return nil, fmt.Errorf("oven sent %d words, wanted %d: %w", n, words, netmb.ErrMismatch)
	}
	return vals, nil
}

// WriteWord writes a single register.
func (c *Client) WriteWord(addr, val uint16) error {
	x, conn, err := c.session()
	if err != nil {
		return err
	}
	defer conn.Close()
	return x.Write(addr, val)
}

// WriteWords writes consecutive registers starting at addr.
func (c *Client) WriteWords(addr uint16, vals []uint16) error {
	x, conn, err := c.session()
	if err != nil {
		return err
	}
	defer conn.Close()
	return x.WriteN(addr, vals)
}

// ReadInt reads a single integer register.
func (c *Client) ReadInt(addr uint16) (uint16, error) {
	vals, err := c.ReadWords(addr, 1)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// WriteInt writes a single integer register.
func (c *Client) WriteInt(addr, val uint16) error {
	return c.WriteWord(addr, val)
}

// ReadFloat reads a two-register float.
func (c *Client) ReadFloat(addr uint16) (float64, error) {
	vals, err := c.ReadWords(addr, 2)
	if err != nil {
		return 0, err
	}
	return float64(netmb.WordsToFloat(vals[0], vals[1])), nil
}

// WriteFloat writes a two-register float.
func (c *Client) WriteFloat(addr uint16, val float64) error {
	w0, w1 := netmb.FloatToWords(float32(val))
	return c.WriteWords(addr, []uint16{w0, w1})
}

// GetTemp returns the current temperature in degrees Celsius.
func (c *Client) GetTemp() (float64, error) {
	return c.ReadFloat(RegCurTemp)
}

// GetSetpoint returns the effective temperature setpoint.
func (c *Client) GetSetpoint() (float64, error) {
	return c.ReadFloat(RegSetpoint)
}

// GetMode returns the operating mode bitmask.
func (c *Client) GetMode() (Mode, error) {
	v, err := c.ReadInt(RegMode)
	return Mode(v), err
}

// GetDoorState reports whether the door is open.
func (c *Client) GetDoorState() (bool, error) {
	v, err := c.ReadInt(RegDoorOpen)
	return v != 0, err
}

// GetAlarmState returns the alarm and note flags.
func (c *Client) GetAlarmState() (alarm, note bool, err error) {
	a, err := c.ReadInt(RegAlarm)
	if err != nil {
		return false, false, err
	}
	n, err := c.ReadInt(RegNote)
	if err != nil {
		return false, false, err
	}
	return a != 0, n != 0, nil
}

// GetAlarmText returns the alarm/note text, or "" if the text registers
// hold only spaces. Each word carries one character in its low byte.
func (c *Client) GetAlarmText() (string, error) {
	words, err := c.ReadWords(RegAlarmText, alarmTextWords)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	blank := true
	for _, w := range words {
		ch := byte(w)
		if ch != ' ' {
			blank = false
		}
		b.WriteByte(ch)
	}
	if blank {
		return "", nil
	}
	return b.String(), nil
}

// alarmText fetches the text for a safety error, swallowing fetch
// failures since the interlock matters more than its label.
func (c *Client) alarmText() string {
	text, err := c.GetAlarmText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// CheckSafety verifies the oven is in a safe state to operate. Alarms
// always fail the check; an open door or an active note fails unless
// force is set.
func (c *Client) CheckSafety(force bool) error {
	alarm, note, err := c.GetAlarmState()
	if err != nil {
		return err
	}
	if alarm {
		return &AlarmError{Text: c.alarmText()}
	}
	if force {
		return nil
	}
	open, err := c.GetDoorState()
	if err != nil {
		return err
	}
	if open {
		return &DoorOpenError{}
	}
	if note {
		return &NoteError{Text: c.alarmText()}
	}
	return nil
}

// SetSetpoint sets the temperature setpoint for both manual and basic
// modes, after the safety check and the rated-range interlock.
func (c *Client) SetSetpoint(setpoint float64, force bool) error {
	if err := c.CheckSafety(force); err != nil {
		return err
	}
	if setpoint < RatedMinTemp {
		return &TempRangeError{Over: false, Temp: setpoint, Limit: RatedMinTemp}
	}
	if setpoint > RatedMaxTemp {
		return &TempRangeError{Over: true, Temp: setpoint, Limit: RatedMaxTemp}
	}
	if err := c.WriteFloat(RegManSetpt, setpoint); err != nil {
		return err
	}
	return c.WriteFloat(RegBasicSetpt, setpoint)
}

// SetModeIdle switches the oven off.
func (c *Client) SetModeIdle() error {
	return c.WriteInt(RegMode, uint16(ModeIdle))
}

// SetModeActive switches the oven to manual mode, after the safety
// check.
func (c *Client) SetModeActive(force bool) error {
	if err := c.CheckSafety(force); err != nil {
		return err
	}
	return c.WriteInt(RegMode, uint16(ModeManual))
}

// SetOpLines sets and clears the given operation-line bits, returning
// the new line value.
func (c *Client) SetOpLines(toSet, toClear uint16) (uint16, error) {
	old, err := c.ReadInt(RegOpLines)
	if err != nil {
		return 0, err
	}
	lines := (old | toSet) &^ toClear
	if err := c.WriteInt(RegOpLines, lines); err != nil {
		return 0, err
	}
	return lines, nil
}

// BedewProtection reports whether bedew (condensation) protection is on.
func (c *Client) BedewProtection() (bool, error) {
	v, err := c.ReadInt(RegOpLines)
	return v&OpLineBedew != 0, err
}

// SetBedewProtection switches bedew protection on or off.
func (c *Client) SetBedewProtection(on bool) error {
	var err error
	if on {
		_, err = c.SetOpLines(OpLineBedew, 0)
	} else {
		_, err = c.SetOpLines(0, OpLineBedew)
	}
	return err
}
