// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

// Package oven provides device-level control of BINDER laboratory ovens
// over the net-MODBus protocol: typed register access, operating modes,
// safety interlocks and setpoint management.
//
// Some register addresses (door, alarm, note, alarm text) are
// reverse-engineered rather than documented.
package oven

import "strings"

// Register addresses
const (
	RegCurTemp    = 0x11A9 // current temperature, float
	RegSetpoint   = 0x1077 // effective setpoint, float, read-only
	RegManSetpt   = 0x1581 // manual-mode setpoint, float
	RegBasicSetpt = 0x156F // basic-mode setpoint, float
	RegMode       = 0x1A22 // operating mode bitmask
	RegOpLines    = 0x158B // operation lines (bit 0 is bedew protection)
	RegDoorOpen   = 0x1007 // door state, reverse-engineered
	RegTempLimit  = 0x10BD // overtemperature limit, not currently used
	RegAlarmText  = 0x1228 // alarm/note text, 20 words, reverse-engineered
	RegAlarm      = 0x123D // alarm flag, reverse-engineered
	RegNote       = 0x123E // note flag, reverse-engineered
)

// Rated setpoint range in degrees Celsius
const (
	RatedMinTemp = -40
	RatedMaxTemp = 180
)

const alarmTextWords = 0x14

// OpLineBedew is the operation line controlling bedew (condensation)
// protection; manual section 10.
const OpLineBedew = 0x0001

// Mode is the oven's operating mode bitmask.
type Mode uint16

// Mode bits; no bits set means idle.
const (
	ModeBasic  Mode = 0x1000
	ModeManual Mode = 0x0800
	ModeAuto   Mode = 0x0400
	ModeIdle   Mode = 0
)

// IsIdle reports whether no active-mode bit is set.
func (m Mode) IsIdle() bool {
	return m&(ModeBasic|ModeManual|ModeAuto) == 0
}

func (m Mode) String() string {
	var parts []string
	if m&ModeBasic != 0 {
		parts = append(parts, "basic")
	}
	if m&ModeManual != 0 {
		parts = append(parts, "manual")
	}
	if m&ModeAuto != 0 {
		parts = append(parts, "auto")
	}
	if len(parts) == 0 {
		return "idle"
	}
	return strings.Join(parts, "&")
}
