// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package oven

import (
	"errors"
	"fmt"

	"github.com/ovenworks/ovenctl/pkg/netmb"
)

// Safety errors all match netmb.ErrSafety under errors.Is, so callers
// can distinguish "the interlock said no" from protocol trouble without
// caring which interlock fired.

// AlarmError reports an active oven alarm.
type AlarmError struct {
	Text string
}

func (e *AlarmError) Error() string {
	if e.Text == "" {
		return "oven alarm active"
	}
	return fmt.Sprintf("oven alarm: %s", e.Text)
}

func (e *AlarmError) Is(target error) bool { return target == netmb.ErrSafety }

// NoteError reports an active oven note. Notes are ignorable with force.
type NoteError struct {
	Text string
}

func (e *NoteError) Error() string {
	if e.Text == "" {
		return "oven note active"
	}
	return fmt.Sprintf("oven note: %s", e.Text)
}

func (e *NoteError) Is(target error) bool { return target == netmb.ErrSafety }

// DoorOpenError reports that the oven door is open.
type DoorOpenError struct{}

func (e *DoorOpenError) Error() string { return "oven door is open" }

func (e *DoorOpenError) Is(target error) bool { return target == netmb.ErrSafety }

// TempRangeError reports a requested setpoint outside the rated range.
type TempRangeError struct {
	Over  bool
	Temp  float64
	Limit float64
}

func (e *TempRangeError) Error() string {
	rel := "below"
	if e.Over {
		rel = "above"
	}
	return fmt.Sprintf("requested temperature %.2f is %s rated limit %.2f", e.Temp, rel, e.Limit)
}

func (e *TempRangeError) Is(target error) bool { return target == netmb.ErrSafety }

// Status errors from temperature waiting.

// ErrIdle means the oven is idle and will never reach the setpoint.
var ErrIdle = errors.New("oven is idle, will never reach temperature")

// SetpointChangedError means someone changed the setpoint while we were
// waiting on the old one.
type SetpointChangedError struct {
	New float64
	Old float64
}

func (e *SetpointChangedError) Error() string {
	return fmt.Sprintf("setpoint changed from %.2f to %.2f while waiting", e.Old, e.New)
}
