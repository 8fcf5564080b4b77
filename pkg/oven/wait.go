// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package oven

import "time"

const pollInterval = 10 * time.Second
const stableReadings = 6

// thermostat is the slice of Client that temperature waiting needs.
type thermostat interface {
	GetMode() (Mode, error)
	GetSetpoint() (float64, error)
	GetTemp() (float64, error)
}

// TempWaiter steps towards "temperature reached" one poll at a time, so
// callers can drive it from their own scheduler instead of blocking in
// WaitForTemp.
type TempWaiter struct {
	// Progress, when set, is called once per step with the latest
	// temperature reading and what the waiter is doing about it
	// ("waiting", "stabilising" or "acclimatising").
	Progress func(temp float64, status string)

	oven        thermostat
	limit       float64
	stabilise   bool
	acclimatise time.Duration

	setpoint float64
	stable   int
	since    time.Time

	now func() time.Time
}

// NewTempWaiter creates a waiter for the oven's current setpoint.
// limit is the maximum error that counts as close; stabilise demands
// six consecutive close readings; acclimatise is extra time to hold
// after the temperature is reached.
func (c *Client) NewTempWaiter(limit float64, stabilise bool, acclimatise time.Duration) (*TempWaiter, error) {
	return newTempWaiter(c, limit, stabilise, acclimatise)
}

func newTempWaiter(o thermostat, limit float64, stabilise bool, acclimatise time.Duration) (*TempWaiter, error) {
	setpoint, err := o.GetSetpoint()
	if err != nil {
		return nil, err
	}
	return &TempWaiter{
		oven:        o,
		limit:       limit,
		stabilise:   stabilise,
		acclimatise: acclimatise,
		setpoint:    setpoint,
		now:         time.Now,
	}, nil
}

func (w *TempWaiter) progress(temp float64, status string) {
	if w.Progress != nil {
		w.Progress(temp, status)
	}
}

// Step polls the oven once. It returns true when the temperature has
// been reached (and held, if stabilising or acclimatising); the caller
// sleeps between steps. ErrIdle and SetpointChangedError mean the wait
// can never finish.
func (w *TempWaiter) Step() (bool, error) {
	mode, err := w.oven.GetMode()
	if err != nil {
		return false, err
	}
	if mode.IsIdle() {
		return false, ErrIdle
	}
	newset, err := w.oven.GetSetpoint()
	if err != nil {
		return false, err
	}
	if newset != w.setpoint {
		return false, &SetpointChangedError{New: newset, Old: w.setpoint}
	}
	temp, err := w.oven.GetTemp()
	if err != nil {
		return false, err
	}
	if temp < w.setpoint-w.limit || temp > w.setpoint+w.limit {
		w.stable = 0
		w.progress(temp, "waiting")
		return false, nil
	}
	w.stable++
	need := 0
	if w.stabilise {
		need = stableReadings
	}
	if w.stable < need {
		w.progress(temp, "stabilising")
		return false, nil
	}
	if w.acclimatise > 0 {
		if w.since.IsZero() {
			w.since = w.now()
		} else if w.now().After(w.since.Add(w.acclimatise)) {
			return true, nil
		}
		w.progress(temp, "acclimatising")
		return false, nil
	}
	return true, nil
}

// WaitForTemp blocks until the oven temperature is within limit of the
// setpoint, polling every ten seconds.
func (c *Client) WaitForTemp(limit float64, stabilise bool, acclimatise time.Duration, progress func(temp float64, status string)) error {
	w, err := c.NewTempWaiter(limit, stabilise, acclimatise)
	if err != nil {
		return err
	}
	w.Progress = progress
	for {
		done, err := w.Step()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		time.Sleep(pollInterval)
	}
}
