// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package ramp

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"time"

	"github.com/ovenworks/ovenctl/pkg/netmb"
)

// Oven is what the controller needs from a device client. Satisfied by
// *oven.Client.
type Oven interface {
	SetSetpoint(setpoint float64, force bool) error
	SetModeActive(force bool) error
	SetModeIdle() error
	GetTemp() (float64, error)
	GetSetpoint() (float64, error)
	SetBedewProtection(on bool) error
}

// TestFunc runs one subtest for an X action. jump true requests a jump
// to the action's j label (ending the profile if there is none).
type TestFunc func() (jump bool, err error)

// Controller steps an oven through a parsed profile. Time is kept in
// hours, matching the t arguments.
type Controller struct {
	actions []Action
	oven    Oven
	test    TestFunc

	actStart     float64
	setpoint     float64
	haveSetpoint bool
	newAction    bool
	oldTemp      float64
	haveOldTemp  bool
	stable       int

	now func() float64
}

func hoursNow() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Hour)
}

// NewController prepares spec to run against oven. test may be nil if
// the profile contains no X actions.
func NewController(spec *Spec, oven Oven, test TestFunc) *Controller {
	c := &Controller{
		actions:   spec.Actions,
		oven:      oven,
		test:      test,
		newAction: len(spec.Actions) > 0,
		now:       hoursNow,
	}
	c.actStart = c.now()
	return c
}

// Remaining returns the number of actions left, including the current
// one.
func (c *Controller) Remaining() int {
	return len(c.actions)
}

// Current returns the action the controller is on.
func (c *Controller) Current() (Action, bool) {
	if len(c.actions) == 0 {
		return Action{}, false
	}
	return c.actions[0], true
}

// Starting reports whether the next Step begins a fresh action.
func (c *Controller) Starting() bool {
	return c.newAction && len(c.actions) > 0
}

func (c *Controller) next() {
	c.newAction = true
	c.actions = c.actions[1:]
	c.actStart = c.now()
}

// Step executes one tick of the profile and returns the number of
// actions remaining; the profile is complete at 0. The caller sleeps
// between ticks.
func (c *Controller) Step() (int, error) {
	if len(c.actions) == 0 {
		return 0, nil
	}
	now := c.now()
	action := c.actions[0]
	duration := action.Duration()
	finished := now > c.actStart+duration
	var jumpTo *int

	switch action.Act {
	case 'H':
		if c.newAction {
			sp, have, err := action.Setpoint(c.setpoint, c.haveSetpoint)
			if err != nil {
				return 0, err
			}
			c.setpoint, c.haveSetpoint = sp, have
		}
		if c.haveSetpoint {
			if err := c.oven.SetSetpoint(c.setpoint, true); err != nil {
				return 0, err
			}
			if err := c.oven.SetModeActive(true); err != nil {
				return 0, err
			}
		}

	case 'I':
		if c.newAction {
			if err := c.oven.SetModeIdle(); err != nil {
				return 0, err
			}
		}
		if finished {
			temp, err := c.oven.GetTemp()
			if err != nil {
				return 0, err
			}
			c.setpoint, c.haveSetpoint = temp, true
		}

	case 'J':
		j, _ := action.IntArg('j')
		jumpTo = &j

	case 'R':
		if !c.haveSetpoint {
			return 0, fmt.Errorf("action %s: ramp with no previous setpoint", action)
		}
		newSetpoint, _, err := action.Setpoint(c.setpoint, c.haveSetpoint)
		if err != nil {
			return 0, err
		}
		var temp float64
		if r, ok := action.FloatArg('r'); ok {
			rate := math.Abs(r)
			if duration > 0 {
				needed := math.Abs((newSetpoint - c.setpoint) / duration)
				rate = math.Min(needed, rate)
			}
			temp = c.setpoint + (now-c.actStart)*math.Copysign(rate, newSetpoint-c.setpoint)
			finished = (c.setpoint < newSetpoint) != (temp < newSetpoint)
			if finished {
				temp = newSetpoint
			}
		} else if duration > 0 {
			tfrac := (now - c.actStart) / duration
			temp = c.setpoint*(1-tfrac) + newSetpoint*tfrac
			if finished {
				temp = newSetpoint
			}
		} else {
			return 0, fmt.Errorf("action %s: ramp with neither rate nor time", action)
		}
		if finished {
			c.setpoint = temp
		}
		if err := c.oven.SetSetpoint(temp, true); err != nil {
			return 0, err
		}
		if err := c.oven.SetModeActive(true); err != nil {
			return 0, err
		}

	case 'W':
		if c.newAction {
			sp, have, err := action.Setpoint(c.setpoint, c.haveSetpoint)
			if err != nil {
				return 0, err
			}
			c.setpoint, c.haveSetpoint = sp, have
		}
		if !c.haveSetpoint {
			return 0, fmt.Errorf("action %s: wait with no setpoint", action)
		}
		if err := c.oven.SetSetpoint(c.setpoint, true); err != nil {
			return 0, err
		}
		if err := c.oven.SetModeActive(true); err != nil {
			return 0, err
		}
		temp, err := c.oven.GetTemp()
		if err != nil {
			return 0, err
		}
		if c.newAction {
			c.haveOldTemp = false
			c.stable = 0
		}
		var near bool
		if l, ok := action.FloatArg('l'); ok && l > 0 {
			near = math.Abs(c.setpoint-temp) < l
		} else if c.haveOldTemp {
			// no limit given: close means the temperature crossed the
			// setpoint since the last reading
			near = (c.setpoint < c.oldTemp) != (c.setpoint < temp)
		}
		if z, ok := action.IntArg('z'); ok && z > 0 {
			if near {
				c.stable++
			} else {
				c.stable = 0
			}
			finished = c.stable > z
		} else {
			finished = near
		}
		c.oldTemp, c.haveOldTemp = temp, true

	case 'X':
		if c.test == nil {
			return 0, fmt.Errorf("action %s: no subtest callback configured", action)
		}
		jump, err := c.test()
		if err != nil {
			return 0, err
		}
		if jump {
			if j, ok := action.IntArg('j'); ok {
				jumpTo = &j
			}
		}

	default:
		return 0, fmt.Errorf("unrecognised action %q", string(action.Act))
	}

	bedew := false
	if action.Has('d') {
		sp, err := c.oven.GetSetpoint()
		if err != nil {
			return 0, err
		}
		bedew = sp < 20
	}
	if err := c.oven.SetBedewProtection(bedew); err != nil {
		return 0, err
	}

	c.newAction = false
	if finished {
		c.next()
	}
	if jumpTo != nil {
		for len(c.actions) > 0 {
			if c.actions[0].HasLabel && c.actions[0].Label == *jumpTo {
				break
			}
			c.next()
		}
	}
	return len(c.actions), nil
}

const tickInterval = 3 * time.Second

// Run drives the profile to completion, ticking every three seconds.
// started, when set, is called at the beginning of each action.
// Transport errors are logged and retried on the next tick; everything
// else aborts the run.
func (c *Controller) Run(started func(Action)) error {
	for {
		if c.Starting() && started != nil {
			if a, ok := c.Current(); ok {
				started(a)
			}
		}
		n, err := c.Step()
		if err != nil {
			if transient(err) {
				log.Printf("transient error, will retry: %v", err)
			} else {
				return err
			}
		} else if n == 0 {
			return nil
		}
		time.Sleep(tickInterval)
	}
}

// transient reports whether an error is worth retrying: network trouble
// and timeouts, but never safety interlocks or profile errors.
func transient(err error) bool {
	if errors.Is(err, netmb.ErrSafety) {
		return false
	}
	if errors.Is(err, netmb.ErrTimeout) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}
