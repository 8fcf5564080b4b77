// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package ramp

import (
	"fmt"
	"math"
	"strings"
)

// Ambient is the assumed room temperature generated profiles return to.
const Ambient = 25

// GenOptions configures Generate. Times are hours, temperatures degrees
// Celsius, the rate degrees per hour.
type GenOptions struct {
	Temp     float64 // target temperature
	Hold     float64 // hold time at target
	Rate     float64 // ramp rate
	Wait     bool    // wait until target reached before holding
	Stable   bool    // demand a stable reading run when waiting
	Limit    float64 // closeness tolerance for waiting
	Dry      bool    // bedew protection throughout
	Jump     bool    // on subtest failure, jump to the final idle action
	Interval float64 // gap between subtests
	XDur     float64 // duration of one subtest
}

// Generate builds the standard soak profile: settle at ambient, ramp to
// the target with subtests at every interval, hold, ramp back to
// ambient, finish with a subtest and idle. The final idle action is
// labelled 0 so failed subtests can jump straight to it.
func Generate(opts GenOptions) (string, error) {
	if opts.Temp == 0 {
		return "", fmt.Errorf("target temperature is required")
	}
	if opts.Hold == 0 {
		return "", fmt.Errorf("hold time is required")
	}
	if opts.Rate == 0 {
		return "", fmt.Errorf("ramp rate is required")
	}
	if opts.XDur >= opts.Interval {
		return "", fmt.Errorf("subtest interval %g less than subtest duration %g", opts.Interval, opts.XDur)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ws%f,l0.5;", float64(Ambient))
	t := float64(Ambient)
	t = rampTo(&b, opts.Temp, opts, t)
	holdAt(&b, opts.Hold, opts)
	rampTo(&b, Ambient, opts, t)
	if opts.Wait {
		fmt.Fprintf(&b, "Wt%f,l%f%s%s;", float64(Ambient), opts.Limit, zArg(opts), dArg(opts))
	}
	b.WriteString("X;0:I")
	return b.String(), nil
}

func jArg(opts GenOptions) string {
	if opts.Jump {
		return "j0"
	}
	return ""
}

func dArg(opts GenOptions) string {
	if opts.Dry {
		return ",d"
	}
	return ""
}

func zArg(opts GenOptions) string {
	if opts.Stable {
		return ",z6"
	}
	return ""
}

// rampTo emits a ramp from t to temp broken into interval-sized steps
// with a subtest before each, then a final subtest and ramp to the
// exact target. Returns the new running temperature.
func rampTo(b *strings.Builder, temp float64, opts GenOptions, t float64) float64 {
	ramping := math.Abs((temp - t) / opts.Rate)
	steps := int(math.Floor(ramping / opts.Interval))
	stepSize := opts.Rate * opts.Interval
	stepTime := opts.Interval - opts.XDur
	stepRate := math.Abs(stepSize / stepTime)
	signum := 1.0
	if temp < t {
		signum = -1
	}
	fmt.Fprintf(b, "[%d#X%s;Rr%f,c%f%s;]", steps, jArg(opts), stepRate, stepSize*signum, dArg(opts))
	fmt.Fprintf(b, "X%s;Rr%f,s%f%s;", jArg(opts), opts.Rate, temp, dArg(opts))
	if opts.Wait {
		fmt.Fprintf(b, "Wl%f%s%s;", opts.Limit, zArg(opts), dArg(opts))
	}
	return temp
}

// holdAt emits a hold broken into subtest intervals, plus the remainder
// if the hold time is not a whole number of intervals.
func holdAt(b *strings.Builder, hold float64, opts GenOptions) {
	steps := int(math.Floor(hold / opts.Interval))
	fmt.Fprintf(b, "[%d#X%s;Ht%f%s;]", steps, jArg(opts), opts.Interval-opts.XDur, dArg(opts))
	rest := hold - float64(steps)*opts.Interval
	if rest > 1e-6 {
		fmt.Fprintf(b, "Ht%f%s;", rest, dArg(opts))
	}
}
