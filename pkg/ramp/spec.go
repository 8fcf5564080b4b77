// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

// Package ramp implements the ramp-profile mini-language for driving an
// oven through temperature ramps, holds and waits, with periodic
// subtest hooks.
//
// A profile is a semicolon-separated list of actions, each a letter
// optionally preceded by a numeric label ("0:I") and followed by
// comma-separated arguments ("Rr5,s85"):
//
//	H hold    args c,d,s,t
//	I idle    args t
//	J jump    args j
//	R ramp    args c,d,r,s,t
//	W wait    args c,d,l,s,t,z
//	X subtest args j
//
// Arguments: c delta setpoint (float), d bedew protection (flag),
// j jump label (int), l closeness limit (float), r ramp rate in degrees
// per hour (float), s absolute setpoint (float), t duration in hours
// (float), z stable readings needed (int).
//
// Bracketed repeat macros expand before parsing: "[3#X;Ht1;]" repeats
// "X;Ht1;" three times. Macros nest.
package ramp

import (
	"fmt"
	"strconv"
	"strings"
)

type argKind int

const (
	kindFloat argKind = iota
	kindBool
	kindInt
)

var argKinds = map[byte]argKind{
	'c': kindFloat,
	'd': kindBool,
	'j': kindInt,
	'l': kindFloat,
	'r': kindFloat,
	's': kindFloat,
	't': kindFloat,
	'z': kindInt,
}

var actionArgs = map[byte]string{
	'H': "cdst",
	'I': "t",
	'J': "j",
	'R': "cdrst",
	'W': "cdlstz",
	'X': "j",
}

// Argument is a single parsed action argument. Only the field matching
// the argument's kind is meaningful.
type Argument struct {
	Name  byte
	Float float64
	Int   int
	Bool  bool
}

func (a Argument) String() string {
	switch argKinds[a.Name] {
	case kindBool:
		if a.Bool {
			return string(a.Name)
		}
		return ""
	case kindInt:
		return fmt.Sprintf("%c%d", a.Name, a.Int)
	default:
		return fmt.Sprintf("%c%g", a.Name, a.Float)
	}
}

// Action is one parsed profile action.
type Action struct {
	Act      byte
	Label    int
	HasLabel bool
	Args     []Argument
}

// Has reports whether the argument is present. A bool argument counts
// as present only when set.
func (a Action) Has(name byte) bool {
	for _, arg := range a.Args {
		if arg.Name == name {
			return argKinds[name] != kindBool || arg.Bool
		}
	}
	return false
}

// FloatArg returns a float argument and whether it was present.
func (a Action) FloatArg(name byte) (float64, bool) {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg.Float, true
		}
	}
	return 0, false
}

// IntArg returns an int argument and whether it was present.
func (a Action) IntArg(name byte) (int, bool) {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg.Int, true
		}
	}
	return 0, false
}

// Duration returns the action's t argument in hours, or 0.
func (a Action) Duration() float64 {
	t, _ := a.FloatArg('t')
	return t
}

// Setpoint resolves the action's target setpoint from the previous one:
// s is absolute, c is relative, neither keeps the old value. A relative
// or carried-over setpoint with no previous value is an error.
func (a Action) Setpoint(old float64, haveOld bool) (float64, bool, error) {
	if s, ok := a.FloatArg('s'); ok {
		return s, true, nil
	}
	if c, ok := a.FloatArg('c'); ok {
		if !haveOld {
			return 0, false, fmt.Errorf("action %s: relative setpoint with no previous setpoint", a)
		}
		return old + c, true, nil
	}
	return old, haveOld, nil
}

func (a Action) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	s := string(a.Act) + strings.Join(parts, ",")
	if a.HasLabel {
		return fmt.Sprintf("%d:%s", a.Label, s)
	}
	return s
}

// Spec is a parsed ramp profile.
type Spec struct {
	Actions []Action
}

func (s *Spec) String() string {
	parts := make([]string, len(s.Actions))
	for i, a := range s.Actions {
		parts[i] = a.String()
	}
	return strings.Join(parts, ";")
}

// Parse parses a profile string, expanding repeat macros first.
func Parse(s string) (*Spec, error) {
	expanded, err := macroExpand(s)
	if err != nil {
		return nil, err
	}
	spec := &Spec{}
	for _, actstr := range strings.Split(expanded, ";") {
		if actstr == "" {
			continue
		}
		action, err := parseAction(actstr)
		if err != nil {
			return nil, err
		}
		spec.Actions = append(spec.Actions, action)
	}
	return spec, nil
}

func parseAction(s string) (Action, error) {
	var a Action
	if label, rest, found := strings.Cut(s, ":"); found {
		n, err := strconv.Atoi(label)
		if err != nil {
			return a, fmt.Errorf("invalid label %q in %q", label, s)
		}
		a.Label, a.HasLabel = n, true
		s = rest
	}
	if s == "" {
		return a, fmt.Errorf("empty action")
	}
	a.Act = s[0]
	allowed, ok := actionArgs[a.Act]
	if !ok {
		return a, fmt.Errorf("no such action %q", string(a.Act))
	}
	argstr := s[1:]
	for len(argstr) > 0 {
		name := argstr[0]
		for _, arg := range a.Args {
			if arg.Name == name {
				return a, fmt.Errorf("argument %q specified twice in %q", string(name), s)
			}
		}
		kind, ok := argKinds[name]
		if !ok {
			return a, fmt.Errorf("no such argument %q in %q", string(name), s)
		}
		if !strings.ContainsRune(allowed, rune(name)) {
			return a, fmt.Errorf("invalid argument %q for action %q", string(name), string(a.Act))
		}
		value, rest, _ := strings.Cut(argstr[1:], ",")
		argstr = rest
		arg := Argument{Name: name}
		switch kind {
		case kindBool:
			arg.Bool = true
		case kindInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return a, fmt.Errorf("argument %q in %q: %v", string(name), s, err)
			}
			arg.Int = n
		case kindFloat:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return a, fmt.Errorf("argument %q in %q: %v", string(name), s, err)
			}
			arg.Float = f
		}
		a.Args = append(a.Args, arg)
	}
	return a, a.validate()
}

// validate checks per-action argument requirements. The checks are a
// chain, so the s/c exclusion only applies to actions not covered by an
// earlier rule.
func (a Action) validate() error {
	switch {
	case a.Act == 'R':
		if !a.Has('r') && !a.Has('t') {
			return fmt.Errorf("action 'R' (ramp) must have at least one of r, t")
		}
	case a.Act == 'W':
		if a.Has('z') && !a.Has('l') {
			return fmt.Errorf("action 'W' (wait) can't have z without l")
		}
	case a.Act == 'J':
		if !a.Has('j') {
			return fmt.Errorf("action 'J' (jump) must have j")
		}
	case a.Has('s') && a.Has('c'):
		return fmt.Errorf("can't combine s, c")
	}
	return nil
}

// macroExpand expands bracketed repeat macros, innermost first.
func macroExpand(s string) (string, error) {
	stack := []*strings.Builder{{}}
	for _, c := range s {
		switch c {
		case '[':
			stack = append(stack, &strings.Builder{})
		case ']':
			if len(stack) < 2 {
				return "", fmt.Errorf("unmatched ']'")
			}
			block := stack[len(stack)-1].String()
			stack = stack[:len(stack)-1]
			expanded, err := macroExecute(block)
			if err != nil {
				return "", err
			}
			stack[len(stack)-1].WriteString(expanded)
		default:
			stack[len(stack)-1].WriteRune(c)
		}
	}
	if len(stack) > 1 {
		return "", fmt.Errorf("unmatched '['")
	}
	return stack[0].String(), nil
}

func macroExecute(block string) (string, error) {
	args, text, found := strings.Cut(block, "#")
	if !found {
		return "", fmt.Errorf("no recognisable macro call in [%s]", block)
	}
	count, err := strconv.Atoi(args)
	if err != nil {
		return "", fmt.Errorf("bad repeat count in [%s]: %v", block, err)
	}
	if count < 0 {
		count = 0
	}
	return strings.Repeat(text, count), nil
}
