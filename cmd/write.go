// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ovenworks/ovenctl/pkg/netmb"
)

var writeFloat bool

var writeCmd = &cobra.Command{
	Use:   "write <addr> <value>...",
	Short: "Write oven registers",
	Long: `Write one or more consecutive registers. The address and values are
hexadecimal, with or without an 0x prefix. With --float, the single
value is decimal and written as the oven's shuffled float format.

Registers control a live oven: a bad write can change setpoints or
operating mode. Know what the address does before writing it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseHexWord(args[0])
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		if writeFloat {
			if len(args) != 2 {
				return fmt.Errorf("--float writes exactly one value")
			}
			val, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid float value %q", args[1])
			}
			return checkWrite(c.WriteFloat(addr, val))
		}

		vals := make([]uint16, 0, len(args)-1)
		for _, a := range args[1:] {
			v, err := parseHexWord(a)
			if err != nil {
				return err
			}
			vals = append(vals, v)
		}
		if len(vals) == 1 {
			return checkWrite(c.WriteWord(addr, vals[0]))
		}
		return checkWrite(c.WriteWords(addr, vals))
	},
}

func init() {
	writeCmd.Flags().BoolVarP(&writeFloat, "float", "f", false, "Write a decimal value as a float")
	rootCmd.AddCommand(writeCmd)
}

// checkWrite passes a write error through, warning the operator when
// the write may have landed despite the failed response.
func checkWrite(err error) error {
	if errors.Is(err, netmb.ErrMismatch) || errors.Is(err, netmb.ErrTimeout) || errors.Is(err, netmb.ErrBadMessage) {
		writeCaution()
	}
	return err
}
