// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var readFloat bool

var readCmd = &cobra.Command{
	Use:   "read <addr> [words]",
	Short: "Read oven registers",
	Long: `Read one or more consecutive registers and print their values in hex.
Addresses are hexadecimal, with or without an 0x prefix. With --float,
two registers are read and decoded as the oven's shuffled float format.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseHexWord(args[0])
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		if readFloat {
			val, err := c.ReadFloat(addr)
			if err != nil {
				return err
			}
			fmt.Printf("%g\n", val)
			return nil
		}

		words := 1
		if len(args) == 2 {
			words, err = strconv.Atoi(args[1])
			if err != nil || words < 1 {
				return fmt.Errorf("invalid word count %q", args[1])
			}
		}
		vals, err := c.ReadWords(addr, words)
		if err != nil {
			return err
		}
		printWordRows(addr, vals)
		return nil
	},
}

func init() {
	readCmd.Flags().BoolVarP(&readFloat, "float", "f", false, "Decode two registers as a float")
	rootCmd.AddCommand(readCmd)
}

// parseHexWord parses a register address, tolerating an 0x prefix.
func parseHexWord(s string) (uint16, error) {
	t := strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(t, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid register address %q", s)
	}
	return uint16(v), nil
}

// printWordRows prints register values eight to a row, each row led by
// the address of its first word.
func printWordRows(addr uint16, vals []uint16) {
	for i, v := range vals {
		if i%8 == 0 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%04x:", addr+uint16(i))
		}
		fmt.Printf(" %04x", v)
	}
	fmt.Println()
}
