// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovenworks/ovenctl/pkg/netmb"
)

var dumpWordTimeout time.Duration

var dumpCmd = &cobra.Command{
	Use:   "dump <start> <count>",
	Short: "Survey a register range",
	Long: `Read a register range one word at a time and print what each address
holds. Unmapped addresses on the oven simply never answer, so each word
gets its own short timeout; TIME marks a timeout, MBER a bus or protocol
error. Useful for exploring which registers a given oven model exposes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseHexWord(args[0])
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(args[1])
		if err != nil || count < 1 {
			return fmt.Errorf("invalid word count %q", args[1])
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		c.Timeout = dumpWordTimeout

		for off := 0; off < count; off++ {
			if off%8 == 0 {
				if off > 0 {
					fmt.Println()
				}
				fmt.Printf("%04x:", start+uint16(off))
			}
			vals, err := c.ReadWords(start+uint16(off), 1)
			switch {
			case err == nil:
				fmt.Printf(" %04x", vals[0])
			case errors.Is(err, netmb.ErrTimeout):
				fmt.Print(" TIME")
			case isBusOrProtocolError(err):
				fmt.Print(" MBER")
			default:
				fmt.Println()
				return err
			}
		}
		fmt.Println()

		if verbose && c.Stats != nil {
			c.Stats.CalculateRates()
			fmt.Fprint(os.Stderr, c.Stats.String())
		}
		return nil
	},
}

func init() {
	dumpCmd.Flags().DurationVar(&dumpWordTimeout, "word-timeout", time.Second, "Timeout for each word read")
	rootCmd.AddCommand(dumpCmd)
}

func isBusOrProtocolError(err error) bool {
	var busErr netmb.BusError
	return errors.As(err, &busErr) ||
		errors.Is(err, netmb.ErrBadMessage) ||
		errors.Is(err, netmb.ErrBusErrFlag) ||
		errors.Is(err, netmb.ErrMismatch) ||
		errors.Is(err, netmb.ErrDataTooLong)
}
