// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	setForce       bool
	setDry         bool
	setWait        bool
	setStable      bool
	setLimit       float64
	setAcclimatise time.Duration
)

var setCmd = &cobra.Command{
	Use:   "set <temperature>",
	Short: "Set the temperature and switch the oven on",
	Long: `Set the temperature setpoint, switch the oven to manual mode and
configure bedew protection. With --wait, block until the oven reaches
the target.

Safety interlocks are checked first: an alarm always refuses, an open
door or an active note refuses unless --force is given. If switching
the oven on fails partway, it is returned to idle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		temp, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q", args[0])
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		if err := c.SetSetpoint(temp, setForce); err != nil {
			return err
		}
		if err := c.SetModeActive(setForce); err != nil {
			return err
		}
		if err := c.SetBedewProtection(setDry && temp < 20); err != nil {
			// Half-configured is worse than off.
			if idleErr := c.SetModeIdle(); idleErr != nil {
				log.Printf("failed to return oven to idle: %v", idleErr)
			}
			return err
		}
		fmt.Printf("Setpoint %.1f degC, oven active\n", temp)

		if !setWait {
			return nil
		}
		progress := func(t float64, status string) {
			fmt.Printf("%.1f degC, %s\n", t, status)
		}
		if err := c.WaitForTemp(setLimit, setStable, setAcclimatise, progress); err != nil {
			return err
		}
		fmt.Println("Temperature reached")
		return nil
	},
}

func init() {
	setCmd.Flags().BoolVar(&setForce, "force", false, "Override door and note interlocks (never alarms)")
	setCmd.Flags().BoolVar(&setDry, "dry", false, "Bedew protection for setpoints below 20 degC")
	setCmd.Flags().BoolVarP(&setWait, "wait", "w", false, "Wait until the temperature is reached")
	setCmd.Flags().BoolVar(&setStable, "stable", false, "Demand six consecutive in-range readings")
	setCmd.Flags().Float64Var(&setLimit, "limit", 1.0, "Closeness tolerance in degrees")
	setCmd.Flags().DurationVar(&setAcclimatise, "acclimatise", 0, "Extra settling time after the temperature is reached")
	rootCmd.AddCommand(setCmd)
}
