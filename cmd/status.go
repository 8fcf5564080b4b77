// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the oven's state",
	Long: `Query and print the oven's temperature, setpoint, operating mode, door
and alarm state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		temp, err := c.GetTemp()
		if err != nil {
			return err
		}
		setpoint, err := c.GetSetpoint()
		if err != nil {
			return err
		}
		mode, err := c.GetMode()
		if err != nil {
			return err
		}
		bedew, err := c.BedewProtection()
		if err != nil {
			return err
		}
		open, err := c.GetDoorState()
		if err != nil {
			return err
		}
		alarm, note, err := c.GetAlarmState()
		if err != nil {
			return err
		}

		fmt.Printf("Temperature: %.1f degC\n", temp)
		fmt.Printf("Setpoint:    %.1f degC\n", setpoint)
		fmt.Printf("Mode:        %04x (%s)\n", uint16(mode), mode)
		fmt.Printf("Bedew guard: %s\n", onOff(bedew))
		fmt.Printf("Door:        %s\n", openClosed(open))

		switch {
		case alarm:
			text, _ := c.GetAlarmText()
			fmt.Printf("ALARM:       %s\n", text)
		case note:
			text, _ := c.GetAlarmText()
			fmt.Printf("Note:        %s\n", text)
		default:
			fmt.Printf("Alarm:       none\n")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func openClosed(b bool) string {
	if b {
		return "open"
	}
	return "closed"
}
