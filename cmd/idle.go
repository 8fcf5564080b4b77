// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var idleCmd = &cobra.Command{
	Use:   "idle",
	Short: "Switch the oven off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.SetModeIdle(); err != nil {
			return err
		}
		fmt.Println("Oven idle")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(idleCmd)
}
