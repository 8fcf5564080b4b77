// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ovenworks/ovenctl/cmd"
	"github.com/ovenworks/ovenctl/pkg/netmb"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// Scripts distinguish "the oven refused" from everything else.
		if errors.Is(err, netmb.ErrSafety) {
			os.Exit(4)
		}
		os.Exit(1)
	}
}
