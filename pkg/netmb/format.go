// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"fmt"
	"strings"
)

// Hexdump renders data eight bytes per row with a leading offset, the
// format the command-line tools print in verbose mode. The result ends
// with a newline.
func Hexdump(data []byte) string {
	var b strings.Builder
	for i, v := range data {
		if i&7 == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%04x:", i)
		}
		fmt.Fprintf(&b, " %02x", v)
	}
	b.WriteByte('\n')
	return b.String()
}

// FunctionName returns a human-readable name for a function code.
func FunctionName(fn Function) string {
	switch fn {
	case FnReadN, FnReadNAlt:
		return "read-n"
	case FnWrite:
		return "write"
	case FnWriteN:
		return "write-n"
	}
	return fmt.Sprintf("unknown (%#02x)", uint8(fn))
}
