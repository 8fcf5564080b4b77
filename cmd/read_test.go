// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Ovenworks

package cmd

import "testing"

func TestParseHexWord(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"11A9", 0x11A9, false},
		{"0x11a9", 0x11A9, false},
		{"0X1077", 0x1077, false},
		{"0", 0, false},
		{"ffff", 0xFFFF, false},
		{"10000", 0, true}, // does not fit in a register address
		{"", 0, true},
		{"0x", 0, true},
		{"temp", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		got, err := parseHexWord(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexWord(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseHexWord(%q) = %#04x, want %#04x", tt.in, got, tt.want)
		}
	}
}
