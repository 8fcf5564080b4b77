// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Ovenworks

package netmb

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestPutFloat_KnownEncodings(t *testing.T) {
	tests := []struct {
		name string
		val  float32
		want []byte
	}{
		{"one", 1.0, []byte{0x00, 0x00, 0x3F, 0x80}},
		{"minus one", -1.0, []byte{0x00, 0x00, 0xBF, 0x80}},
		{"zero", 0.0, []byte{0x00, 0x00, 0x00, 0x00}},
		{"hundred", 100.0, []byte{0x00, 0x00, 0x42, 0xC8}},
		{"quarter", 0.25, []byte{0x00, 0x00, 0x3E, 0x80}},
		{"temp 37.5", 37.5, []byte{0x00, 0x00, 0x42, 0x16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 4)
			if err := PutFloat(buf, 0, tt.val); err != nil {
				t.Fatalf("PutFloat(%v) error: %v", tt.val, err)
			}
			if !bytes.Equal(buf, tt.want) {
				t.Errorf("PutFloat(%v) = % 02X, want % 02X", tt.val, buf, tt.want)
			}
		})
	}
}

func TestFloat_RoundTrip(t *testing.T) {
	vals := []float32{
		0,
		float32(math.Copysign(0, -1)),
		1, -1, 0.5, -0.5,
		37.5, -40, 180, 25.3,
		math.MaxFloat32,
		math.SmallestNonzeroFloat32,
		-math.SmallestNonzeroFloat32,
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
	}

	buf := make([]byte, 4)
	for _, v := range vals {
		if err := PutFloat(buf, 0, v); err != nil {
			t.Fatalf("PutFloat(%v) error: %v", v, err)
		}
		got, err := GetFloat(buf, 0)
		if err != nil {
			t.Fatalf("GetFloat after PutFloat(%v) error: %v", v, err)
		}
		if math.Float32bits(got) != math.Float32bits(v) {
			t.Errorf("round trip of %v: got %v (bits 0x%08X, want 0x%08X)",
				v, got, math.Float32bits(got), math.Float32bits(v))
		}
	}
}

func TestFloat_NaNPayloadPreserved(t *testing.T) {
	nan := math.Float32frombits(0x7FC00123)
	buf := make([]byte, 4)
	if err := PutFloat(buf, 0, nan); err != nil {
		t.Fatalf("PutFloat error: %v", err)
	}
	got, err := GetFloat(buf, 0)
	if err != nil {
		t.Fatalf("GetFloat error: %v", err)
	}
	if math.Float32bits(got) != 0x7FC00123 {
		t.Errorf("NaN payload changed: got bits 0x%08X", math.Float32bits(got))
	}
}

func TestGetFloat_NoBuffer(t *testing.T) {
	got, err := GetFloat(nil, 0)
	if !errors.Is(err, ErrNoBuffer) {
		t.Errorf("GetFloat(nil) error = %v, want ErrNoBuffer", err)
	}
	if !math.IsNaN(float64(got)) {
		t.Errorf("GetFloat(nil) = %v, want NaN", got)
	}

	short := make([]byte, 3)
	if _, err := GetFloat(short, 0); !errors.Is(err, ErrNoBuffer) {
		t.Errorf("GetFloat(short buf) error = %v, want ErrNoBuffer", err)
	}
}

func TestFloatToWords_MatchesWireLayout(t *testing.T) {
	v := float32(123.456)
	w0, w1 := FloatToWords(v)

	buf := make([]byte, 4)
	if err := PutFloat(buf, 0, v); err != nil {
		t.Fatalf("PutFloat error: %v", err)
	}
	gw0, _ := getWord(buf, 0)
	gw1, _ := getWord(buf, 2)
	if w0 != gw0 || w1 != gw1 {
		t.Errorf("FloatToWords = %04X %04X, wire words %04X %04X", w0, w1, gw0, gw1)
	}

	if got := WordsToFloat(w0, w1); math.Float32bits(got) != math.Float32bits(v) {
		t.Errorf("WordsToFloat(FloatToWords(%v)) = %v", v, got)
	}
}
