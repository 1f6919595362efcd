package atten_test

import (
	"testing"

	"github.com/mezmerize-audio/preampd/internal/atten"
)

func TestStepCodeFullRange(t *testing.T) {
	// 60 steps over 0-60 dB resolves to an even 1 dB per step.
	tests := []struct {
		sel  uint8
		want uint8
	}{
		{0, 120},
		{1, 118},
		{30, 60},
		{59, 2},
		{60, 0},
	}
	for _, tt := range tests {
		if got := atten.StepCode(60, 0, tt.sel, 60); got != tt.want {
			t.Errorf("StepCode(60, 0, %d, 60) = %d, want %d", tt.sel, got, tt.want)
		}
	}
}

func TestStepCodeTwoSlope(t *testing.T) {
	// 60 steps over 0-90 dB splits into thirty 1 dB steps at the top
	// and thirty 2 dB steps below them.
	tests := []struct {
		sel  uint8
		want uint8
	}{
		{0, 180},
		{15, 150},
		{30, 120},
		{31, 116},
		{45, 60},
		{60, 0},
	}
	for _, tt := range tests {
		if got := atten.StepCode(90, 0, tt.sel, 60); got != tt.want {
			t.Errorf("StepCode(90, 0, %d, 60) = %d, want %d", tt.sel, got, tt.want)
		}
	}
}

func TestStepCodeSentinel(t *testing.T) {
	tests := []struct {
		name                    string
		maxDB, minDB, sel, step uint8
	}{
		{"selection past step count", 60, 0, 61, 60},
		{"range too wide for steps", 90, 0, 10, 30},
		{"range too narrow for steps", 60, 50, 10, 60},
		{"zero steps", 60, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := atten.StepCode(tt.maxDB, tt.minDB, tt.sel, tt.step); got != atten.MuteCode {
				t.Errorf("StepCode(%d, %d, %d, %d) = %d, want MuteCode",
					tt.maxDB, tt.minDB, tt.sel, tt.step, got)
			}
		})
	}
}

func TestStepCodeMonotonic(t *testing.T) {
	prev := atten.StepCode(60, 0, 0, 60)
	for sel := uint8(1); sel <= 60; sel++ {
		code := atten.StepCode(60, 0, sel, 60)
		if code >= prev {
			t.Fatalf("StepCode not strictly decreasing at step %d: %d then %d", sel, prev, code)
		}
		prev = code
	}
	if prev != 0 {
		t.Errorf("final step code = %d, want 0", prev)
	}
}

func TestCodeDB(t *testing.T) {
	tests := []struct {
		code uint8
		want float64
	}{
		{0, 0},
		{120, 60},
		{atten.MuteCode, 111.5},
	}
	for _, tt := range tests {
		if got := atten.CodeDB(tt.code); got != tt.want {
			t.Errorf("CodeDB(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestDataByte(t *testing.T) {
	tests := []struct {
		code uint8
		want byte
	}{
		{0, 0x10},
		{120, 0x88},
		{atten.MuteCode, 0xEF},
	}
	for _, tt := range tests {
		if got := atten.DataByte(tt.code); got != tt.want {
			t.Errorf("DataByte(%d) = %#02x, want %#02x", tt.code, got, tt.want)
		}
	}
}
