package panel_test

import (
	"testing"

	"github.com/mezmerize-audio/preampd/internal/panel"
)

func TestCRC16(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", nil, 0xFFFF},
		{"ack header", []byte{0x05, 0x10}, 0x9E81},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := panel.CRC16(tt.data); got != tt.want {
				t.Errorf("CRC16(%v) = 0x%04X, want 0x%04X", tt.data, got, tt.want)
			}
		})
	}
}

func TestCRC16DetectsBitFlip(t *testing.T) {
	data := []byte{0x08, 0x00, 0x01, 0x00, 0x03}
	ref := panel.CRC16(data)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(data))
			copy(flipped, data)
			flipped[i] ^= 1 << bit
			if got := panel.CRC16(flipped); got == ref {
				t.Errorf("flip byte %d bit %d not detected (crc 0x%04X)", i, bit, got)
			}
		}
	}
}
