// Package atten maps front-panel volume steps onto Muses 72320
// attenuation codes.
//
// The chip attenuates in half-dB counts, so a code of 120 means
// 60 dB below full scale. A volume range is described by its
// deepest and shallowest attenuation in whole dB plus the number
// of steps the user turns through, and the mapper spreads those
// steps across the range with coarse increments at the bottom and
// half-size increments near the top where the ear is fussier.
package atten

import "math"

const (
	// MuteCode is returned when a range cannot be expressed with the
	// requested step count. It sits past every valid code and lands on
	// the deepest attenuation the chip supports (-111.5 dB).
	MuteCode uint8 = 223

	// MuteData is the chip data value that engages the hardware mute.
	MuteData byte = 0xFF

	// dataOffset is the chip data value for a 0 dB code.
	dataOffset = 0x10
)

// StepCode converts a volume step selection into an attenuation code.
//
// maxDB and minDB bound the range in whole dB of attenuation, sel is
// the selected step and steps the total step count. Selections at the
// top of the range move in half-size increments; the split point falls
// out of the step arithmetic below. Returns MuteCode when the range
// cannot be covered, when sel lies past steps, or when the coarse
// increment would exceed 4 dB.
func StepCode(maxDB, minDB, sel, steps uint8) uint8 {
	rng := float64(maxDB) - float64(minDB)
	large := math.Round(math.Pow(2, rng/float64(steps)) - 0.5)
	small := (large*float64(steps) - rng) / (large / 2)
	if float64(steps) >= small && sel <= steps && large <= 4 {
		fine := math.Min(float64(sel), small)
		coarse := math.Max(float64(sel)-small, 0)
		return uint8((float64(maxDB) - (fine*large/2 + coarse*large)) * 2)
	}
	return MuteCode
}

// CodeDB reports the attenuation a code stands for, in dB below full
// scale.
func CodeDB(code uint8) float64 {
	return float64(code) / 2
}

// DataByte returns the chip data value carrying an attenuation code.
// Valid for codes up to MuteCode.
func DataByte(code uint8) byte {
	return byte(dataOffset + uint16(code))
}
