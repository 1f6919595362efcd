package hardware

import "math"

// NTCResistance converts a raw divider reading into the thermistor
// resistance in ohms. The NTC sits on the low side of the divider with
// rref to the rail, so Rntc = Rref / ((Vin/Vout) - 1).
func NTCResistance(rref float64, raw int) float64 {
	return rref * float64(raw) / float64(ADCFullScale-raw)
}

// NTCCelsius converts a thermistor resistance in ohms to degrees
// Celsius using the board's log curve fit.
func NTCCelsius(rntc float64) float64 {
	return -25.37*math.Log(rntc) + 239.43
}

// TempFromADC converts a raw NTC channel reading to Celsius. Readings
// pinned to either rail report the sensor sentinels instead.
func TempFromADC(rref float64, raw int) float64 {
	if raw <= 0 {
		return TempShorted
	}
	if raw >= ADCFullScale {
		return TempDisconnected
	}
	return NTCCelsius(NTCResistance(rref, raw))
}

// SupplyMillivolts converts a raw supply-sense reading through the
// board's divider back to rail millivolts.
func SupplyMillivolts(vrefMV int, divider float64, raw int) int {
	return int(math.Round(float64(raw) * float64(vrefMV) * divider / ADCFullScale))
}
