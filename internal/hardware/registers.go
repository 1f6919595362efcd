package hardware

// Register addresses for the MCP23008-class relay expander
// (IOCON.BANK=0 layout).
const (
	RegIODir   Register = 0x00 // Pin direction (1=input, 0=output)
	RegIPol    Register = 0x01 // Input polarity
	RegGPIntEn Register = 0x02 // Interrupt-on-change enable
	RegDefVal  Register = 0x03 // Interrupt compare default
	RegIntCon  Register = 0x04 // Interrupt control
	RegIOCon   Register = 0x05 // Expander configuration
	RegGPPU    Register = 0x06 // Pull-up enable
	RegIntF    Register = 0x07 // Interrupt flags (read-only)
	RegIntCap  Register = 0x08 // Interrupt capture (read-only)
	RegGPIO    Register = 0x09 // Port value
	RegOLat    Register = 0x0A // Output latch
)

// Relay assignments on the expander port: one relay per input on bits
// 0-5, the two trigger outputs on bits 6 and 7.
const (
	inputRelayBits byte = 0x3F
	triggerBit0         = 6
)

// InputRelayMask returns the output latch bit for an input relay.
// Input -1 maps to no relay at all.
func InputRelayMask(input int) byte {
	if input < 0 || input > 5 {
		return 0
	}
	return 1 << uint(input)
}

// TriggerRelayMask returns the output latch bit for a trigger output.
func TriggerRelayMask(trigger int) byte {
	if trigger < 0 || trigger > 1 {
		return 0
	}
	return 1 << uint(triggerBit0+trigger)
}

// ComposeRelays packs an input selection and trigger states into a full
// output latch value. Input -1 leaves every input relay released.
func ComposeRelays(input int, triggers [2]bool) byte {
	val := InputRelayMask(input)
	for i, on := range triggers {
		if on {
			val |= TriggerRelayMask(i)
		}
	}
	return val
}

// DecodeRelays unpacks an output latch value. The input is the lowest
// energized input relay, or -1 when none is.
func DecodeRelays(b byte) (input int, triggers [2]bool) {
	input = -1
	for i := 0; i < 6; i++ {
		if b&(1<<uint(i)) != 0 {
			input = i
			break
		}
	}
	triggers[0] = b&TriggerRelayMask(0) != 0
	triggers[1] = b&TriggerRelayMask(1) != 0
	return
}

// Muses 72320 select addresses (upper nibble of the frame's second
// byte). The chip's address pins are strapped low on the board.
const (
	MusesLeftAtt  byte = 0x00
	MusesRightAtt byte = 0x20
	musesChipAddr byte = 0x00
)

// MusesWord assembles the 16-bit frame for one select address: the data
// byte shifts out first, then select plus chip address.
func MusesWord(sel, data byte) [2]byte {
	return [2]byte{data, sel | musesChipAddr}
}

// ADCFullScale is the full-scale reading of the 10-bit MCP3008.
const ADCFullScale = 1023

// ADCRequest builds the three-byte MCP3008 exchange requesting a
// single-ended conversion of a channel (0-7).
func ADCRequest(channel int) [3]byte {
	return [3]byte{0x01, byte(0x80 | (channel&0x07)<<4), 0x00}
}

// ADCValue extracts the 10-bit conversion result from the response half
// of the exchange.
func ADCValue(resp [3]byte) int {
	return int(resp[1]&0x03)<<8 | int(resp[2])
}
