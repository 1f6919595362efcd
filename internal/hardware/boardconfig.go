package hardware

// BoardConfig carries the bus paths, pin names and conversion constants
// for the real preamp board.
type BoardConfig struct {
	I2CDevice      string
	RelayAddr      uint16
	EEPROMAddr     uint16
	MusesPort      string
	MusesLatchPin  string
	ADCPort        string
	NTCChannels    [NumTempChannels]int
	SupplyChannel  int
	NTCRefOhms     float64
	VrefMillivolts int
	SupplyDivider  float64
}

// DefaultBoardConfig returns the wiring of the standard controller
// build.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		I2CDevice:      "/dev/i2c-1",
		RelayAddr:      0x20,
		EEPROMAddr:     0x50,
		MusesPort:      "SPI0.0",
		MusesLatchPin:  "GPIO25",
		ADCPort:        "SPI0.1",
		NTCChannels:    [NumTempChannels]int{0, 1},
		SupplyChannel:  2,
		NTCRefOhms:     10000,
		VrefMillivolts: 3300,
		SupplyDivider:  2.0,
	}
}
