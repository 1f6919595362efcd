// Package hardware provides the hardware abstraction layer for the
// preamp board. It defines the Driver interface and helper types used
// by both the real Linux driver and the mock driver.
package hardware

import "context"

// Register is an I2C register address.
type Register = byte

// Temperature channels map one to one onto the NTC sensors bonded to
// the trigger outputs' amplifier heatsinks.
const (
	TempAmp1        = 0
	TempAmp2        = 1
	NumTempChannels = 2
)

// Sentinel readings for sensors pinned to a rail.
const (
	TempDisconnected = -999 // open sensor, reads as impossibly cold
	TempShorted      = 999  // shorted sensor, reads as impossibly hot
)

// Driver is the hardware abstraction interface for the preamp board.
// All operations are context-aware and safe for concurrent use.
type Driver interface {
	// Init initializes the hardware driver. Must be called before any
	// other method.
	Init(ctx context.Context) error

	// SelectInput energizes exactly one input relay (0-5) and releases
	// the others. Input -1 releases every input relay.
	SelectInput(ctx context.Context, input int) error

	// SetTrigger drives one of the 12V trigger outputs (0 or 1).
	SetTrigger(ctx context.Context, trigger int, on bool) error

	// ApplyAttenuation writes an attenuation code to both channels of
	// the volume chip.
	ApplyAttenuation(ctx context.Context, code uint8) error

	// SetHardwareMute engages the volume chip's mute. Disengaging
	// rewrites the last applied attenuation code.
	SetHardwareMute(ctx context.Context, on bool) error

	// ReadTemp samples an NTC temperature channel in degrees Celsius.
	// Sensors pinned to a rail report TempDisconnected or TempShorted.
	ReadTemp(ctx context.Context, channel int) (float64, error)

	// ReadSupplyMillivolts samples the unregulated supply rail.
	ReadSupplyMillivolts(ctx context.Context) (int, error)

	// IsReal returns true for a real hardware driver, false for a mock.
	IsReal() bool

	// Close releases bus handles. The driver is unusable afterwards.
	Close() error
}
