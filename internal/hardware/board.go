//go:build linux

package hardware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Board is the real hardware driver: relay expander and settings EEPROM
// on the I2C bus, volume chip and ADC on SPI.
type Board struct {
	cfg BoardConfig

	mu  sync.Mutex
	bus *i2cBus
	mcp *mcp23008
	vol *muses
	adc *adcReader
}

// NewBoard creates a driver for the given wiring. Nothing is opened
// until Init.
func NewBoard(cfg BoardConfig) *Board {
	return &Board{cfg: cfg}
}

func (b *Board) Init(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bus, err := openBus(b.cfg.I2CDevice)
	if err != nil {
		return err
	}
	if err := bus.probe(ctx, b.cfg.RelayAddr); err != nil {
		bus.close()
		return fmt.Errorf("hardware: relay expander not responding at 0x%02x: %w", b.cfg.RelayAddr, err)
	}
	mcp := newMCP23008(bus, b.cfg.RelayAddr)
	if err := mcp.init(ctx); err != nil {
		bus.close()
		return err
	}
	vol, err := openMuses(b.cfg.MusesPort, b.cfg.MusesLatchPin)
	if err != nil {
		bus.close()
		return err
	}
	adc, err := openADC(b.cfg.ADCPort)
	if err != nil {
		vol.close()
		bus.close()
		return err
	}

	b.bus = bus
	b.mcp = mcp
	b.vol = vol
	b.adc = adc
	slog.Info("hardware: preamp board ready",
		"i2c", b.cfg.I2CDevice,
		"muses", b.cfg.MusesPort,
		"adc", b.cfg.ADCPort)
	return nil
}

// NVRAM returns the settings EEPROM on the board's bus. Valid after
// Init.
func (b *Board) NVRAM() *EEPROM {
	b.mu.Lock()
	defer b.mu.Unlock()
	return newEEPROM(b.bus, b.cfg.EEPROMAddr)
}

func (b *Board) SelectInput(ctx context.Context, input int) error {
	if input < -1 || input > 5 {
		return fmt.Errorf("hardware: invalid input %d", input)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mcp == nil {
		return fmt.Errorf("hardware: driver not initialized")
	}
	return b.mcp.setBits(ctx, inputRelayBits, InputRelayMask(input))
}

func (b *Board) SetTrigger(ctx context.Context, trigger int, on bool) error {
	mask := TriggerRelayMask(trigger)
	if mask == 0 {
		return fmt.Errorf("hardware: invalid trigger %d", trigger)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mcp == nil {
		return fmt.Errorf("hardware: driver not initialized")
	}
	var val byte
	if on {
		val = mask
	}
	return b.mcp.setBits(ctx, mask, val)
}

func (b *Board) ApplyAttenuation(ctx context.Context, code uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.vol == nil {
		return fmt.Errorf("hardware: driver not initialized")
	}
	return b.vol.setCode(code)
}

func (b *Board) SetHardwareMute(ctx context.Context, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.vol == nil {
		return fmt.Errorf("hardware: driver not initialized")
	}
	return b.vol.setMute(on)
}

func (b *Board) ReadTemp(ctx context.Context, channel int) (float64, error) {
	if channel < 0 || channel >= NumTempChannels {
		return 0, fmt.Errorf("hardware: invalid temperature channel %d", channel)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.adc == nil {
		return 0, fmt.Errorf("hardware: driver not initialized")
	}
	raw, err := b.adc.read(b.cfg.NTCChannels[channel])
	if err != nil {
		return 0, err
	}
	return TempFromADC(b.cfg.NTCRefOhms, raw), nil
}

func (b *Board) ReadSupplyMillivolts(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.adc == nil {
		return 0, fmt.Errorf("hardware: driver not initialized")
	}
	raw, err := b.adc.read(b.cfg.SupplyChannel)
	if err != nil {
		return 0, err
	}
	return SupplyMillivolts(b.cfg.VrefMillivolts, b.cfg.SupplyDivider, raw), nil
}

func (b *Board) IsReal() bool { return true }

// Close releases every bus handle.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	if b.adc != nil {
		errs = append(errs, b.adc.close())
		b.adc = nil
	}
	if b.vol != nil {
		errs = append(errs, b.vol.close())
		b.vol = nil
	}
	if b.bus != nil {
		errs = append(errs, b.bus.close())
		b.bus = nil
		b.mcp = nil
	}
	return errors.Join(errs...)
}
