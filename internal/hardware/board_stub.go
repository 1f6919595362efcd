//go:build !linux

package hardware

import (
	"context"
	"errors"
)

var errNotLinux = errors.New("hardware: real driver requires linux")

// Board is a compile-only stand-in off Linux. Init always fails;
// development builds use the mock driver instead.
type Board struct{}

// NewBoard creates a driver for the given wiring. Nothing is opened
// until Init.
func NewBoard(cfg BoardConfig) *Board { return &Board{} }

func (b *Board) Init(ctx context.Context) error { return errNotLinux }

// NVRAM returns the settings EEPROM on the board's bus. Valid after
// Init.
func (b *Board) NVRAM() *EEPROM { return nil }

func (b *Board) SelectInput(ctx context.Context, input int) error { return errNotLinux }

func (b *Board) SetTrigger(ctx context.Context, trigger int, on bool) error { return errNotLinux }

func (b *Board) ApplyAttenuation(ctx context.Context, code uint8) error { return errNotLinux }

func (b *Board) SetHardwareMute(ctx context.Context, on bool) error { return errNotLinux }

func (b *Board) ReadTemp(ctx context.Context, channel int) (float64, error) {
	return 0, errNotLinux
}

func (b *Board) ReadSupplyMillivolts(ctx context.Context) (int, error) { return 0, errNotLinux }

func (b *Board) IsReal() bool { return true }

func (b *Board) Close() error { return nil }

// EEPROM is unavailable off Linux.
type EEPROM struct{}

func (e *EEPROM) Size() int { return 0 }

func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) { return 0, errNotLinux }

func (e *EEPROM) WriteAt(p []byte, off int64) (int, error) { return 0, errNotLinux }
