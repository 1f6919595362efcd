//go:build linux

package hardware

import (
	"context"
	"fmt"
	"time"
)

// Sizing for the 24C64-class settings memory on the board.
const (
	eepromSize     = 8192
	eepromPageSize = 32
	eepromWriteWin = 50 * time.Millisecond // acknowledge-poll budget per page (t_WR is 5ms typical)
)

// EEPROM is the settings memory on the shared I2C bus. Word addresses
// are two bytes; writes go page by page with acknowledge polling
// between pages, because the part NACKs while its internal write cycle
// runs. Satisfies the non-volatile storage interface the settings
// store accepts.
type EEPROM struct {
	bus  *i2cBus
	addr uint16
}

func newEEPROM(bus *i2cBus, addr uint16) *EEPROM {
	return &EEPROM{bus: bus, addr: addr}
}

// Size returns the capacity in bytes.
func (e *EEPROM) Size() int { return eepromSize }

// ReadAt fills p starting at off using one sequential read.
func (e *EEPROM) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > eepromSize {
		return 0, fmt.Errorf("eeprom: read [%d,%d) out of range", off, off+int64(len(p)))
	}
	if len(p) == 0 {
		return 0, nil
	}
	ctx := context.Background()
	addrBuf := []byte{byte(off >> 8), byte(off)}
	if err := e.bus.writeRead(ctx, e.addr, addrBuf, p); err != nil {
		return 0, fmt.Errorf("eeprom: read at %d: %w", off, err)
	}
	return len(p), nil
}

// WriteAt writes p starting at off, splitting on page boundaries.
func (e *EEPROM) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > eepromSize {
		return 0, fmt.Errorf("eeprom: write [%d,%d) out of range", off, off+int64(len(p)))
	}
	ctx := context.Background()
	written := 0
	for written < len(p) {
		pos := off + int64(written)
		n := eepromPageSize - int(pos%eepromPageSize)
		if n > len(p)-written {
			n = len(p) - written
		}
		buf := make([]byte, 2+n)
		buf[0] = byte(pos >> 8)
		buf[1] = byte(pos)
		copy(buf[2:], p[written:written+n])
		if err := e.bus.write(ctx, e.addr, buf); err != nil {
			return written, fmt.Errorf("eeprom: page write at %d: %w", pos, err)
		}
		if err := e.waitReady(ctx); err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// waitReady acknowledge-polls until the internal write cycle finishes.
func (e *EEPROM) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(eepromWriteWin)
	for time.Now().Before(deadline) {
		if err := e.bus.probe(ctx, e.addr); err == nil {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return fmt.Errorf("eeprom: write cycle did not complete within %v", eepromWriteWin)
}
