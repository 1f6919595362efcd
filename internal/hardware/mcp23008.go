//go:build linux

package hardware

import (
	"context"
	"fmt"
)

// mcp23008 drives the relay expander. It keeps an output latch shadow
// so single-relay updates need no read-modify-write on the wire; the
// Board's mutex covers concurrent access.
type mcp23008 struct {
	bus  *i2cBus
	addr uint16
	olat byte
}

func newMCP23008(bus *i2cBus, addr uint16) *mcp23008 {
	return &mcp23008{bus: bus, addr: addr}
}

// init configures every port bit as a released output. The latch is
// written before the direction register so no relay chatters while the
// pins switch to output mode.
func (m *mcp23008) init(ctx context.Context) error {
	if err := m.bus.writeReg(ctx, m.addr, RegOLat, 0x00); err != nil {
		return fmt.Errorf("relay expander: clear latch: %w", err)
	}
	if err := m.bus.writeReg(ctx, m.addr, RegIODir, 0x00); err != nil {
		return fmt.Errorf("relay expander: set directions: %w", err)
	}
	m.olat = 0
	return nil
}

// setOLat replaces the full output latch.
func (m *mcp23008) setOLat(ctx context.Context, val byte) error {
	if err := m.bus.writeReg(ctx, m.addr, RegOLat, val); err != nil {
		return fmt.Errorf("relay expander: write latch: %w", err)
	}
	m.olat = val
	return nil
}

// setBits updates the masked bits to val and preserves the rest.
func (m *mcp23008) setBits(ctx context.Context, mask, val byte) error {
	return m.setOLat(ctx, (m.olat&^mask)|(val&mask))
}
