//go:build linux

package hardware

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

const (
	i2cRdwrIOCTL = 0x0707 // I2C_RDWR ioctl — combined write+read with REPEATED START
	i2cMsgRD     = 0x0001 // i2c_msg flag: read direction
	maxOpsPerSec = 500
)

// i2cMsg mirrors struct i2c_msg from linux/i2c.h
type i2cMsg struct {
	addr   uint16
	flags  uint16
	length uint16
	_pad   uint16 // struct alignment
	buf    uintptr
}

// i2cRdwr mirrors struct i2c_rdwr_ioctl_data from linux/i2c-dev.h
type i2cRdwr struct {
	msgs  uintptr
	nmsgs uint32
}

// i2cBus is a shared handle on a Linux I2C adapter. The relay expander
// and the settings EEPROM hang off the same bus, so one fd, one mutex
// and one rate limiter cover both.
type i2cBus struct {
	mu      sync.Mutex
	fd      int
	limiter *rate.Limiter
}

// openBus opens the I2C adapter device node.
func openBus(device string) (*i2cBus, error) {
	fd, err := unix.Open(device, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", device, err)
	}
	return &i2cBus{
		fd:      fd,
		limiter: rate.NewLimiter(rate.Limit(maxOpsPerSec), 10),
	}, nil
}

func (b *i2cBus) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}

// write sends buf to addr in a single transaction.
func (b *i2cBus) write(ctx context.Context, addr uint16, buf []byte) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return fmt.Errorf("i2c: bus closed")
	}
	msgs := [1]i2cMsg{
		{addr: addr, flags: 0, length: uint16(len(buf)), buf: uintptr(unsafe.Pointer(&buf[0]))},
	}
	rdwr := i2cRdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: 1}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdwrIOCTL, uintptr(unsafe.Pointer(&rdwr))); errno != 0 {
		return fmt.Errorf("i2c: I2C_RDWR write 0x%02x: %w", addr, errno)
	}
	return nil
}

// writeRead sends wbuf and then reads len(rbuf) bytes in one combined
// transaction: START→addr|W→wbuf→RS→addr|R→rbuf→NACK→STOP.
func (b *i2cBus) writeRead(ctx context.Context, addr uint16, wbuf, rbuf []byte) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return fmt.Errorf("i2c: bus closed")
	}
	msgs := [2]i2cMsg{
		{addr: addr, flags: 0, length: uint16(len(wbuf)), buf: uintptr(unsafe.Pointer(&wbuf[0]))},
		{addr: addr, flags: i2cMsgRD, length: uint16(len(rbuf)), buf: uintptr(unsafe.Pointer(&rbuf[0]))},
	}
	rdwr := i2cRdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: 2}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdwrIOCTL, uintptr(unsafe.Pointer(&rdwr))); errno != 0 {
		return fmt.Errorf("i2c: I2C_RDWR read 0x%02x: %w", addr, errno)
	}
	return nil
}

// writeReg writes a single byte to a device register.
func (b *i2cBus) writeReg(ctx context.Context, addr uint16, reg Register, val byte) error {
	if err := b.write(ctx, addr, []byte{reg, val}); err != nil {
		return fmt.Errorf("i2c: write reg 0x%02x: %w", reg, err)
	}
	return nil
}

// readReg reads a single byte from a device register.
func (b *i2cBus) readReg(ctx context.Context, addr uint16, reg Register) (byte, error) {
	var rbuf [1]byte
	if err := b.writeRead(ctx, addr, []byte{reg}, rbuf[:]); err != nil {
		return 0, fmt.Errorf("i2c: read reg 0x%02x: %w", reg, err)
	}
	return rbuf[0], nil
}

// probe issues a zero-length write. A device answers with an ACK when
// it is present and not busy; the EEPROM NACKs during its internal
// write cycle, which makes this the acknowledge-polling primitive.
func (b *i2cBus) probe(ctx context.Context, addr uint16) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return fmt.Errorf("i2c: bus closed")
	}
	msgs := [1]i2cMsg{{addr: addr}}
	rdwr := i2cRdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: 1}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdwrIOCTL, uintptr(unsafe.Pointer(&rdwr))); errno != 0 {
		return fmt.Errorf("i2c: no ack from 0x%02x: %w", addr, errno)
	}
	return nil
}
