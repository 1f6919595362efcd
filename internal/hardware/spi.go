//go:build linux

package hardware

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/mezmerize-audio/preampd/internal/atten"
)

var (
	hostInitOnce sync.Once
	hostInitErr  error
)

// initHost loads the periph.io host drivers once per process.
func initHost() error {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	if hostInitErr != nil {
		return fmt.Errorf("spi: host init: %w", hostInitErr)
	}
	return nil
}

// muses drives the Muses 72320 volume chip. The chip clocks 16-bit
// frames in SPI mode 2 and loads them on a rising latch edge, so the
// latch pin is driven separately from the SPI port.
type muses struct {
	port  spi.PortCloser
	conn  spi.Conn
	latch gpio.PinIO
	last  uint8
}

func openMuses(portName, latchPin string) (*muses, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("spi: open %s: %w", portName, err)
	}
	conn, err := port.Connect(physic.MegaHertz, spi.Mode2, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("spi: connect %s: %w", portName, err)
	}
	latch := gpioreg.ByName(latchPin)
	if latch == nil {
		port.Close()
		return nil, fmt.Errorf("gpio: failed to open %s (latch)", latchPin)
	}
	if err := latch.Out(gpio.High); err != nil {
		port.Close()
		return nil, fmt.Errorf("gpio: park latch: %w", err)
	}
	return &muses{port: port, conn: conn, latch: latch, last: atten.MuteCode}, nil
}

// writeWord clocks one frame out and pulses the latch to load it.
func (m *muses) writeWord(w [2]byte) error {
	if err := m.latch.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio: drop latch: %w", err)
	}
	if err := m.conn.Tx(w[:], nil); err != nil {
		return fmt.Errorf("spi: muses tx: %w", err)
	}
	if err := m.latch.Out(gpio.High); err != nil {
		return fmt.Errorf("gpio: raise latch: %w", err)
	}
	return nil
}

// setCode writes an attenuation code to both channels.
func (m *muses) setCode(code uint8) error {
	data := atten.DataByte(code)
	if err := m.writeWord(MusesWord(MusesLeftAtt, data)); err != nil {
		return err
	}
	if err := m.writeWord(MusesWord(MusesRightAtt, data)); err != nil {
		return err
	}
	m.last = code
	return nil
}

// setMute engages the chip mute; disengaging rewrites the last code.
func (m *muses) setMute(on bool) error {
	if !on {
		return m.setCode(m.last)
	}
	if err := m.writeWord(MusesWord(MusesLeftAtt, atten.MuteData)); err != nil {
		return err
	}
	return m.writeWord(MusesWord(MusesRightAtt, atten.MuteData))
}

func (m *muses) close() error {
	return m.port.Close()
}

// adcReader samples the MCP3008 carrying the NTC and supply-sense
// channels.
type adcReader struct {
	port spi.PortCloser
	conn spi.Conn
}

func openADC(portName string) (*adcReader, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("spi: open %s: %w", portName, err)
	}
	// 1.35 MHz is the part's ceiling on a 3.3V supply.
	conn, err := port.Connect(1350*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("spi: connect %s: %w", portName, err)
	}
	return &adcReader{port: port, conn: conn}, nil
}

// read performs one single-ended conversion and returns the 10-bit
// result.
func (a *adcReader) read(channel int) (int, error) {
	if channel < 0 || channel > 7 {
		return 0, fmt.Errorf("adc: invalid channel %d", channel)
	}
	req := ADCRequest(channel)
	var resp [3]byte
	if err := a.conn.Tx(req[:], resp[:]); err != nil {
		return 0, fmt.Errorf("adc: tx channel %d: %w", channel, err)
	}
	return ADCValue(resp), nil
}

func (a *adcReader) close() error {
	return a.port.Close()
}
