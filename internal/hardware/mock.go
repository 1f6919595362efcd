package hardware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mezmerize-audio/preampd/internal/atten"
)

// Mock is a thread-safe in-memory mock hardware driver for testing and
// development. It records every mutating call in order so tests can
// assert sequencing (mute before relay switch, relay before recall).
type Mock struct {
	mu        sync.Mutex
	input     int
	triggers  [2]bool
	atten     uint8
	muted     bool
	temps     [NumTempChannels]float64
	supplyMV  int
	failWrite bool
	failRead  bool
	ops       []string
}

// NewMock creates a mock driver reporting a healthy board: released
// relays, muted volume chip, room-temperature sensors and a nominal
// 5V rail.
func NewMock() *Mock {
	return &Mock{
		input:    -1,
		atten:    atten.MuteCode,
		muted:    true,
		temps:    [NumTempChannels]float64{25, 25},
		supplyMV: 5000,
	}
}

// SetFailWrite configures the mock to fail all mutating operations.
func (m *Mock) SetFailWrite(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

// SetFailRead configures the mock to fail all sampling operations.
func (m *Mock) SetFailRead(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = fail
}

// SetTemp sets the temperature a channel will report.
func (m *Mock) SetTemp(channel int, tempC float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channel >= 0 && channel < NumTempChannels {
		m.temps[channel] = tempC
	}
}

// SetSupplyMillivolts sets the supply rail reading.
func (m *Mock) SetSupplyMillivolts(mv int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.supplyMV = mv
}

func (m *Mock) Init(ctx context.Context) error {
	return nil
}

func (m *Mock) SelectInput(ctx context.Context, input int) error {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrHardware("mock: write failure configured")
	}
	if input < -1 || input > 5 {
		return ErrHardware("mock: invalid input")
	}
	m.input = input
	m.ops = append(m.ops, fmt.Sprintf("input:%d", input))
	return nil
}

func (m *Mock) SetTrigger(ctx context.Context, trigger int, on bool) error {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrHardware("mock: write failure configured")
	}
	if trigger < 0 || trigger > 1 {
		return ErrHardware("mock: invalid trigger")
	}
	m.triggers[trigger] = on
	m.ops = append(m.ops, fmt.Sprintf("trigger:%d:%t", trigger, on))
	return nil
}

func (m *Mock) ApplyAttenuation(ctx context.Context, code uint8) error {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrHardware("mock: write failure configured")
	}
	m.atten = code
	m.ops = append(m.ops, fmt.Sprintf("atten:%d", code))
	return nil
}

func (m *Mock) SetHardwareMute(ctx context.Context, on bool) error {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrHardware("mock: write failure configured")
	}
	m.muted = on
	m.ops = append(m.ops, fmt.Sprintf("mute:%t", on))
	return nil
}

func (m *Mock) ReadTemp(ctx context.Context, channel int) (float64, error) {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return 0, ErrHardware("mock: read failure configured")
	}
	if channel < 0 || channel >= NumTempChannels {
		return 0, ErrHardware("mock: invalid temperature channel")
	}
	return m.temps[channel], nil
}

func (m *Mock) ReadSupplyMillivolts(ctx context.Context) (int, error) {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRead {
		return 0, ErrHardware("mock: read failure configured")
	}
	return m.supplyMV, nil
}

func (m *Mock) IsReal() bool {
	return false
}

func (m *Mock) Close() error {
	return nil
}

// GetInput returns the currently energized input relay (-1 for none).
func (m *Mock) GetInput() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.input
}

// GetTrigger returns a trigger output's state.
func (m *Mock) GetTrigger(trigger int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if trigger < 0 || trigger > 1 {
		return false
	}
	return m.triggers[trigger]
}

// GetAttenuation returns the last applied attenuation code.
func (m *Mock) GetAttenuation() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.atten
}

// GetHardwareMute returns the volume chip mute state.
func (m *Mock) GetHardwareMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Ops returns the recorded mutating calls in order.
func (m *Mock) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.ops))
	copy(result, m.ops)
	return result
}

// ResetOps clears the recorded call log.
func (m *Mock) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

// HardwareError is returned when a hardware operation fails.
type HardwareError struct {
	msg string
}

func (e HardwareError) Error() string { return e.msg }

// ErrHardware creates a new hardware error.
func ErrHardware(msg string) error { return HardwareError{msg: msg} }
