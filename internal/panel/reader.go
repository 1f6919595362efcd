package panel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.bug.st/serial"
)

// Source delivers decoded panel events. The channel closes when the source
// stops, whether by cancellation or link failure.
type Source interface {
	Events() <-chan Event
	Close() error
}

const eventBufferSize = 32

// Reader decodes panel frames from a serial port. It performs no state
// access: bytes in, events out. Heartbeats are consumed here as link
// liveness and never forwarded.
type Reader struct {
	port      serial.Port
	ch        chan Event
	closeOnce sync.Once
	closeErr  error
}

var _ Source = (*Reader)(nil)

// Open opens the panel serial link at 8N1.
func Open(portName string, baud int) (*Reader, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("panel: open %s: %w", portName, err)
	}
	slog.Info("panel: serial link open", "port", portName, "baud", baud)
	return &Reader{port: port, ch: make(chan Event, eventBufferSize)}, nil
}

// Events returns the decoded event stream.
func (r *Reader) Events() <-chan Event {
	return r.ch
}

// Run reads and decodes frames until ctx is cancelled or the port fails.
// It closes the event channel on return.
func (r *Reader) Run(ctx context.Context) error {
	defer close(r.ch)

	// A blocked Read only unblocks when the port closes underneath it.
	stop := context.AfterFunc(ctx, func() { _ = r.Close() })
	defer stop()

	dec := NewDecoder()
	buf := make([]byte, 64)
	lastDropped := 0
	for {
		n, err := r.port.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("panel: read: %w", err)
		}
		for _, ev := range dec.Feed(buf[:n]) {
			if ev.Kind == KindHeartbeat {
				slog.Debug("panel: heartbeat")
				continue
			}
			select {
			case r.ch <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if d := dec.Dropped(); d != lastDropped {
			slog.Warn("panel: dropped frames", "count", d-lastDropped)
			lastDropped = d
		}
	}
}

// Close closes the serial port, unblocking Run.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.port.Close()
	})
	return r.closeErr
}
