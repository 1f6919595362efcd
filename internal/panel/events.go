// Package panel speaks the framed serial protocol of the front panel MCU.
//
// The panel MCU owns the rotary encoders, the push buttons and the IR
// receiver. It debounces and decodes locally and streams small event frames
// over UART. This package decodes that stream; interpreting the events
// (key mapping, volume policy) is the controller's job.
package panel

import (
	"encoding/binary"
	"fmt"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// Kind tags an event payload on the wire.
type Kind byte

const (
	KindEncoder   Kind = 0x01 // rotary detents: id, signed delta
	KindButton    Kind = 0x02 // push button: id, action
	KindIR        Kind = 0x03 // raw remote frame: address, command
	KindHeartbeat Kind = 0x04 // periodic liveness beacon, no payload
)

func (k Kind) String() string {
	switch k {
	case KindEncoder:
		return "encoder"
	case KindButton:
		return "button"
	case KindIR:
		return "ir"
	case KindHeartbeat:
		return "heartbeat"
	}
	return fmt.Sprintf("kind(0x%02x)", byte(k))
}

// Action is a push-button gesture, pre-classified by the panel MCU.
type Action uint8

const (
	ActionClick Action = iota
	ActionDouble
)

func (a Action) String() string {
	switch a {
	case ActionClick:
		return "click"
	case ActionDouble:
		return "double"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Event is one decoded panel event. Only the fields relevant to Kind are
// meaningful.
type Event struct {
	Kind   Kind
	ID     uint8 // encoder or button index
	Delta  int8  // encoder detents, CW positive
	Action Action
	IR     models.IRCode
}

// Payload renders the event in wire form (without framing).
func (e Event) Payload() []byte {
	switch e.Kind {
	case KindEncoder:
		return []byte{byte(KindEncoder), e.ID, byte(e.Delta)}
	case KindButton:
		return []byte{byte(KindButton), e.ID, byte(e.Action)}
	case KindIR:
		p := make([]byte, 7)
		p[0] = byte(KindIR)
		binary.LittleEndian.PutUint16(p[1:3], e.IR.Address)
		binary.LittleEndian.PutUint32(p[3:7], e.IR.Command)
		return p
	case KindHeartbeat:
		return []byte{byte(KindHeartbeat)}
	}
	return nil
}

// parsePayload decodes one frame payload into an event.
func parsePayload(p []byte) (Event, error) {
	if len(p) == 0 {
		return Event{}, fmt.Errorf("panel: empty payload")
	}
	switch Kind(p[0]) {
	case KindEncoder:
		if len(p) != 3 {
			return Event{}, fmt.Errorf("panel: encoder payload length %d", len(p))
		}
		return Event{Kind: KindEncoder, ID: p[1], Delta: int8(p[2])}, nil
	case KindButton:
		if len(p) != 3 {
			return Event{}, fmt.Errorf("panel: button payload length %d", len(p))
		}
		if Action(p[2]) > ActionDouble {
			return Event{}, fmt.Errorf("panel: unknown button action %d", p[2])
		}
		return Event{Kind: KindButton, ID: p[1], Action: Action(p[2])}, nil
	case KindIR:
		if len(p) != 7 {
			return Event{}, fmt.Errorf("panel: ir payload length %d", len(p))
		}
		return Event{Kind: KindIR, IR: models.IRCode{
			Address: binary.LittleEndian.Uint16(p[1:3]),
			Command: binary.LittleEndian.Uint32(p[3:7]),
		}}, nil
	case KindHeartbeat:
		if len(p) != 1 {
			return Event{}, fmt.Errorf("panel: heartbeat payload length %d", len(p))
		}
		return Event{Kind: KindHeartbeat}, nil
	}
	return Event{}, fmt.Errorf("panel: unknown payload kind 0x%02x", p[0])
}
