package models

import (
	"encoding/json"
	"fmt"
)

// Mode is the top-level application state. Every user input event and every
// supply-voltage sample is dispatched according to the current mode.
type Mode uint8

const (
	ModeInitializing Mode = iota // loading records, applying boot policy
	ModeNormal                   // volume/input control
	ModeMenu                     // navigating the menu tree
	ModeMenuCommand              // an invoked editor owns the input stream
	ModeStandby                  // asleep; only on/off wakes (via full restart)
	ModePowerLoss                // supply failing; runtime flushed, waiting
)

func (m Mode) String() string {
	switch m {
	case ModeInitializing:
		return "initializing"
	case ModeNormal:
		return "normal"
	case ModeMenu:
		return "menu"
	case ModeMenuCommand:
		return "menu_command"
	case ModeStandby:
		return "standby"
	case ModePowerLoss:
		return "power_loss"
	}
	return "unknown"
}

// MarshalJSON renders the mode as its lowercase name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON parses a mode name produced by MarshalJSON.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for cand := ModeInitializing; cand <= ModePowerLoss; cand++ {
		if cand.String() == name {
			*m = cand
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", name)
}

// Key is a logical front-panel input, unified across the rotary encoders and
// the IR remote.
type Key uint8

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyRepeat
	KeySelect
	KeyRight
	KeyLeft
	KeyBack
	KeyMute
	KeyOnOff
	KeyPrevious
	KeyInput1
	KeyInput2
	KeyInput3
	KeyInput4
	KeyInput5
	KeyInput6
)

func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyRepeat:
		return "repeat"
	case KeySelect:
		return "select"
	case KeyRight:
		return "right"
	case KeyLeft:
		return "left"
	case KeyBack:
		return "back"
	case KeyMute:
		return "mute"
	case KeyOnOff:
		return "onoff"
	case KeyPrevious:
		return "previous"
	case KeyInput1, KeyInput2, KeyInput3, KeyInput4, KeyInput5, KeyInput6:
		return "input" + string(rune('1'+k-KeyInput1))
	}
	return "unknown"
}

// Info is the daemon identification block of a state snapshot.
type Info struct {
	Version  string `json:"version"`
	Hostname string `json:"hostname,omitempty"`
	Mock     bool   `json:"mock,omitempty"`
}

// State is a full snapshot of the controller: the two persisted records, the
// current mode, the latest sensor readings and the text on the front display.
// Snapshots are value copies handed to the API and the event bus; mutating a
// snapshot never touches the live state.
type State struct {
	Mode            Mode                 `json:"mode"`
	Settings        PersistedSettings    `json:"settings"`
	Runtime         RuntimeSettings      `json:"runtime"`
	Temps           [NumTriggers]float64 `json:"temps"` // °C per trigger sensor
	SupplyMV        int                  `json:"supply_mv"`
	TriggersEngaged [NumTriggers]bool    `json:"triggers_engaged"`
	TriggerFaults   [NumTriggers]string  `json:"trigger_faults"` // "" when healthy
	Display         []string             `json:"display,omitempty"`
	Info            Info                 `json:"info"`
}

// DeepCopy returns an independent copy of the snapshot.
func (s State) DeepCopy() State {
	next := s
	if s.Display != nil {
		next.Display = make([]string, len(s.Display))
		copy(next.Display, s.Display)
	}
	return next
}
