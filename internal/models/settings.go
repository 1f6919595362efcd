// Package models defines the data structures for the preamp controller.
// The persisted records mirror the device's non-volatile layout; JSON tags
// serve the HTTP control surface.
package models

import (
	"fmt"
	"strings"
)

// Device geometry and setting bounds.
const (
	NumInputs   = 6
	NumTriggers = 2

	MaxNameLen        = 10
	MaxVolumeSteps    = 179
	MaxAttenuationDB  = 90 // hard ceiling of the attenuator profile, in dB
	MaxOnDelaySec     = 90
	MaxTempLimitC     = 90
	MaxInactivityHrs  = 24
	MaxOnLevel        = 3
	MaxDimLevel       = 32
	MaxDisplayTimeout = 90
)

// SchemaVersion is the compiled version tag for both persisted records.
// A loaded record whose trailing tag differs is invalid and forces a full
// reset to defaults.
const SchemaVersion uint16 = 2

// IRCode is one decoded remote-control code: a protocol address plus a
// command hash, as delivered by the panel's IR decoder.
type IRCode struct {
	Address uint16 `json:"address"`
	Command uint32 `json:"command"`
}

// IsZero reports whether the code is unbound.
func (c IRCode) IsZero() bool { return c.Address == 0 && c.Command == 0 }

// KeyBindings maps every logical front-panel key to a remote-control code.
// Field order is also the serialization order of the persisted record.
type KeyBindings struct {
	OnOff    IRCode            `json:"onoff"`
	Up       IRCode            `json:"up"`
	Down     IRCode            `json:"down"`
	Repeat   IRCode            `json:"repeat"`
	Left     IRCode            `json:"left"`
	Right    IRCode            `json:"right"`
	Select   IRCode            `json:"select"`
	Back     IRCode            `json:"back"`
	Mute     IRCode            `json:"mute"`
	Previous IRCode            `json:"previous"`
	Input    [NumInputs]IRCode `json:"input"`
}

// Lookup resolves a received code to a logical key. Repeat is matched last so
// an unbound (zeroed) Repeat slot cannot shadow real bindings. KeyNone is
// returned for unrecognized codes.
func (b *KeyBindings) Lookup(c IRCode) Key {
	switch {
	case c == b.Up:
		return KeyUp
	case c == b.Down:
		return KeyDown
	case c == b.Left:
		return KeyLeft
	case c == b.Right:
		return KeyRight
	case c == b.Select:
		return KeySelect
	case c == b.Back:
		return KeyBack
	case c == b.Mute:
		return KeyMute
	case c == b.OnOff:
		return KeyOnOff
	case c == b.Previous:
		return KeyPrevious
	}
	for i, in := range b.Input {
		if c == in {
			return KeyInput1 + Key(i)
		}
	}
	if c == b.Repeat {
		return KeyRepeat
	}
	return KeyNone
}

// ByKey returns a pointer to the binding slot for a learnable key, or nil.
func (b *KeyBindings) ByKey(k Key) *IRCode {
	switch k {
	case KeyOnOff:
		return &b.OnOff
	case KeyUp:
		return &b.Up
	case KeyDown:
		return &b.Down
	case KeyRepeat:
		return &b.Repeat
	case KeyLeft:
		return &b.Left
	case KeyRight:
		return &b.Right
	case KeySelect:
		return &b.Select
	case KeyBack:
		return &b.Back
	case KeyMute:
		return &b.Mute
	case KeyPrevious:
		return &b.Previous
	case KeyInput1, KeyInput2, KeyInput3, KeyInput4, KeyInput5, KeyInput6:
		return &b.Input[k-KeyInput1]
	}
	return nil
}

// InputSettings configures one of the six relay-selected inputs.
type InputSettings struct {
	Active bool   `json:"active"`
	Name   string `json:"name"` // trimmed in memory, space-padded on the wire
	MaxVol uint8  `json:"max_vol"`
	MinVol uint8  `json:"min_vol"`
}

// TriggerSettings configures one amplifier trigger relay.
type TriggerSettings struct {
	Active    bool  `json:"active"`
	Latching  bool  `json:"latching"`   // false = momentary pulse
	Smart     bool  `json:"smart"`      // temperature-gated engagement
	OnDelay   uint8 `json:"on_delay"`   // seconds before engaging after power-up
	TempLimit uint8 `json:"temp_limit"` // °C; 0 disables the interlock
}

// Volume display modes.
const (
	VolModeHide uint8 = iota
	VolModeSteps
	VolModeDB
)

// Temperature display modes.
const (
	TempModeNone uint8 = iota
	TempModeDegrees
	TempModeBar
	TempModeBoth
)

// DisplaySettings holds the front-display policy. Only the policy lives here;
// glyph rendering belongs to the display collaborator.
type DisplaySettings struct {
	ScreenSaver bool  `json:"screen_saver"`
	OnLevel     uint8 `json:"on_level"`    // 0..3 → 25..100% backlight
	DimLevel    uint8 `json:"dim_level"`   // 0..32; 0 powers the display off when saving
	Timeout     uint8 `json:"timeout"`     // seconds of inactivity before saving
	VolumeMode  uint8 `json:"volume_mode"` // VolModeHide | VolModeSteps | VolModeDB
	ShowInput   bool  `json:"show_input"`
	Temp1Mode   uint8 `json:"temp1_mode"` // TempMode*
	Temp2Mode   uint8 `json:"temp2_mode"`
}

// PersistedSettings is the versioned configuration record. It is loaded at
// boot, mutated field-by-field through menu/API edits (each edit persisted
// immediately) and regenerated wholesale from defaults on a version mismatch.
type PersistedSettings struct {
	VolumeSteps       uint8                        `json:"volume_steps"`
	MinAttenuation    uint8                        `json:"min_attenuation"` // dB
	MaxAttenuation    uint8                        `json:"max_attenuation"` // dB
	MaxStartVolume    uint8                        `json:"max_start_volume"`
	MuteLevel         uint8                        `json:"mute_level"` // step; 0 selects hardware mute
	RecallSetLevel    bool                         `json:"recall_set_level"`
	IR                KeyBindings                  `json:"ir"`
	Inputs            [NumInputs]InputSettings     `json:"inputs"`
	Triggers          [NumTriggers]TriggerSettings `json:"triggers"`
	InactivityTimeout uint8                        `json:"inactivity_timeout"` // hours; 0 disables
	Display           DisplaySettings              `json:"display"`
	SchemaVersion     uint16                       `json:"schema_version"`
}

// RuntimeSettings is the versioned operational record. It changes on every
// volume/input action but is persisted only on power loss, standby entry and
// schema resets, to respect the storage medium's write-cycle budget.
type RuntimeSettings struct {
	Input         uint8            `json:"input"`
	Volume        uint8            `json:"volume"`
	Attenuation   uint8            `json:"attenuation"` // half-dB code
	Muted         bool             `json:"muted"`
	LastVol       [NumInputs]uint8 `json:"last_vol"`
	PrevInput     uint8            `json:"prev_input"`
	SchemaVersion uint16           `json:"schema_version"`
}

// Valid reports whether the record's version tag matches the compiled schema.
func (s *PersistedSettings) Valid() bool { return s.SchemaVersion == SchemaVersion }

// Valid reports whether the record's version tag matches the compiled schema.
func (r *RuntimeSettings) Valid() bool { return r.SchemaVersion == SchemaVersion }

// ActiveInputs returns the number of selectable inputs.
func (s *PersistedSettings) ActiveInputs() int {
	n := 0
	for _, in := range s.Inputs {
		if in.Active {
			n++
		}
	}
	return n
}

// ClampStep clamps v into [lo, hi].
func ClampStep(v, lo, hi uint8) uint8 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Revalidate clamps every field that depends on VolumeSteps. Called after the
// step count changes so input bounds, the start-volume cap and the live volume
// stay representable.
func (s *PersistedSettings) Revalidate(r *RuntimeSettings) {
	for i := range s.Inputs {
		if s.Inputs[i].MaxVol > s.VolumeSteps {
			s.Inputs[i].MaxVol = s.VolumeSteps
		}
		if s.Inputs[i].MinVol > s.Inputs[i].MaxVol {
			s.Inputs[i].MinVol = s.Inputs[i].MaxVol
		}
	}
	if s.MaxStartVolume > s.VolumeSteps {
		s.MaxStartVolume = s.VolumeSteps
	}
	if r.Volume > s.VolumeSteps {
		r.Volume = s.VolumeSteps
	}
}

// ValidateName checks an input name: at most MaxNameLen characters of
// letters, digits and spaces, and not blank.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("input name must not be blank")
	}
	if len(trimmed) > MaxNameLen {
		return fmt.Errorf("input name exceeds %d characters", MaxNameLen)
	}
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == ' ':
		default:
			return fmt.Errorf("input name has unsupported character %q", r)
		}
	}
	return nil
}

// Validate checks the cross-field invariants of a settings record. It is used
// by the API before accepting an edited record; the menu editors keep the
// invariants by construction.
func (s *PersistedSettings) Validate() error {
	if s.VolumeSteps < 1 || s.VolumeSteps > MaxVolumeSteps {
		return fmt.Errorf("volume_steps %d out of range 1..%d", s.VolumeSteps, MaxVolumeSteps)
	}
	if s.MinAttenuation >= s.MaxAttenuation {
		return fmt.Errorf("min_attenuation %d must be below max_attenuation %d", s.MinAttenuation, s.MaxAttenuation)
	}
	if s.MaxAttenuation > MaxAttenuationDB {
		return fmt.Errorf("max_attenuation %d exceeds %d dB", s.MaxAttenuation, MaxAttenuationDB)
	}
	if s.MaxStartVolume > s.VolumeSteps {
		return fmt.Errorf("max_start_volume %d exceeds volume_steps %d", s.MaxStartVolume, s.VolumeSteps)
	}
	if s.MuteLevel > s.MaxAttenuation {
		return fmt.Errorf("mute_level %d exceeds max_attenuation %d", s.MuteLevel, s.MaxAttenuation)
	}
	if s.ActiveInputs() == 0 {
		return fmt.Errorf("at least one input must be active")
	}
	for i, in := range s.Inputs {
		if err := ValidateName(in.Name); err != nil {
			return fmt.Errorf("input %d: %w", i+1, err)
		}
		if in.MaxVol > s.VolumeSteps {
			return fmt.Errorf("input %d: max_vol %d exceeds volume_steps %d", i+1, in.MaxVol, s.VolumeSteps)
		}
		if in.MinVol > in.MaxVol {
			return fmt.Errorf("input %d: min_vol %d exceeds max_vol %d", i+1, in.MinVol, in.MaxVol)
		}
	}
	for i, tr := range s.Triggers {
		if tr.OnDelay > MaxOnDelaySec {
			return fmt.Errorf("trigger %d: on_delay %d exceeds %d s", i+1, tr.OnDelay, MaxOnDelaySec)
		}
		if tr.TempLimit > MaxTempLimitC {
			return fmt.Errorf("trigger %d: temp_limit %d exceeds %d °C", i+1, tr.TempLimit, MaxTempLimitC)
		}
	}
	if s.InactivityTimeout > MaxInactivityHrs {
		return fmt.Errorf("inactivity_timeout %d exceeds %d h", s.InactivityTimeout, MaxInactivityHrs)
	}
	d := s.Display
	if d.OnLevel > MaxOnLevel {
		return fmt.Errorf("display on_level %d exceeds %d", d.OnLevel, MaxOnLevel)
	}
	if d.DimLevel > MaxDimLevel {
		return fmt.Errorf("display dim_level %d exceeds %d", d.DimLevel, MaxDimLevel)
	}
	if d.Timeout > MaxDisplayTimeout {
		return fmt.Errorf("display timeout %d exceeds %d s", d.Timeout, MaxDisplayTimeout)
	}
	if d.VolumeMode > VolModeDB {
		return fmt.Errorf("display volume_mode %d unknown", d.VolumeMode)
	}
	if d.Temp1Mode > TempModeBoth || d.Temp2Mode > TempModeBoth {
		return fmt.Errorf("display temperature mode unknown")
	}
	return nil
}
