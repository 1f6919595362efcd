package config

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// The records serialize little-endian with fields laid out exactly in
// struct order. Input names occupy a fixed space-padded field so every
// record has one compiled size.
const (
	irCodeSize        = 6 // u16 address + u32 command
	inputRecordSize   = 1 + models.MaxNameLen + 2
	triggerRecordSize = 5
	displayRecordSize = 8

	// SettingsRecordSize covers five level bytes, the recall flag,
	// sixteen IR codes, six inputs, two triggers, the inactivity
	// timeout, the display block and the version tag.
	SettingsRecordSize = 6 + 16*irCodeSize + models.NumInputs*inputRecordSize +
		models.NumTriggers*triggerRecordSize + 1 + displayRecordSize + 2

	// RuntimeRecordSize covers input, volume, attenuation code, mute
	// flag, the per-input volume memory, the previous input and the
	// version tag.
	RuntimeRecordSize = 4 + models.NumInputs + 1 + 2
)

// Record offsets in the storage medium: the settings record at the
// origin, one spare byte, then the runtime record, then the user-saved
// custom copy.
const (
	SettingsOffset = 0
	RuntimeOffset  = SettingsRecordSize + 1
	CustomOffset   = SettingsRecordSize + RuntimeRecordSize + 1
)

// cursor walks a fixed-size record buffer. Writers allocate the full
// record up front, so the put/get pairs never bounds-check; the decode
// entry points verify the buffer length once.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) putU8(v uint8) {
	c.buf[c.off] = v
	c.off++
}

func (c *cursor) putBool(v bool) {
	var b byte
	if v {
		b = 1
	}
	c.putU8(b)
}

func (c *cursor) putU16(v uint16) {
	binary.LittleEndian.PutUint16(c.buf[c.off:], v)
	c.off += 2
}

func (c *cursor) putU32(v uint32) {
	binary.LittleEndian.PutUint32(c.buf[c.off:], v)
	c.off += 4
}

func (c *cursor) putName(s string) {
	for i := 0; i < models.MaxNameLen; i++ {
		if i < len(s) {
			c.buf[c.off+i] = s[i]
		} else {
			c.buf[c.off+i] = ' '
		}
	}
	c.off += models.MaxNameLen
}

func (c *cursor) putIR(code models.IRCode) {
	c.putU16(code.Address)
	c.putU32(code.Command)
}

func (c *cursor) getU8() uint8 {
	v := c.buf[c.off]
	c.off++
	return v
}

func (c *cursor) getBool() bool {
	return c.getU8() != 0
}

func (c *cursor) getU16() uint16 {
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v
}

func (c *cursor) getU32() uint32 {
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v
}

func (c *cursor) getName() string {
	s := strings.TrimRight(string(c.buf[c.off:c.off+models.MaxNameLen]), " ")
	c.off += models.MaxNameLen
	return s
}

func (c *cursor) getIR() models.IRCode {
	addr := c.getU16()
	cmd := c.getU32()
	return models.IRCode{Address: addr, Command: cmd}
}

// EncodeSettings serializes a settings record into its fixed wire form.
func EncodeSettings(s *models.PersistedSettings) []byte {
	c := &cursor{buf: make([]byte, SettingsRecordSize)}
	c.putU8(s.VolumeSteps)
	c.putU8(s.MinAttenuation)
	c.putU8(s.MaxAttenuation)
	c.putU8(s.MaxStartVolume)
	c.putU8(s.MuteLevel)
	c.putBool(s.RecallSetLevel)
	c.putIR(s.IR.OnOff)
	c.putIR(s.IR.Up)
	c.putIR(s.IR.Down)
	c.putIR(s.IR.Repeat)
	c.putIR(s.IR.Left)
	c.putIR(s.IR.Right)
	c.putIR(s.IR.Select)
	c.putIR(s.IR.Back)
	c.putIR(s.IR.Mute)
	c.putIR(s.IR.Previous)
	for _, code := range s.IR.Input {
		c.putIR(code)
	}
	for _, in := range s.Inputs {
		c.putBool(in.Active)
		c.putName(in.Name)
		c.putU8(in.MaxVol)
		c.putU8(in.MinVol)
	}
	for _, tr := range s.Triggers {
		c.putBool(tr.Active)
		c.putBool(tr.Latching)
		c.putBool(tr.Smart)
		c.putU8(tr.OnDelay)
		c.putU8(tr.TempLimit)
	}
	c.putU8(s.InactivityTimeout)
	c.putBool(s.Display.ScreenSaver)
	c.putU8(s.Display.OnLevel)
	c.putU8(s.Display.DimLevel)
	c.putU8(s.Display.Timeout)
	c.putU8(s.Display.VolumeMode)
	c.putBool(s.Display.ShowInput)
	c.putU8(s.Display.Temp1Mode)
	c.putU8(s.Display.Temp2Mode)
	c.putU16(s.SchemaVersion)
	return c.buf
}

// DecodeSettings parses a settings record.
func DecodeSettings(data []byte) (models.PersistedSettings, error) {
	if len(data) < SettingsRecordSize {
		return models.PersistedSettings{}, fmt.Errorf("config: settings record is %d bytes, need %d", len(data), SettingsRecordSize)
	}
	c := &cursor{buf: data}
	var s models.PersistedSettings
	s.VolumeSteps = c.getU8()
	s.MinAttenuation = c.getU8()
	s.MaxAttenuation = c.getU8()
	s.MaxStartVolume = c.getU8()
	s.MuteLevel = c.getU8()
	s.RecallSetLevel = c.getBool()
	s.IR.OnOff = c.getIR()
	s.IR.Up = c.getIR()
	s.IR.Down = c.getIR()
	s.IR.Repeat = c.getIR()
	s.IR.Left = c.getIR()
	s.IR.Right = c.getIR()
	s.IR.Select = c.getIR()
	s.IR.Back = c.getIR()
	s.IR.Mute = c.getIR()
	s.IR.Previous = c.getIR()
	for i := range s.IR.Input {
		s.IR.Input[i] = c.getIR()
	}
	for i := range s.Inputs {
		s.Inputs[i].Active = c.getBool()
		s.Inputs[i].Name = c.getName()
		s.Inputs[i].MaxVol = c.getU8()
		s.Inputs[i].MinVol = c.getU8()
	}
	for i := range s.Triggers {
		s.Triggers[i].Active = c.getBool()
		s.Triggers[i].Latching = c.getBool()
		s.Triggers[i].Smart = c.getBool()
		s.Triggers[i].OnDelay = c.getU8()
		s.Triggers[i].TempLimit = c.getU8()
	}
	s.InactivityTimeout = c.getU8()
	s.Display.ScreenSaver = c.getBool()
	s.Display.OnLevel = c.getU8()
	s.Display.DimLevel = c.getU8()
	s.Display.Timeout = c.getU8()
	s.Display.VolumeMode = c.getU8()
	s.Display.ShowInput = c.getBool()
	s.Display.Temp1Mode = c.getU8()
	s.Display.Temp2Mode = c.getU8()
	s.SchemaVersion = c.getU16()
	return s, nil
}

// EncodeRuntime serializes a runtime record into its fixed wire form.
func EncodeRuntime(r *models.RuntimeSettings) []byte {
	c := &cursor{buf: make([]byte, RuntimeRecordSize)}
	c.putU8(r.Input)
	c.putU8(r.Volume)
	c.putU8(r.Attenuation)
	c.putBool(r.Muted)
	for _, v := range r.LastVol {
		c.putU8(v)
	}
	c.putU8(r.PrevInput)
	c.putU16(r.SchemaVersion)
	return c.buf
}

// DecodeRuntime parses a runtime record.
func DecodeRuntime(data []byte) (models.RuntimeSettings, error) {
	if len(data) < RuntimeRecordSize {
		return models.RuntimeSettings{}, fmt.Errorf("config: runtime record is %d bytes, need %d", len(data), RuntimeRecordSize)
	}
	c := &cursor{buf: data}
	var r models.RuntimeSettings
	r.Input = c.getU8()
	r.Volume = c.getU8()
	r.Attenuation = c.getU8()
	r.Muted = c.getBool()
	for i := range r.LastVol {
		r.LastVol[i] = c.getU8()
	}
	r.PrevInput = c.getU8()
	r.SchemaVersion = c.getU16()
	return r, nil
}
