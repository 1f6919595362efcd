package models

import "fmt"

// DefaultSettings returns the factory settings record: 60 volume steps over a
// 0-60 dB range, all six inputs active with full range, the stock remote
// bindings, latching standard triggers held inactive, and the standard display
// policy. Used at first boot, on version mismatch and on "load default".
func DefaultSettings() PersistedSettings {
	s := PersistedSettings{
		VolumeSteps:    60,
		MinAttenuation: 0,
		MaxAttenuation: 60,
		MaxStartVolume: 60,
		MuteLevel:      0,
		RecallSetLevel: true,
		IR: KeyBindings{
			OnOff:    IRCode{Address: 0x24, Command: 0x41D976CF},
			Up:       IRCode{Address: 0x24, Command: 0x3AEA5A5F},
			Down:     IRCode{Address: 0x24, Command: 0xE64E6057},
			Repeat:   IRCode{},
			Left:     IRCode{Address: 0x24, Command: 0x4C7A8423},
			Right:    IRCode{Address: 0x24, Command: 0xA1167E2B},
			Select:   IRCode{Address: 0x24, Command: 0x91998CA3},
			Back:     IRCode{Address: 0x24, Command: 0xE28395C7},
			Mute:     IRCode{Address: 0x24, Command: 0x41C09D23},
			Previous: IRCode{Address: 0x24, Command: 0x5A3E996B},
			Input: [NumInputs]IRCode{
				{Address: 0x24, Command: 0xC43587C7},
				{Address: 0x24, Command: 0x6F998DBF},
				{Address: 0x24, Command: 0xB9947A73},
				{Address: 0x24, Command: 0x64F8806B},
				{Address: 0x24, Command: 0x1FC09E3F},
				{Address: 0x24, Command: 0xCB24A437},
			},
		},
		InactivityTimeout: 0,
		Display: DisplaySettings{
			ScreenSaver: true,
			OnLevel:     3,
			DimLevel:    0,
			Timeout:     30,
			VolumeMode:  VolModeSteps,
			ShowInput:   true,
			Temp1Mode:   TempModeBoth,
			Temp2Mode:   TempModeBoth,
		},
		SchemaVersion: SchemaVersion,
	}
	for i := range s.Inputs {
		s.Inputs[i] = InputSettings{
			Active: true,
			Name:   fmt.Sprintf("Input %d", i+1),
			MaxVol: s.VolumeSteps,
			MinVol: 0,
		}
	}
	for i := range s.Triggers {
		s.Triggers[i] = TriggerSettings{
			Active:    false,
			Latching:  true,
			Smart:     false,
			OnDelay:   10,
			TempLimit: 60,
		}
	}
	return s
}

// DefaultRuntime returns the factory runtime record: input 1, volume 0,
// unmuted, no per-input volume memory.
func DefaultRuntime() RuntimeSettings {
	return RuntimeSettings{
		Input:         0,
		Volume:        0,
		Attenuation:   0,
		Muted:         false,
		PrevInput:     0,
		SchemaVersion: SchemaVersion,
	}
}
