package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mezmerize-audio/preampd/internal/menu"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// invokeCommandLocked executes a selected menu leaf: most commands open an
// editor built with the live bounds, the profile commands run immediately.
// Editor commits run under the controller lock, so they mutate state and
// drive the hardware directly.
func (c *Controller) invokeCommandLocked(ctx context.Context, it menu.Item) {
	s := &c.state.Settings

	switch it.Cmd {
	case menu.CmdVolumeSteps:
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Steps",
			Min:   1,
			Max:   models.MaxVolumeSteps,
			Value: int(s.VolumeSteps),
			Commit: func(v int) error {
				c.commitVolumeStepsLocked(ctx, uint8(v))
				return nil
			},
		})

	case menu.CmdMinAttenuation:
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Min-Att",
			Unit:  "dB",
			Min:   0,
			Max:   int(s.MaxAttenuation) - 1,
			Value: int(s.MinAttenuation),
			Commit: func(v int) error {
				c.state.Settings.MinAttenuation = uint8(v)
				c.refreshOutputLocked(ctx)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdMaxAttenuation:
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Max-Att",
			Unit:  "dB",
			Min:   int(s.MinAttenuation) + 1,
			Max:   models.MaxAttenuationDB,
			Value: int(s.MaxAttenuation),
			Commit: func(v int) error {
				s := &c.state.Settings
				s.MaxAttenuation = uint8(v)
				if s.MuteLevel > s.MaxAttenuation {
					s.MuteLevel = s.MaxAttenuation
				}
				c.refreshOutputLocked(ctx)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdMaxStartVolume:
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Max-Start-Vol",
			Min:   0,
			Max:   int(s.VolumeSteps),
			Value: int(s.MaxStartVolume),
			Commit: func(v int) error {
				c.state.Settings.MaxStartVolume = uint8(v)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdMuteLevel:
		c.openEditorLocked(&menu.NumericEditor{
			Title:  "Mute-Lvl",
			Min:    0,
			Max:    int(s.MaxAttenuation),
			Value:  int(s.MuteLevel),
			Format: zeroAs("Hard Mute"),
			Commit: func(v int) error {
				c.state.Settings.MuteLevel = uint8(v)
				c.refreshOutputLocked(ctx)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdRecallLevel:
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Recall-Level",
			Options: []string{"No", "Yes"},
			Index:   boolIndex(s.RecallSetLevel),
			Commit: func(i int) error {
				c.state.Settings.RecallSetLevel = i == 1
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdInputActive:
		in := it.Arg
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Active",
			Options: []string{"Off", "On"},
			Index:   boolIndex(s.Inputs[in].Active),
			Commit: func(i int) error {
				return c.commitInputActiveLocked(in, i == 1)
			},
		})

	case menu.CmdInputName:
		in := it.Arg
		c.openEditorLocked(menu.NewNameEditor(
			fmt.Sprintf("Input %d Name", in+1), s.Inputs[in].Name,
			func(name string) error {
				if err := models.ValidateName(name); err != nil {
					return err
				}
				c.state.Settings.Inputs[in].Name = name
				c.persistSettingsLocked()
				return nil
			},
		))

	case menu.CmdInputMaxVol:
		in := it.Arg
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Max-Vol",
			Min:   0,
			Max:   int(s.VolumeSteps),
			Value: int(s.Inputs[in].MaxVol),
			Commit: func(v int) error {
				c.state.Settings.Inputs[in].MaxVol = uint8(v)
				c.commitInputBoundsLocked(ctx, in)
				return nil
			},
		})

	case menu.CmdInputMinVol:
		in := it.Arg
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Min-Vol",
			Min:   0,
			Max:   int(s.Inputs[in].MaxVol),
			Value: int(s.Inputs[in].MinVol),
			Commit: func(v int) error {
				c.state.Settings.Inputs[in].MinVol = uint8(v)
				c.commitInputBoundsLocked(ctx, in)
				return nil
			},
		})

	case menu.CmdIRLearn:
		k := models.Key(it.Arg)
		var orig models.IRCode
		if slot := s.IR.ByKey(k); slot != nil {
			orig = *slot
		}
		c.openEditorLocked(&menu.IREditor{
			Title: it.Label, Key: k, Original: orig,
			Commit: func(code models.IRCode) error {
				if slot := c.state.Settings.IR.ByKey(k); slot != nil {
					*slot = code
				}
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdTriggerActive:
		t := it.Arg
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Active",
			Options: []string{"Off", "On"},
			Index:   boolIndex(s.Triggers[t].Active),
			Commit: func(i int) error {
				c.commitTriggerActiveLocked(ctx, t, i == 1)
				return nil
			},
		})

	case menu.CmdTriggerType:
		t := it.Arg
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Type",
			Options: []string{"Standard", "SmartON"},
			Index:   boolIndex(s.Triggers[t].Smart),
			Commit: func(i int) error {
				c.state.Settings.Triggers[t].Smart = i == 1
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdTriggerMode:
		t := it.Arg
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Mode",
			Options: []string{"Moment.", "Latching"},
			Index:   boolIndex(s.Triggers[t].Latching),
			Commit: func(i int) error {
				c.state.Settings.Triggers[t].Latching = i == 1
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdTriggerDelay:
		t := it.Arg
		c.openEditorLocked(&menu.NumericEditor{
			Title: "On-Delay",
			Unit:  "Secs.",
			Min:   0,
			Max:   models.MaxOnDelaySec,
			Value: int(s.Triggers[t].OnDelay),
			Commit: func(v int) error {
				c.state.Settings.Triggers[t].OnDelay = uint8(v)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdTriggerTemp:
		t := it.Arg
		c.openEditorLocked(&menu.NumericEditor{
			Title:  "Temp",
			Unit:   "Deg C",
			Min:    0,
			Max:    models.MaxTempLimitC,
			Value:  int(s.Triggers[t].TempLimit),
			Format: zeroAs("Off"),
			Commit: func(v int) error {
				c.state.Settings.Triggers[t].TempLimit = uint8(v)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdInactivityTimer:
		c.openEditorLocked(&menu.NumericEditor{
			Title:  "Inactivity-Timer",
			Unit:   "Hours",
			Min:    0,
			Max:    models.MaxInactivityHrs,
			Value:  int(s.InactivityTimeout),
			Format: zeroAs("Off"),
			Commit: func(v int) error {
				c.state.Settings.InactivityTimeout = uint8(v)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplaySaver:
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Saver",
			Options: []string{"Off", "On"},
			Index:   boolIndex(s.Display.ScreenSaver),
			Commit: func(i int) error {
				c.state.Settings.Display.ScreenSaver = i == 1
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplayOnLevel:
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "On-Level",
			Options: []string{"25%", "50%", "75%", "100%"},
			Index:   int(s.Display.OnLevel),
			Commit: func(i int) error {
				c.state.Settings.Display.OnLevel = uint8(i)
				c.disp.Backlight(onBacklight(uint8(i)))
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplayDimLevel:
		c.openEditorLocked(&menu.NumericEditor{
			Title:  "Dim-Level",
			Min:    0,
			Max:    models.MaxDimLevel,
			Value:  int(s.Display.DimLevel),
			Format: zeroAs("Display Off"),
			Commit: func(v int) error {
				c.state.Settings.Display.DimLevel = uint8(v)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplayTimeout:
		c.openEditorLocked(&menu.NumericEditor{
			Title: "Timeout",
			Unit:  "Secs.",
			Min:   1,
			Max:   models.MaxDisplayTimeout,
			Value: int(s.Display.Timeout),
			Commit: func(v int) error {
				c.state.Settings.Display.Timeout = uint8(v)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplayVolume:
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Volume",
			Options: []string{"Hide", "Steps", "-dB"},
			Index:   int(s.Display.VolumeMode),
			Commit: func(i int) error {
				c.state.Settings.Display.VolumeMode = uint8(i)
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplayInput:
		c.openEditorLocked(&menu.OptionEditor{
			Title:   "Input",
			Options: []string{"Hide", "Show"},
			Index:   boolIndex(s.Display.ShowInput),
			Commit: func(i int) error {
				c.state.Settings.Display.ShowInput = i == 1
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdDisplayTemp1, menu.CmdDisplayTemp2:
		ch := 0
		mode := s.Display.Temp1Mode
		if it.Cmd == menu.CmdDisplayTemp2 {
			ch = 1
			mode = s.Display.Temp2Mode
		}
		c.openEditorLocked(&menu.OptionEditor{
			Title:   it.Label,
			Options: []string{"None", "Degrees", "Bar", "Both"},
			Index:   int(mode),
			Commit: func(i int) error {
				if ch == 0 {
					c.state.Settings.Display.Temp1Mode = uint8(i)
				} else {
					c.state.Settings.Display.Temp2Mode = uint8(i)
				}
				c.persistSettingsLocked()
				return nil
			},
		})

	case menu.CmdSaveCustom:
		lines := []string{"settings saved"}
		if err := c.store.SaveCustom(&c.state.Settings); err != nil {
			slog.Warn("control: custom save failed", "err", err)
			lines = []string{"save failed"}
		}
		c.openEditorLocked(&menu.InfoEditor{Title: "Save Custom", Lines: lines})

	case menu.CmdLoadCustom:
		custom, ok, err := c.store.LoadCustom()
		if err != nil || !ok {
			c.openEditorLocked(&menu.InfoEditor{
				Title: "Load Custom", Lines: []string{"no saved settings"},
			})
			return
		}
		c.loadProfileLocked(ctx, &custom)

	case menu.CmdLoadDefault:
		c.factoryResetLocked(ctx)

	case menu.CmdAbout:
		c.openEditorLocked(&menu.InfoEditor{Title: "About", Lines: c.aboutLinesLocked()})
	}
}

// openEditorLocked installs an editor and enters the command mode.
func (c *Controller) openEditorLocked(e menu.Editor) {
	c.editor = e
	c.state.Mode = models.ModeMenuCommand
}

// refreshOutputLocked recomputes the attenuator code for the current volume
// and pushes whichever code the mute state calls for. Called after edits to
// the attenuation profile.
func (c *Controller) refreshOutputLocked(ctx context.Context) {
	s := &c.state.Settings
	rt := &c.state.Runtime
	rt.Attenuation = stepCode(s, rt.Volume)

	var err error
	switch {
	case !rt.Muted:
		err = c.hw.ApplyAttenuation(ctx, rt.Attenuation)
	case s.MuteLevel > 0:
		err = c.hw.ApplyAttenuation(ctx, stepCode(s, s.MuteLevel))
	default:
		// Hardware mute is engaged; the new code lands on unmute.
	}
	if err != nil {
		slog.Warn("control: attenuator update failed", "err", err)
	}
}

// commitVolumeStepsLocked rescales the volume range. Everything expressed in
// steps is revalidated against the new count and both records are persisted,
// since the runtime volume may have been clamped.
func (c *Controller) commitVolumeStepsLocked(ctx context.Context, steps uint8) {
	s := &c.state.Settings
	s.VolumeSteps = steps
	s.Revalidate(&c.state.Runtime)
	c.refreshOutputLocked(ctx)
	c.persistSettingsLocked()
	c.persistRuntimeLocked()
}

func (c *Controller) commitInputActiveLocked(in int, active bool) error {
	s := &c.state.Settings
	if s.Inputs[in].Active == active {
		return nil
	}
	if !active {
		if in == int(c.state.Runtime.Input) {
			return fmt.Errorf("input is selected")
		}
		if s.ActiveInputs() == 1 {
			return fmt.Errorf("last active input")
		}
	}
	s.Inputs[in].Active = active
	c.persistSettingsLocked()
	return nil
}

// commitInputBoundsLocked restores the MinVol<=MaxVol invariant after a
// bound edit and, when the edited input is live, drags the current volume
// into the new window.
func (c *Controller) commitInputBoundsLocked(ctx context.Context, in int) {
	s := &c.state.Settings
	ip := &s.Inputs[in]
	if ip.MinVol > ip.MaxVol {
		ip.MinVol = ip.MaxVol
	}
	if in == int(c.state.Runtime.Input) {
		v := models.ClampStep(c.state.Runtime.Volume, ip.MinVol, ip.MaxVol)
		if v != c.state.Runtime.Volume {
			c.setVolumeLocked(ctx, v)
		}
	}
	c.persistSettingsLocked()
}

// commitTriggerActiveLocked flips a trigger and applies the change at once:
// a newly activated trigger sequences like a fresh power-up, a deactivated
// one is released on the spot.
func (c *Controller) commitTriggerActiveLocked(ctx context.Context, t int, active bool) {
	s := &c.state.Settings
	if s.Triggers[t].Active == active {
		return
	}
	s.Triggers[t].Active = active
	c.state.TriggerFaults[t] = ""
	if active {
		delay := time.Duration(s.Triggers[t].OnDelay) * time.Second
		c.triggers[t] = triggerRun{engageAt: c.now().Add(delay)}
	}
	c.tickTriggersLocked(ctx, c.now())
	c.persistSettingsLocked()
}

// loadProfileLocked installs a settings record as the active one and
// restarts. The runtime record is flushed alongside so the restart resumes
// from the current volume and input, revalidated against the new settings.
func (c *Controller) loadProfileLocked(ctx context.Context, s *models.PersistedSettings) {
	if err := c.store.SaveSettings(s); err != nil {
		slog.Warn("control: profile install failed", "err", err)
	}
	c.persistRuntimeLocked()
	c.reinitializeLocked(ctx)
}

// factoryResetLocked persists defaults for both records and restarts.
func (c *Controller) factoryResetLocked(ctx context.Context) {
	slog.Info("control: factory reset")
	s := models.DefaultSettings()
	r := models.DefaultRuntime()
	if err := c.store.SaveSettings(&s); err != nil {
		slog.Warn("control: settings reset persist failed", "err", err)
	}
	if err := c.store.SaveRuntime(&r); err != nil {
		slog.Warn("control: runtime reset persist failed", "err", err)
	}
	c.reinitializeLocked(ctx)
}

func (c *Controller) aboutLinesLocked() []string {
	driver := "hardware"
	if !c.hw.IsReal() {
		driver = "mock"
	}
	return []string{
		"preampd " + c.state.Info.Version,
		c.state.Info.Hostname,
		driver + " driver",
	}
}

// zeroAs renders a zero value with a label instead of the number, for
// settings where zero means disabled.
func zeroAs(label string) func(int) string {
	return func(v int) string {
		if v == 0 {
			return label
		}
		return fmt.Sprintf("%d", v)
	}
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
