package control

import (
	"context"
	"log/slog"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// initializeLocked is the Initializing state: load and validate both records,
// apply the boot volume policy, bring up the hardware and enter Normal mode.
// Standby wake, power-loss recovery and profile loads all come back through
// here; it is the only way into Normal.
func (c *Controller) initializeLocked(ctx context.Context) error {
	c.state.Mode = models.ModeInitializing
	c.session = nil
	c.editor = nil

	settings, sok, serr := c.store.LoadSettings()
	runtime, rok, rerr := c.store.LoadRuntime()
	if serr != nil || rerr != nil {
		// A medium read failure is not a version mismatch: run on
		// defaults without overwriting a possibly intact record.
		slog.Error("control: record load failed, running on defaults",
			"settings_err", serr, "runtime_err", rerr)
		settings, runtime = models.DefaultSettings(), models.DefaultRuntime()
	} else if !sok || !rok {
		// Version mismatch or corruption: full reset, never partial
		// repair. Both records are regenerated and persisted.
		slog.Warn("control: stored records invalid, resetting to defaults",
			"settings_ok", sok, "runtime_ok", rok)
		settings, runtime = models.DefaultSettings(), models.DefaultRuntime()
		if err := c.store.SaveSettings(&settings); err != nil {
			slog.Warn("control: settings reset persist failed", "err", err)
		}
		if err := c.store.SaveRuntime(&runtime); err != nil {
			slog.Warn("control: runtime reset persist failed", "err", err)
		}
	}

	// The persisted input can be stale after a profile load; fall back to
	// the first active input.
	in := int(runtime.Input)
	if !settings.Inputs[in].Active {
		in = firstActiveInput(&settings)
		runtime.Input = uint8(in)
	}

	vol := runtime.Volume
	if settings.RecallSetLevel {
		vol = runtime.LastVol[in]
	}
	vol = models.ClampStep(vol, settings.Inputs[in].MinVol, settings.Inputs[in].MaxVol)
	if vol > settings.MaxStartVolume {
		vol = settings.MaxStartVolume
	}
	runtime.Volume = vol
	runtime.Attenuation = stepCode(&settings, vol)
	runtime.Muted = false

	c.state.Settings = settings
	c.state.Runtime = runtime
	c.state.TriggerFaults = [models.NumTriggers]string{}

	// Bring the signal path up muted, then release.
	if err := c.hw.SetHardwareMute(ctx, true); err != nil {
		slog.Warn("control: mute failed during boot", "err", err)
	}
	if err := c.hw.SelectInput(ctx, in); err != nil {
		slog.Warn("control: input select failed during boot", "input", in, "err", err)
	}
	if err := c.hw.ApplyAttenuation(ctx, runtime.Attenuation); err != nil {
		slog.Warn("control: attenuation failed during boot", "err", err)
	}
	if err := c.hw.SetHardwareMute(ctx, false); err != nil {
		slog.Warn("control: unmute failed during boot", "err", err)
	}

	now := c.now()
	c.lastActivity = now
	c.saverActive = false
	c.shutdown = false
	c.disp.Power(true)
	c.disp.Backlight(onBacklight(settings.Display.OnLevel))

	c.armTriggersLocked(now)
	c.state.Mode = models.ModeNormal
	c.sampleTempsLocked(ctx)
	c.tickTriggersLocked(ctx, now)

	slog.Info("control: initialized",
		"input", in, "volume", vol, "mode", c.state.Mode.String())

	c.renderLocked()
	c.publishLocked()
	return nil
}

// reinitializeLocked re-enters the Initializing state. Used for every
// restart-like transition.
func (c *Controller) reinitializeLocked(ctx context.Context) {
	if err := c.initializeLocked(ctx); err != nil {
		slog.Error("control: reinitialize failed", "err", err)
	}
}

// firstActiveInput returns the lowest-numbered active input. The settings
// invariants guarantee one exists.
func firstActiveInput(s *models.PersistedSettings) int {
	for i := range s.Inputs {
		if s.Inputs[i].Active {
			return i
		}
	}
	return 0
}
