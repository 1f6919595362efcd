package control

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// UpdateInput edits one input's configuration. The edit is validated as a
// whole before anything is installed; deactivating the selected input or
// the last active input is refused. When the edited input is the live one,
// the current volume is dragged into the new window.
func (c *Controller) UpdateInput(ctx context.Context, id int, upd models.InputUpdate) (models.State, error) {
	if id < 0 || id >= models.NumInputs {
		return models.State{}, models.ErrNotFound(fmt.Sprintf("input %d does not exist", id+1))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}

	s := c.state.Settings
	in := &s.Inputs[id]
	if upd.Active != nil && !*upd.Active && in.Active {
		if id == int(c.state.Runtime.Input) {
			return models.State{}, models.ErrConflict(fmt.Sprintf("input %d is selected", id+1))
		}
		if s.ActiveInputs() == 1 {
			return models.State{}, models.ErrConflict("at least one input must stay active")
		}
	}
	if upd.Name != nil {
		in.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Active != nil {
		in.Active = *upd.Active
	}
	if upd.MaxVol != nil {
		in.MaxVol = *upd.MaxVol
	}
	if upd.MinVol != nil {
		in.MinVol = *upd.MinVol
	}
	if err := s.Validate(); err != nil {
		return models.State{}, models.ErrBadRequest(err.Error())
	}

	c.state.Settings = s
	if id == int(c.state.Runtime.Input) {
		v := models.ClampStep(c.state.Runtime.Volume, in.MinVol, in.MaxVol)
		if v != c.state.Runtime.Volume {
			c.setVolumeLocked(ctx, v)
		}
	}
	c.persistSettingsLocked()
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// UpdateTrigger edits one trigger's configuration. Activation sequences the
// trigger like a fresh power-up; deactivation releases the relay at once.
func (c *Controller) UpdateTrigger(ctx context.Context, id int, upd models.TriggerUpdate) (models.State, error) {
	if id < 0 || id >= models.NumTriggers {
		return models.State{}, models.ErrNotFound(fmt.Sprintf("trigger %d does not exist", id+1))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}

	s := c.state.Settings
	tr := &s.Triggers[id]
	was := tr.Active
	if upd.Active != nil {
		tr.Active = *upd.Active
	}
	if upd.Latching != nil {
		tr.Latching = *upd.Latching
	}
	if upd.Smart != nil {
		tr.Smart = *upd.Smart
	}
	if upd.OnDelay != nil {
		tr.OnDelay = *upd.OnDelay
	}
	if upd.TempLimit != nil {
		tr.TempLimit = *upd.TempLimit
	}
	if err := s.Validate(); err != nil {
		return models.State{}, models.ErrBadRequest(err.Error())
	}

	c.state.Settings = s
	if tr.Active != was {
		c.state.TriggerFaults[id] = ""
		if tr.Active {
			delay := time.Duration(tr.OnDelay) * time.Second
			c.triggers[id] = triggerRun{engageAt: c.now().Add(delay)}
		}
		c.tickTriggersLocked(ctx, c.now())
	}
	c.persistSettingsLocked()
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// UpdateSettings edits the global volume and policy knobs. A volume-step
// change cascades through every step-denominated bound first, exactly like
// the on-device edit; explicit fields that end up inconsistent are rejected.
func (c *Controller) UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}

	s := c.state.Settings
	rt := c.state.Runtime
	stepsChanged := false
	if upd.VolumeSteps != nil && *upd.VolumeSteps != s.VolumeSteps {
		s.VolumeSteps = *upd.VolumeSteps
		stepsChanged = true
		s.Revalidate(&rt)
	}
	if upd.MinAttenuation != nil {
		s.MinAttenuation = *upd.MinAttenuation
	}
	if upd.MaxAttenuation != nil {
		s.MaxAttenuation = *upd.MaxAttenuation
	}
	if upd.MaxStartVolume != nil {
		s.MaxStartVolume = *upd.MaxStartVolume
	}
	if upd.MuteLevel != nil {
		s.MuteLevel = *upd.MuteLevel
	}
	if upd.RecallSetLevel != nil {
		s.RecallSetLevel = *upd.RecallSetLevel
	}
	if upd.InactivityTimeout != nil {
		s.InactivityTimeout = *upd.InactivityTimeout
	}
	if err := s.Validate(); err != nil {
		return models.State{}, models.ErrBadRequest(err.Error())
	}

	c.state.Settings = s
	c.state.Runtime = rt
	c.refreshOutputLocked(ctx)
	c.persistSettingsLocked()
	if stepsChanged {
		c.persistRuntimeLocked()
	}
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// UpdateDisplay edits the display policy. An on-level change lands on the
// backlight immediately unless the screen saver is holding it down.
func (c *Controller) UpdateDisplay(ctx context.Context, upd models.DisplayUpdate) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}

	s := c.state.Settings
	d := &s.Display
	if upd.ScreenSaver != nil {
		d.ScreenSaver = *upd.ScreenSaver
	}
	if upd.OnLevel != nil {
		d.OnLevel = *upd.OnLevel
	}
	if upd.DimLevel != nil {
		d.DimLevel = *upd.DimLevel
	}
	if upd.Timeout != nil {
		d.Timeout = *upd.Timeout
	}
	if upd.VolumeMode != nil {
		d.VolumeMode = *upd.VolumeMode
	}
	if upd.ShowInput != nil {
		d.ShowInput = *upd.ShowInput
	}
	if upd.Temp1Mode != nil {
		d.Temp1Mode = *upd.Temp1Mode
	}
	if upd.Temp2Mode != nil {
		d.Temp2Mode = *upd.Temp2Mode
	}
	if err := s.Validate(); err != nil {
		return models.State{}, models.ErrBadRequest(err.Error())
	}

	c.state.Settings = s
	if upd.OnLevel != nil && !c.saverActive {
		c.disp.Backlight(onBacklight(d.OnLevel))
	}
	c.persistSettingsLocked()
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// SaveCustomProfile copies the active settings into the custom slot.
func (c *Controller) SaveCustomProfile(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	if err := c.store.SaveCustom(&c.state.Settings); err != nil {
		slog.Warn("control: custom save failed", "err", err)
		return models.State{}, models.ErrInternal("custom profile save failed")
	}
	slog.Info("control: custom profile saved")
	return c.state.DeepCopy(), nil
}

// LoadCustomProfile installs the custom settings slot and restarts the
// controller on it.
func (c *Controller) LoadCustomProfile(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	custom, ok, err := c.store.LoadCustom()
	if err != nil {
		slog.Warn("control: custom load failed", "err", err)
		return models.State{}, models.ErrInternal("custom profile read failed")
	}
	if !ok {
		return models.State{}, models.ErrNotFound("no custom profile saved")
	}
	c.loadProfileLocked(ctx, &custom)
	return c.state.DeepCopy(), nil
}

// FactoryReset restores both records to compiled defaults and restarts.
func (c *Controller) FactoryReset(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	c.factoryResetLocked(ctx)
	return c.state.DeepCopy(), nil
}
