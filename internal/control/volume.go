package control

import (
	"context"
	"log/slog"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// setVolumeLocked installs a volume step the caller has already validated:
// the step fields, the attenuation code and (unless muted) the hardware.
func (c *Controller) setVolumeLocked(ctx context.Context, vol uint8) {
	rt := &c.state.Runtime
	rt.Volume = vol
	rt.LastVol[rt.Input] = vol
	rt.Attenuation = stepCode(&c.state.Settings, vol)
	if rt.Muted {
		return
	}
	if err := c.hw.ApplyAttenuation(ctx, rt.Attenuation); err != nil {
		slog.Warn("control: attenuation write failed", "code", rt.Attenuation, "err", err)
	}
}

// volumeUpLocked applies one increment. No-op while muted or at the input's
// ceiling.
func (c *Controller) volumeUpLocked(ctx context.Context) bool {
	rt := &c.state.Runtime
	in := c.state.Settings.Inputs[rt.Input]
	if rt.Muted || rt.Volume >= in.MaxVol {
		return false
	}
	c.setVolumeLocked(ctx, rt.Volume+1)
	return true
}

// volumeDownLocked applies one decrement. No-op while muted or at the
// input's floor.
func (c *Controller) volumeDownLocked(ctx context.Context) bool {
	rt := &c.state.Runtime
	in := c.state.Settings.Inputs[rt.Input]
	if rt.Muted || rt.Volume <= in.MinVol {
		return false
	}
	c.setVolumeLocked(ctx, rt.Volume-1)
	return true
}

// toggleMuteLocked flips the mute flag. Muting applies the mute-level
// attenuation when one is set, otherwise the chip's hardware mute; the
// stored volume is untouched either way.
func (c *Controller) toggleMuteLocked(ctx context.Context) {
	rt := &c.state.Runtime
	s := &c.state.Settings
	if rt.Muted {
		rt.Muted = false
		if err := c.hw.SetHardwareMute(ctx, false); err != nil {
			slog.Warn("control: unmute failed", "err", err)
		}
		if err := c.hw.ApplyAttenuation(ctx, rt.Attenuation); err != nil {
			slog.Warn("control: attenuation restore failed", "err", err)
		}
		return
	}
	rt.Muted = true
	if s.MuteLevel > 0 {
		if err := c.hw.ApplyAttenuation(ctx, stepCode(s, s.MuteLevel)); err != nil {
			slog.Warn("control: mute attenuation failed", "err", err)
		}
		return
	}
	if err := c.hw.SetHardwareMute(ctx, true); err != nil {
		slog.Warn("control: mute failed", "err", err)
	}
}

// VolumeUp increments the volume by one step. Unlike the front-panel keys,
// which silently ignore moves while muted, the API reports the conflict.
func (c *Controller) VolumeUp(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	if c.state.Runtime.Muted {
		return models.State{}, models.ErrConflict("volume is muted")
	}
	c.volumeUpLocked(ctx)
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// VolumeDown decrements the volume by one step.
func (c *Controller) VolumeDown(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	if c.state.Runtime.Muted {
		return models.State{}, models.ErrConflict("volume is muted")
	}
	c.volumeDownLocked(ctx)
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// SetVolume applies an absolute step or a relative delta. An absolute step
// must lie inside the current input's window; a delta clamps to it. Volume
// moves are rejected while muted.
func (c *Controller) SetVolume(ctx context.Context, upd models.VolumeUpdate) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	if (upd.Step == nil) == (upd.Delta == nil) {
		return models.State{}, models.ErrBadRequest("exactly one of step or delta is required")
	}

	rt := &c.state.Runtime
	in := c.state.Settings.Inputs[rt.Input]
	if rt.Muted {
		return models.State{}, models.ErrConflict("volume is muted")
	}

	var vol uint8
	if upd.Step != nil {
		if *upd.Step < in.MinVol || *upd.Step > in.MaxVol {
			return models.State{}, models.ErrBadRequest("step outside the input's volume window")
		}
		vol = *upd.Step
	} else {
		v := int(rt.Volume) + *upd.Delta
		if v < int(in.MinVol) {
			v = int(in.MinVol)
		}
		if v > int(in.MaxVol) {
			v = int(in.MaxVol)
		}
		vol = uint8(v)
	}

	c.setVolumeLocked(ctx, vol)
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// ToggleMute flips the mute state.
func (c *Controller) ToggleMute(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	c.toggleMuteLocked(ctx)
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// rejectAsleepLocked guards mutating API calls: the controller accepts them
// only while awake.
func (c *Controller) rejectAsleepLocked() error {
	switch c.state.Mode {
	case models.ModeStandby, models.ModePowerLoss:
		return models.ErrAsleep(c.state.Mode)
	}
	return nil
}
