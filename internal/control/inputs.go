package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// switchInputLocked moves the signal path to an active target input: record
// the previous input, mute around the relay change, recall or carry the
// volume clamped into the new input's window. The logical mute flag is
// preserved across the switch.
func (c *Controller) switchInputLocked(ctx context.Context, target int) {
	rt := &c.state.Runtime
	s := &c.state.Settings
	if int(rt.Input) == target {
		return
	}

	rt.PrevInput = rt.Input
	rt.Input = uint8(target)

	vol := rt.Volume
	if s.RecallSetLevel {
		vol = rt.LastVol[target]
	}
	in := s.Inputs[target]
	vol = models.ClampStep(vol, in.MinVol, in.MaxVol)
	rt.Volume = vol
	rt.Attenuation = stepCode(s, vol)

	// Hold the chip muted while the relay moves, then restore whichever
	// output state applies.
	if err := c.hw.SetHardwareMute(ctx, true); err != nil {
		slog.Warn("control: mute failed during input switch", "err", err)
	}
	if err := c.hw.SelectInput(ctx, target); err != nil {
		slog.Warn("control: input relay failed", "input", target, "err", err)
	}
	switch {
	case !rt.Muted:
		if err := c.hw.ApplyAttenuation(ctx, rt.Attenuation); err != nil {
			slog.Warn("control: attenuation failed after input switch", "err", err)
		}
		if err := c.hw.SetHardwareMute(ctx, false); err != nil {
			slog.Warn("control: unmute failed after input switch", "err", err)
		}
	case s.MuteLevel > 0:
		if err := c.hw.ApplyAttenuation(ctx, stepCode(s, s.MuteLevel)); err != nil {
			slog.Warn("control: mute attenuation failed after input switch", "err", err)
		}
		if err := c.hw.SetHardwareMute(ctx, false); err != nil {
			slog.Warn("control: unmute failed after input switch", "err", err)
		}
	default:
		// Hardware mute stays engaged.
	}

	slog.Info("control: input selected",
		"input", target, "name", in.Name, "volume", vol)
}

// stepActiveInput returns the next active input in the given direction,
// wrapping over the six positions. Returns the current input when no other
// input is active.
func stepActiveInput(s *models.PersistedSettings, from int, dir int) int {
	next := from
	for i := 0; i < models.NumInputs; i++ {
		next = (next + dir + models.NumInputs) % models.NumInputs
		if s.Inputs[next].Active {
			return next
		}
	}
	return from
}

// nextInputLocked switches to the next active input.
func (c *Controller) nextInputLocked(ctx context.Context) {
	c.switchInputLocked(ctx, stepActiveInput(&c.state.Settings, int(c.state.Runtime.Input), +1))
}

// prevInputLocked switches to the previous active input.
func (c *Controller) prevInputLocked(ctx context.Context) {
	c.switchInputLocked(ctx, stepActiveInput(&c.state.Settings, int(c.state.Runtime.Input), -1))
}

// previousInputLocked toggles back to the input selected before the current
// one, if it is still active.
func (c *Controller) previousInputLocked(ctx context.Context) {
	target := int(c.state.Runtime.PrevInput)
	if !c.state.Settings.Inputs[target].Active {
		return
	}
	c.switchInputLocked(ctx, target)
}

// directInputLocked selects a specific input if it is active. Selecting the
// current input is a no-op.
func (c *Controller) directInputLocked(ctx context.Context, target int) error {
	if target < 0 || target >= models.NumInputs {
		return models.ErrNotFound(fmt.Sprintf("input %d does not exist", target+1))
	}
	if !c.state.Settings.Inputs[target].Active {
		return models.ErrConflict(fmt.Sprintf("input %d is inactive", target+1))
	}
	c.switchInputLocked(ctx, target)
	return nil
}

// SelectInput switches to a specific input.
func (c *Controller) SelectInput(ctx context.Context, input int) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	if err := c.directInputLocked(ctx, input); err != nil {
		return models.State{}, err
	}
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// NextInput switches to the next active input.
func (c *Controller) NextInput(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	c.nextInputLocked(ctx)
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// PreviousInput toggles back to the previously selected input.
func (c *Controller) PreviousInput(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rejectAsleepLocked(); err != nil {
		return models.State{}, err
	}
	c.previousInputLocked(ctx)
	c.renderLocked()
	c.publishLocked()
	return c.state.DeepCopy(), nil
}
