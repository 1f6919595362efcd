package control

import (
	"context"
	"log/slog"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// SampleVoltage reads the unregulated supply rail and drives the power-loss
// transitions. The run loop calls it on the voltage poll interval.
//
// A sample inside the failing band means mains is gone and the reservoir
// caps are draining: the runtime record is flushed while the rail can still
// program the NVRAM. The band's lower edge is where a write can no longer
// be trusted, so below it, and above the good threshold, the controller
// restarts instead.
func (c *Controller) SampleVoltage(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mv, err := c.hw.ReadSupplyMillivolts(ctx)
	if err != nil {
		slog.Debug("control: supply sample failed", "error", err)
		return
	}
	c.state.SupplyMV = mv

	prof := c.deviceProfile()
	switch c.state.Mode {
	case models.ModeNormal, models.ModeMenu, models.ModeMenuCommand:
		if mv > prof.PowerFailLowMV && mv < prof.PowerFailHighMV {
			c.enterPowerLossLocked(ctx)
		}
	case models.ModePowerLoss:
		if mv >= prof.PowerGoodMV {
			slog.Info("control: supply recovered", "mv", mv)
			c.reinitializeLocked(ctx)
			return
		}
		if mv <= prof.PowerFailLowMV {
			// The rail is definitely gone. The host runs on its own
			// supply, so start over and wait for power to come back.
			slog.Info("control: supply lost", "mv", mv)
			c.reinitializeLocked(ctx)
			return
		}
	}

	c.publishLocked()
}

// enterPowerLossLocked flushes the runtime record and quiesces the board.
// The persist happens here and only here for the episode.
func (c *Controller) enterPowerLossLocked(ctx context.Context) {
	slog.Error("control: supply failing, flushing runtime", "mv", c.state.SupplyMV)
	c.persistRuntimeLocked()
	c.dropTriggersLocked(ctx)
	if err := c.hw.SetHardwareMute(ctx, true); err != nil {
		slog.Warn("control: mute on power loss failed", "error", err)
	}
	c.session = nil
	c.editor = nil
	c.state.Mode = models.ModePowerLoss
	c.renderLocked()
}

// enterStandbyLocked persists the runtime record, releases every relay and
// turns the display off.
func (c *Controller) enterStandbyLocked(ctx context.Context) {
	slog.Info("control: entering standby")
	c.persistRuntimeLocked()
	c.dropTriggersLocked(ctx)
	if err := c.hw.SetHardwareMute(ctx, true); err != nil {
		slog.Warn("control: mute on standby failed", "error", err)
	}
	if err := c.hw.SelectInput(ctx, -1); err != nil {
		slog.Warn("control: input release on standby failed", "error", err)
	}
	c.session = nil
	c.editor = nil
	c.saverActive = false
	c.state.Mode = models.ModeStandby
	c.renderLocked()
	c.disp.Power(false)
}

// Standby puts the controller to sleep. Asleep already is a no-op; a
// failing supply cannot be overridden.
func (c *Controller) Standby(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Mode {
	case models.ModeStandby:
		return c.state.DeepCopy(), nil
	case models.ModePowerLoss, models.ModeInitializing:
		return models.State{}, models.ErrAsleep(c.state.Mode)
	}
	c.enterStandbyLocked(ctx)
	c.publishLocked()
	return c.state.DeepCopy(), nil
}

// Wake brings the controller out of standby by running the boot sequence
// again. Awake already is a no-op.
func (c *Controller) Wake(ctx context.Context) (models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Mode {
	case models.ModePowerLoss, models.ModeInitializing:
		return models.State{}, models.ErrAsleep(c.state.Mode)
	case models.ModeStandby:
		c.reinitializeLocked(ctx)
	}
	return c.state.DeepCopy(), nil
}
