package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// triggerFaultNoPower is reported when a smart trigger cannot confirm the
// amplifier started conducting.
const triggerFaultNoPower = "check power to amp"

// triggerRun is the per-trigger sequencing state. Zero deadlines mean no
// pending work; the engaged flag itself lives in the published state.
type triggerRun struct {
	engageAt   time.Time // due engage (on-delay expiry)
	pulseOffAt time.Time // momentary: release the relay at this time
	settleAt   time.Time // smart: re-read the temperature at this time
	retries    int       // smart re-reads left before declaring a fault
}

// armTriggersLocked schedules every active trigger's engage after its
// on-delay. Called on entry to Normal.
func (c *Controller) armTriggersLocked(now time.Time) {
	for i := range c.triggers {
		c.triggers[i] = triggerRun{}
		c.state.TriggersEngaged[i] = false
		tr := c.state.Settings.Triggers[i]
		if !tr.Active {
			continue
		}
		c.triggers[i].engageAt = now.Add(time.Duration(tr.OnDelay) * time.Second)
	}
}

// dropTriggersLocked releases both trigger relays and cancels all pending
// sequencing. Used by standby, power loss and the temperature interlock.
func (c *Controller) dropTriggersLocked(ctx context.Context) {
	for i := range c.triggers {
		if c.state.TriggersEngaged[i] || !c.triggers[i].pulseOffAt.IsZero() {
			c.driveTriggerLocked(ctx, i, false)
		}
		c.triggers[i] = triggerRun{}
		c.state.TriggersEngaged[i] = false
	}
}

func (c *Controller) driveTriggerLocked(ctx context.Context, i int, on bool) {
	if err := c.hw.SetTrigger(ctx, i, on); err != nil {
		slog.Warn("control: trigger relay failed", "trigger", i, "on", on, "err", err)
	}
}

// readTempLocked samples one temperature channel. A bus failure reads as
// 0 °C: warm enough not to engage a smart trigger, cool enough not to trip
// the interlock.
func (c *Controller) readTempLocked(ctx context.Context, channel int) float64 {
	t, err := c.hw.ReadTemp(ctx, channel)
	if err != nil {
		slog.Warn("control: temperature read failed", "channel", channel, "err", err)
		return 0
	}
	return t
}

// tickTriggersLocked advances the trigger sequencing to now: due engages,
// momentary pulse releases and smart settle re-reads.
func (c *Controller) tickTriggersLocked(ctx context.Context, now time.Time) {
	prof := c.deviceProfile()
	for i := range c.triggers {
		run := &c.triggers[i]
		tr := c.state.Settings.Triggers[i]

		if !tr.Active {
			// Deactivated mid-flight: release and forget.
			if c.state.TriggersEngaged[i] || !run.pulseOffAt.IsZero() {
				c.driveTriggerLocked(ctx, i, false)
			}
			*run = triggerRun{}
			c.state.TriggersEngaged[i] = false
			continue
		}

		if !run.engageAt.IsZero() && !now.Before(run.engageAt) {
			run.engageAt = time.Time{}
			if tr.Smart && c.readTempLocked(ctx, i) >= 0 {
				// Already conducting; the amplifier does not need
				// the trigger.
				c.state.TriggersEngaged[i] = true
				continue
			}
			c.driveTriggerLocked(ctx, i, true)
			c.state.TriggersEngaged[i] = true
			if !tr.Latching {
				run.pulseOffAt = now.Add(time.Duration(prof.TriggerPulseMS) * time.Millisecond)
			}
			if tr.Smart {
				run.settleAt = now.Add(time.Duration(prof.TriggerSettleMS) * time.Millisecond)
				run.retries = prof.TriggerRetries
			}
		}

		if !run.pulseOffAt.IsZero() && !now.Before(run.pulseOffAt) {
			run.pulseOffAt = time.Time{}
			c.driveTriggerLocked(ctx, i, false)
		}

		if !run.settleAt.IsZero() && !now.Before(run.settleAt) {
			if c.readTempLocked(ctx, i) >= 0 {
				run.settleAt = time.Time{}
				c.state.TriggerFaults[i] = ""
				continue
			}
			run.retries--
			if run.retries > 0 {
				run.settleAt = now.Add(time.Duration(prof.TriggerSettleMS) * time.Millisecond)
				continue
			}
			run.settleAt = time.Time{}
			c.state.TriggerFaults[i] = triggerFaultNoPower
			slog.Warn("control: smart trigger could not start the amplifier", "trigger", i)
		}
	}
}

// sampleTempsLocked refreshes both temperature channels and runs the
// over-temperature interlock.
func (c *Controller) sampleTempsLocked(ctx context.Context) {
	for i := 0; i < models.NumTriggers; i++ {
		c.state.Temps[i] = c.readTempLocked(ctx, i)
	}
	c.checkTempInterlockLocked(ctx)
}

// checkTempInterlockLocked requests a protective shutdown when an active
// trigger's sensor exceeds its configured limit: triggers released, output
// muted, system power-off asked for. The request is made once.
func (c *Controller) checkTempInterlockLocked(ctx context.Context) {
	if c.shutdown {
		return
	}
	for i := 0; i < models.NumTriggers; i++ {
		tr := c.state.Settings.Triggers[i]
		if !tr.Active || tr.TempLimit == 0 {
			continue
		}
		if c.state.Temps[i] <= float64(tr.TempLimit) {
			continue
		}
		c.shutdown = true
		c.state.TriggerFaults[i] = "over temperature"
		slog.Error("control: over-temperature shutdown",
			"trigger", i, "temp", c.state.Temps[i], "limit", tr.TempLimit)
		c.dropTriggersLocked(ctx)
		c.state.Runtime.Muted = true
		if err := c.hw.SetHardwareMute(ctx, true); err != nil {
			slog.Warn("control: mute failed during shutdown", "err", err)
		}
		reason := fmt.Sprintf("trigger %d at %.1fC exceeds %dC limit",
			i+1, c.state.Temps[i], tr.TempLimit)
		if err := c.power.PowerOff(reason); err != nil {
			slog.Error("control: power-off request failed", "err", err)
		}
		return
	}
}

// TickTriggers advances trigger sequencing. The run loop calls it once a
// second.
func (c *Controller) TickTriggers(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Mode != models.ModeNormal && c.state.Mode != models.ModeMenu &&
		c.state.Mode != models.ModeMenuCommand {
		return
	}
	c.tickTriggersLocked(ctx, c.now())
	c.publishLocked()
}

// SampleTemps refreshes the temperature readings and the interlock. The run
// loop calls it on the profile's temperature poll period.
func (c *Controller) SampleTemps(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state.Mode {
	case models.ModeStandby, models.ModePowerLoss:
		return
	}
	c.sampleTempsLocked(ctx)
	c.renderLocked()
	c.publishLocked()
}
