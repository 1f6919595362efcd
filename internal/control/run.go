package control

import (
	"context"
	"fmt"
	"time"

	"github.com/mezmerize-audio/preampd/internal/panel"
)

// Run drives the controller from the panel event stream and the sampling
// clocks: the supply rail on the voltage poll period, the temperature
// sensors on theirs, and a one-second housekeeping tick for trigger
// sequencing and the idle policies. It returns when ctx is cancelled or the
// event source closes, after a final runtime flush so the next boot recalls
// the last volume and input.
func (c *Controller) Run(ctx context.Context, src panel.Source) error {
	prof := c.deviceProfile()

	voltage := time.NewTicker(time.Duration(prof.VoltagePollMS) * time.Millisecond)
	defer voltage.Stop()
	temps := time.NewTicker(time.Duration(prof.TempPollMS) * time.Millisecond)
	defer temps.Stop()
	housekeeping := time.NewTicker(time.Second)
	defer housekeeping.Stop()

	defer c.PersistRuntime()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-src.Events():
			if !ok {
				return fmt.Errorf("control: panel event stream closed")
			}
			c.HandleEvent(ctx, ev)
		case <-voltage.C:
			c.SampleVoltage(ctx)
		case <-temps.C:
			c.SampleTemps(ctx)
		case <-housekeeping.C:
			c.TickTriggers(ctx)
			c.TickIdle(ctx)
		}
	}
}
