package control

import (
	"context"
	"time"

	"github.com/mezmerize-audio/preampd/internal/menu"
	"github.com/mezmerize-audio/preampd/internal/models"
	"github.com/mezmerize-audio/preampd/internal/panel"
)

// HandleEvent translates one panel event into logical keys and runs them
// through the mode machine. Encoder 0 is the volume knob (up/down per
// detent), encoder 1 the navigation knob (right/left); button 0 click is
// select, button 1 click is back and its double-click is on/off. Raw IR
// frames resolve through the learned bindings.
func (c *Controller) HandleEvent(ctx context.Context, ev panel.Event) {
	switch ev.Kind {
	case panel.KindEncoder:
		if ev.ID > 1 {
			return
		}
		n := int(ev.Delta)
		key := models.KeyUp
		if ev.ID == 1 {
			key = models.KeyRight
		}
		if n < 0 {
			n = -n
			key = models.KeyDown
			if ev.ID == 1 {
				key = models.KeyLeft
			}
		}
		for i := 0; i < n; i++ {
			c.HandleKey(ctx, key)
		}
	case panel.KindButton:
		switch {
		case ev.ID == 0 && ev.Action == panel.ActionClick:
			c.HandleKey(ctx, models.KeySelect)
		case ev.ID == 1 && ev.Action == panel.ActionClick:
			c.HandleKey(ctx, models.KeyBack)
		case ev.ID == 1 && ev.Action == panel.ActionDouble:
			c.HandleKey(ctx, models.KeyOnOff)
		}
	case panel.KindIR:
		c.handleIR(ctx, ev.IR)
	}
}

// handleIR resolves a raw remote frame. While an IR-learn editor is active
// every frame is captured as its candidate instead of being mapped, which
// also masks the binding being relearned. The repeat binding re-issues the
// last up/down key only.
func (c *Controller) handleIR(ctx context.Context, code models.IRCode) {
	c.mu.Lock()
	if ed, ok := c.editor.(*menu.IREditor); ok && c.state.Mode == models.ModeMenuCommand {
		ed.Observe(code)
		c.noteActivityLocked()
		c.renderLocked()
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	key := c.state.Settings.IR.Lookup(code)
	if key == models.KeyRepeat {
		key = models.KeyNone
		if c.lastIRKey == models.KeyUp || c.lastIRKey == models.KeyDown {
			key = c.lastIRKey
		}
	}
	if key != models.KeyNone {
		c.lastIRKey = key
	}
	c.mu.Unlock()

	c.HandleKey(ctx, key)
}

// HandleKey runs one logical key through the mode machine.
func (c *Controller) HandleKey(ctx context.Context, key models.Key) {
	if key == models.KeyNone {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// A failing rail outranks the user; everything is dropped until the
	// supply decides.
	if c.state.Mode == models.ModePowerLoss || c.state.Mode == models.ModeInitializing {
		return
	}

	c.noteActivityLocked()

	if key == models.KeyOnOff {
		c.handleOnOffLocked(ctx)
		return
	}

	switch c.state.Mode {
	case models.ModeNormal:
		c.normalKeyLocked(ctx, key)
	case models.ModeMenu:
		c.menuKeyLocked(ctx, key)
	case models.ModeMenuCommand:
		c.commandKeyLocked(ctx, key)
	case models.ModeStandby:
		// Only on/off wakes.
		return
	}

	c.renderLocked()
	c.publishLocked()
}

// handleOnOffLocked toggles between awake and standby, with the debounce
// window. Ignored presses do not restart the window.
func (c *Controller) handleOnOffLocked(ctx context.Context) {
	now := c.now()
	if now.Sub(c.lastOnOff) < OnOffDebounce {
		return
	}
	c.lastOnOff = now

	if c.state.Mode == models.ModeStandby {
		c.reinitializeLocked(ctx)
		return
	}
	c.enterStandbyLocked(ctx)
}

func (c *Controller) normalKeyLocked(ctx context.Context, key models.Key) {
	switch key {
	case models.KeyBack:
		c.enterMenuLocked()
	case models.KeyUp:
		c.volumeUpLocked(ctx)
	case models.KeyDown:
		c.volumeDownLocked(ctx)
	case models.KeyRight:
		c.nextInputLocked(ctx)
	case models.KeyLeft:
		c.prevInputLocked(ctx)
	case models.KeyMute:
		c.toggleMuteLocked(ctx)
	case models.KeyPrevious:
		c.previousInputLocked(ctx)
	case models.KeyInput1, models.KeyInput2, models.KeyInput3,
		models.KeyInput4, models.KeyInput5, models.KeyInput6:
		// Inactive targets are silently ignored, like the device UI.
		_ = c.directInputLocked(ctx, int(key-models.KeyInput1))
	}
}

func (c *Controller) enterMenuLocked() {
	c.session = menu.NewSession(menu.Tree(&c.state.Settings))
	c.state.Mode = models.ModeMenu
}

func (c *Controller) exitMenuLocked() {
	c.session = nil
	c.state.Mode = models.ModeNormal
}

func (c *Controller) menuKeyLocked(ctx context.Context, key models.Key) {
	res := c.session.Handle(key)
	switch {
	case res.Exited:
		c.exitMenuLocked()
	case res.Invoke != nil:
		c.invokeCommandLocked(ctx, *res.Invoke)
	}
}

func (c *Controller) commandKeyLocked(ctx context.Context, key models.Key) {
	switch c.editor.Handle(key) {
	case menu.Committed, menu.Cancelled:
		c.editor = nil
		if c.state.Mode != models.ModeMenuCommand {
			// The commit restarted the controller (profile load).
			return
		}
		c.state.Mode = models.ModeMenu
		// Labels can change while editing (input names); rebuild the
		// tree in place.
		c.session.Rebuild(menu.Tree(&c.state.Settings))
	}
}

// TickIdle advances the screen-saver and inactivity policies. The run loop
// calls it once a second.
func (c *Controller) TickIdle(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state.Mode {
	case models.ModeStandby, models.ModePowerLoss, models.ModeInitializing:
		return
	}
	c.tickIdleLocked(ctx, c.now())
}

func (c *Controller) tickIdleLocked(ctx context.Context, now time.Time) {
	s := c.state.Settings

	// An open editor counts as activity.
	if c.state.Mode == models.ModeMenuCommand {
		c.lastActivity = now
		return
	}

	if c.state.Mode == models.ModeNormal && s.InactivityTimeout > 0 &&
		now.Sub(c.lastActivity) >= time.Duration(s.InactivityTimeout)*time.Hour {
		c.enterStandbyLocked(ctx)
		return
	}

	if !s.Display.ScreenSaver || c.saverActive {
		return
	}
	if now.Sub(c.lastActivity) < time.Duration(s.Display.Timeout)*time.Second {
		return
	}
	c.saverActive = true
	if s.Display.DimLevel == 0 {
		c.disp.Power(false)
		return
	}
	c.disp.Backlight(dimBacklight(s.Display.DimLevel))
}
