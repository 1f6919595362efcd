// Package control implements the preamp state machine: the mode controller,
// the input/trigger sequencing and the volume policy. It is the single
// source of truth for the persisted records and the only writer of the
// hardware driver.
package control

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mezmerize-audio/preampd/internal/atten"
	"github.com/mezmerize-audio/preampd/internal/config"
	"github.com/mezmerize-audio/preampd/internal/display"
	"github.com/mezmerize-audio/preampd/internal/events"
	"github.com/mezmerize-audio/preampd/internal/hardware"
	"github.com/mezmerize-audio/preampd/internal/menu"
	"github.com/mezmerize-audio/preampd/internal/models"
	"github.com/mezmerize-audio/preampd/internal/syspower"
)

// OnOffDebounce is the hold-off between accepted on/off keys. A repeated
// on/off inside the window is dropped without restarting the window.
const OnOffDebounce = 5 * time.Second

// Options wires a Controller. Driver, Store and Bus are required; the rest
// default to inert implementations.
type Options struct {
	Driver  hardware.Driver
	Store   config.Store
	Bus     *events.Bus
	Profile *config.Profile
	Display display.Display // defaults to an in-memory Frame
	Power   syspower.Requester
	Info    models.Info
	Now     func() time.Time // test clock
}

// Controller is the central state machine. All state mutations happen under
// the write lock and end with a publish on the event bus; hardware writes
// happen inside the lock so the device can never observe a half-applied
// transition.
type Controller struct {
	mu      sync.RWMutex
	state   models.State
	hw      hardware.Driver
	store   config.Store
	bus     *events.Bus
	profile *config.Profile
	disp    display.Display
	frame   *display.Frame // read-back view of disp when it is a Frame
	power   syspower.Requester
	now     func() time.Time

	// Input-stream bookkeeping.
	lastActivity time.Time
	lastOnOff    time.Time
	lastIRKey    models.Key
	saverActive  bool

	// Menu machinery, non-nil in the matching modes only.
	session *menu.Session
	editor  menu.Editor

	triggers [models.NumTriggers]triggerRun
	shutdown bool // a protective power-off has been requested
}

// New builds the controller and runs the boot sequence synchronously, so the
// returned controller is already in Normal mode (or as far as the hardware
// let it get).
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Display == nil {
		opts.Display = display.NewFrame()
	}
	if opts.Power == nil {
		opts.Power = syspower.NewMock()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		hw:      opts.Driver,
		store:   opts.Store,
		bus:     opts.Bus,
		profile: opts.Profile,
		disp:    opts.Display,
		power:   opts.Power,
		now:     opts.Now,
	}
	c.frame, _ = opts.Display.(*display.Frame)
	c.state.Mode = models.ModeInitializing
	c.state.Info = opts.Info

	c.mu.Lock()
	err := c.initializeLocked(ctx)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// State returns a deep copy of the current snapshot.
func (c *Controller) State() models.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.DeepCopy()
}

// persistSettingsLocked writes the settings record through. Every settings
// edit is persisted immediately; only the runtime record is write-budgeted.
// A persist failure is logged and the in-memory edit kept.
func (c *Controller) persistSettingsLocked() {
	if err := c.store.SaveSettings(&c.state.Settings); err != nil {
		slog.Warn("control: settings persist failed", "err", err)
	}
}

// persistRuntimeLocked flushes the runtime record. Called only on standby,
// power loss, shutdown and schema resets.
func (c *Controller) persistRuntimeLocked() {
	if err := c.store.SaveRuntime(&c.state.Runtime); err != nil {
		slog.Warn("control: runtime persist failed", "err", err)
	}
}

func (c *Controller) publishLocked() {
	if c.frame != nil {
		c.state.Display = c.frame.Lines()
	}
	if c.bus != nil {
		c.bus.Publish(c.state.DeepCopy())
	}
}

// PersistRuntime flushes the runtime record on demand. The daemon calls it
// once during shutdown so the next boot recalls the last volume and input.
func (c *Controller) PersistRuntime() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persistRuntimeLocked()
}

// deviceProfile returns the live tunables, falling back to defaults when the
// controller was built without a profile watcher.
func (c *Controller) deviceProfile() config.DeviceProfile {
	if c.profile != nil {
		return c.profile.Current()
	}
	return config.DefaultProfile()
}

// stepCode computes the attenuator code for a volume step under the given
// settings.
func stepCode(s *models.PersistedSettings, vol uint8) uint8 {
	return atten.StepCode(s.MaxAttenuation, s.MinAttenuation, vol, s.VolumeSteps)
}

// noteActivityLocked stamps user activity and wakes the screen saver. The
// triggering key is still processed by the caller.
func (c *Controller) noteActivityLocked() {
	c.lastActivity = c.now()
	if !c.saverActive {
		return
	}
	c.saverActive = false
	c.disp.Power(true)
	c.disp.Backlight(onBacklight(c.state.Settings.Display.OnLevel))
}

// onBacklight maps the OnLevel setting (0..3) to a raw backlight duty.
func onBacklight(level uint8) uint8 {
	return uint8((int(level)+1)*64 - 1)
}

// dimBacklight maps the DimLevel setting (1..32) to a raw backlight duty.
// Level 0 is handled by powering the display off instead.
func dimBacklight(level uint8) uint8 {
	return uint8(int(level)*4 - 1)
}
