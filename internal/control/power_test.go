package control_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mezmerize-audio/preampd/internal/models"
)

func TestPowerLossFlushesRuntimeOnce(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	r.press(models.KeyUp, models.KeyUp, models.KeyUp)
	base := r.store.RuntimeSaves()

	r.hw.SetSupplyMillivolts(4000)
	r.c.SampleVoltage(ctx)
	st := r.c.State()
	if st.Mode != models.ModePowerLoss {
		t.Fatalf("mode = %v, want PowerLoss", st.Mode)
	}
	if got := r.store.RuntimeSaves(); got != base+1 {
		t.Fatalf("runtime saves = %d, want %d", got, base+1)
	}

	// Staying in the band must not write again.
	r.c.SampleVoltage(ctx)
	r.c.SampleVoltage(ctx)
	if got := r.store.RuntimeSaves(); got != base+1 {
		t.Errorf("runtime saves after repeat samples = %d, want %d", got, base+1)
	}

	// The board is quiesced and the user locked out.
	if !r.hw.GetHardwareMute() {
		t.Error("hardware mute not engaged during power loss")
	}
	r.press(models.KeyUp)
	if got := r.c.State().Runtime.Volume; got != 3 {
		t.Errorf("volume = %d, want 3 (keys dead)", got)
	}
	if got := r.frame.Line(0); got != "Power Loss" {
		t.Errorf("line 0 = %q, want %q", got, "Power Loss")
	}

	// Recovery restarts the controller with the flushed volume.
	r.hw.SetSupplyMillivolts(5000)
	r.c.SampleVoltage(ctx)
	st = r.c.State()
	if st.Mode != models.ModeNormal {
		t.Fatalf("mode after recovery = %v, want Normal", st.Mode)
	}
	if st.Runtime.Volume != 3 {
		t.Errorf("volume after recovery = %d, want 3", st.Runtime.Volume)
	}
}

func TestPowerLossDefiniteLossRestarts(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	r.hw.SetSupplyMillivolts(4000)
	r.c.SampleVoltage(ctx)
	if got := r.c.State().Mode; got != models.ModePowerLoss {
		t.Fatalf("mode = %v, want PowerLoss", got)
	}

	// Below the band the rail is definitely gone; the host survives on its
	// own supply and waits for mains to return.
	r.hw.SetSupplyMillivolts(2000)
	r.c.SampleVoltage(ctx)
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Errorf("mode = %v, want Normal after restart", got)
	}
}

func TestSupplyBandEdgesStayNormal(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	// The band is exclusive on both edges, and samples below it never
	// trip the transition from a healthy mode.
	for _, mv := range []int{4600, 4700, 3000, 2500} {
		r.hw.SetSupplyMillivolts(mv)
		r.c.SampleVoltage(ctx)
		st := r.c.State()
		if st.Mode != models.ModeNormal {
			t.Fatalf("mode at %d mV = %v, want Normal", mv, st.Mode)
		}
		if st.SupplyMV != mv {
			t.Errorf("supply_mv = %d, want %d", st.SupplyMV, mv)
		}
	}
}

func TestOnOffKeyTogglesStandbyWithDebounce(t *testing.T) {
	r := newRig(t, nil)
	base := r.store.RuntimeSaves()

	r.press(models.KeyOnOff)
	st := r.c.State()
	if st.Mode != models.ModeStandby {
		t.Fatalf("mode = %v, want Standby", st.Mode)
	}
	if got := r.store.RuntimeSaves(); got != base+1 {
		t.Errorf("runtime saves = %d, want %d", got, base+1)
	}
	if got := r.hw.GetInput(); got != -1 {
		t.Errorf("input relay = %d, want released (-1)", got)
	}
	if !r.hw.GetHardwareMute() {
		t.Error("hardware mute not engaged in standby")
	}
	if r.frame.Powered() {
		t.Error("display still powered in standby")
	}
	if got := r.frame.Line(1); got != "Standby" {
		t.Errorf("line 1 = %q, want %q", got, "Standby")
	}

	// Nothing but on/off wakes.
	r.press(models.KeySelect, models.KeyUp)
	if got := r.c.State().Mode; got != models.ModeStandby {
		t.Fatalf("mode after other keys = %v, want Standby", got)
	}

	// Inside the debounce window the key is dropped, and the drop does
	// not restart the window.
	r.clock.Advance(3 * time.Second)
	r.press(models.KeyOnOff)
	if got := r.c.State().Mode; got != models.ModeStandby {
		t.Fatalf("mode after debounced press = %v, want Standby", got)
	}
	r.clock.Advance(2 * time.Second)
	r.press(models.KeyOnOff)
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Errorf("mode after window reopened = %v, want Normal", got)
	}
}

func TestStandbyAPI(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	if _, err := r.c.Standby(ctx); err != nil {
		t.Fatalf("Standby: %v", err)
	}
	if got := r.c.State().Mode; got != models.ModeStandby {
		t.Fatalf("mode = %v, want Standby", got)
	}

	// Mutations are rejected while asleep.
	var app *models.AppError
	if _, err := r.c.VolumeUp(ctx); !errors.As(err, &app) || app.Status != 409 {
		t.Errorf("VolumeUp in standby: err = %v, want a 409", err)
	}
	if _, err := r.c.SelectInput(ctx, 2); err == nil {
		t.Error("SelectInput in standby: want error")
	}
	if _, err := r.c.UpdateSettings(ctx, models.SettingsUpdate{}); err == nil {
		t.Error("UpdateSettings in standby: want error")
	}

	// Standby again is a no-op, not an error.
	if _, err := r.c.Standby(ctx); err != nil {
		t.Errorf("second Standby: %v", err)
	}

	st, err := r.c.Wake(ctx)
	if err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if st.Mode != models.ModeNormal {
		t.Errorf("mode after wake = %v, want Normal", st.Mode)
	}
}

func TestScreenSaverPowersOffAndWakes(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	r.clock.Advance(31 * time.Second)
	r.c.TickIdle(ctx)
	if r.frame.Powered() {
		t.Fatal("display still powered after the saver timeout")
	}
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Fatalf("mode = %v, want Normal under the saver", got)
	}

	// The waking key is also acted on.
	r.press(models.KeyUp)
	if !r.frame.Powered() {
		t.Error("display not repowered by activity")
	}
	if got := r.frame.BacklightLevel(); got != 255 {
		t.Errorf("backlight = %d, want 255", got)
	}
	if got := r.c.State().Runtime.Volume; got != 1 {
		t.Errorf("volume = %d, want 1", got)
	}
}

func TestScreenSaverDimsWhenConfigured(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.Display.DimLevel = 8
		seed(t, st, s, models.DefaultRuntime())
	})
	ctx := context.Background()

	r.clock.Advance(31 * time.Second)
	r.c.TickIdle(ctx)
	if !r.frame.Powered() {
		t.Fatal("display powered off despite a dim level")
	}
	if got := r.frame.BacklightLevel(); got != 31 {
		t.Errorf("backlight = %d, want dimmed 31", got)
	}
}

func TestInactivityTimeoutEntersStandby(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.InactivityTimeout = 1
		seed(t, st, s, models.DefaultRuntime())
	})
	ctx := context.Background()

	r.clock.Advance(59 * time.Minute)
	r.c.TickIdle(ctx)
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Fatalf("mode before the timeout = %v, want Normal", got)
	}

	r.clock.Advance(2 * time.Minute)
	r.c.TickIdle(ctx)
	if got := r.c.State().Mode; got != models.ModeStandby {
		t.Errorf("mode after the timeout = %v, want Standby", got)
	}
}
