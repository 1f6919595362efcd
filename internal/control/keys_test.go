package control_test

import (
	"context"
	"testing"

	"github.com/mezmerize-audio/preampd/internal/models"
	"github.com/mezmerize-audio/preampd/internal/panel"
)

func TestEncoderEventsMapToKeys(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindEncoder, ID: 0, Delta: 3})
	if got := r.c.State().Runtime.Volume; got != 3 {
		t.Fatalf("volume after +3 detents = %d, want 3", got)
	}
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindEncoder, ID: 0, Delta: -2})
	if got := r.c.State().Runtime.Volume; got != 1 {
		t.Fatalf("volume after -2 detents = %d, want 1", got)
	}

	// Encoders beyond the two known ones are dropped.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindEncoder, ID: 7, Delta: 5})
	if got := r.c.State().Runtime.Volume; got != 1 {
		t.Errorf("volume after unknown encoder = %d, want 1", got)
	}

	// The second encoder steps inputs.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindEncoder, ID: 1, Delta: 1})
	if got := r.c.State().Runtime.Input; got != 1 {
		t.Errorf("input after nav detent = %d, want 1", got)
	}
}

func TestButtonEventsMapToKeys(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()

	// Heartbeats carry no key.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindHeartbeat})
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Fatalf("mode after heartbeat = %v, want Normal", got)
	}

	// Button 1 click is back: opens the menu from normal mode.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindButton, ID: 1, Action: panel.ActionClick})
	if got := r.c.State().Mode; got != models.ModeMenu {
		t.Fatalf("mode after back = %v, want Menu", got)
	}

	// Button 0 click is select: descends into the highlighted entry.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindButton, ID: 0, Action: panel.ActionClick})
	if got := r.frame.Line(0); got != "Volume" {
		t.Errorf("menu title after select = %q, want %q", got, "Volume")
	}

	// Double-click on button 1 is on/off from any awake mode.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindButton, ID: 1, Action: panel.ActionDouble})
	if got := r.c.State().Mode; got != models.ModeStandby {
		t.Errorf("mode after double-click = %v, want Standby", got)
	}
}

func TestVolumeKeysClampToInputWindow(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.Inputs[0].MinVol = 2
		s.Inputs[0].MaxVol = 10
		seed(t, st, s, models.DefaultRuntime())
	})

	// Boot already lifted the recalled volume onto the input's floor.
	if got := r.c.State().Runtime.Volume; got != 2 {
		t.Fatalf("volume after boot = %d, want floor 2", got)
	}

	for i := 0; i < 12; i++ {
		r.press(models.KeyUp)
	}
	if got := r.c.State().Runtime.Volume; got != 10 {
		t.Fatalf("volume = %d, want ceiling 10", got)
	}
	if got := r.hw.GetAttenuation(); got != 100 {
		t.Errorf("attenuation code = %d, want 100", got)
	}

	for i := 0; i < 12; i++ {
		r.press(models.KeyDown)
	}
	if got := r.c.State().Runtime.Volume; got != 2 {
		t.Fatalf("volume = %d, want floor 2", got)
	}
	if got := r.hw.GetAttenuation(); got != 116 {
		t.Errorf("attenuation code = %d, want 116", got)
	}
}

func TestInputStepWrapsOverAllActive(t *testing.T) {
	r := newRig(t, nil)

	for i, want := range []int{1, 2, 3, 4, 5, 0} {
		r.press(models.KeyRight)
		if got := r.c.State().Runtime.Input; int(got) != want {
			t.Fatalf("input after %d right steps = %d, want %d", i+1, got, want)
		}
	}
}

func TestInputStepSkipsInactive(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.Inputs[1].Active = false
		s.Inputs[4].Active = false
		seed(t, st, s, models.DefaultRuntime())
	})

	for _, want := range []int{2, 3, 5, 0} {
		r.press(models.KeyRight)
		if got := r.c.State().Runtime.Input; int(got) != want {
			t.Fatalf("input after right = %d, want %d", got, want)
		}
	}
	r.press(models.KeyLeft)
	if got := r.c.State().Runtime.Input; got != 5 {
		t.Errorf("input after left from 0 = %d, want 5", got)
	}
}

func TestPreviousInputToggles(t *testing.T) {
	r := newRig(t, nil)

	r.press(models.KeyInput3)
	st := r.c.State()
	if st.Runtime.Input != 2 || st.Runtime.PrevInput != 0 {
		t.Fatalf("input/prev = %d/%d, want 2/0", st.Runtime.Input, st.Runtime.PrevInput)
	}
	r.press(models.KeyPrevious)
	if got := r.c.State().Runtime.Input; got != 0 {
		t.Fatalf("input after previous = %d, want 0", got)
	}
	r.press(models.KeyPrevious)
	if got := r.c.State().Runtime.Input; got != 2 {
		t.Errorf("input after second previous = %d, want 2", got)
	}
}

func TestDirectInputKeyIgnoresInactive(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.Inputs[3].Active = false
		seed(t, st, s, models.DefaultRuntime())
	})

	r.press(models.KeyInput4)
	if got := r.c.State().Runtime.Input; got != 0 {
		t.Errorf("input = %d, want unchanged 0", got)
	}
	r.press(models.KeyInput2)
	if got := r.c.State().Runtime.Input; got != 1 {
		t.Errorf("input = %d, want 1", got)
	}
}

func TestInputSwitchRecallsPerInputVolume(t *testing.T) {
	r := newRig(t, nil)

	for i := 0; i < 5; i++ {
		r.press(models.KeyUp)
	}
	r.press(models.KeyRight)
	st := r.c.State()
	if st.Runtime.Input != 1 || st.Runtime.Volume != 0 {
		t.Fatalf("input/vol = %d/%d, want 1/0 (no memory yet)",
			st.Runtime.Input, st.Runtime.Volume)
	}
	r.press(models.KeyLeft)
	if got := r.c.State().Runtime.Volume; got != 5 {
		t.Errorf("volume = %d, want recalled 5", got)
	}
}

func TestInputSwitchCarriesVolumeWithoutRecall(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.RecallSetLevel = false
		seed(t, st, s, models.DefaultRuntime())
	})

	for i := 0; i < 5; i++ {
		r.press(models.KeyUp)
	}
	r.press(models.KeyRight)
	st := r.c.State()
	if st.Runtime.Input != 1 || st.Runtime.Volume != 5 {
		t.Errorf("input/vol = %d/%d, want 1/5 (carried)",
			st.Runtime.Input, st.Runtime.Volume)
	}
}

func TestMutePreservedAcrossInputSwitch(t *testing.T) {
	r := newRig(t, nil)

	r.press(models.KeyUp, models.KeyUp, models.KeyUp)
	r.press(models.KeyMute)
	st := r.c.State()
	if !st.Runtime.Muted {
		t.Fatal("not muted after mute key")
	}
	if !r.hw.GetHardwareMute() {
		t.Fatal("hardware mute not engaged")
	}

	r.press(models.KeyRight)
	st = r.c.State()
	if st.Runtime.Input != 1 || !st.Runtime.Muted {
		t.Fatalf("input/muted = %d/%v, want 1/true", st.Runtime.Input, st.Runtime.Muted)
	}
	if !r.hw.GetHardwareMute() {
		t.Error("hardware mute dropped across the switch")
	}

	// Volume keys are dead while muted.
	r.press(models.KeyUp)
	if got := r.c.State().Runtime.Volume; got != 0 {
		t.Errorf("volume moved while muted: %d", got)
	}

	r.press(models.KeyMute)
	st = r.c.State()
	if st.Runtime.Muted {
		t.Fatal("still muted after second mute key")
	}
	if r.hw.GetHardwareMute() {
		t.Error("hardware mute still engaged after unmute")
	}
	if got := r.hw.GetAttenuation(); got != 120 {
		t.Errorf("attenuation code = %d, want 120 restored", got)
	}
}

func TestMuteLevelUsesAttenuatorInsteadOfRelay(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.MuteLevel = 5
		seed(t, st, s, models.DefaultRuntime())
	})

	r.press(models.KeyUp, models.KeyUp)
	r.press(models.KeyMute)
	st := r.c.State()
	if !st.Runtime.Muted {
		t.Fatal("not muted after mute key")
	}
	if r.hw.GetHardwareMute() {
		t.Error("hardware mute engaged despite a mute level")
	}
	if got := r.hw.GetAttenuation(); got != 110 {
		t.Errorf("attenuation code = %d, want mute-level code 110", got)
	}

	r.press(models.KeyMute)
	if got := r.hw.GetAttenuation(); got != 116 {
		t.Errorf("attenuation code = %d, want 116 restored", got)
	}
}

func TestIRFramesDriveKeys(t *testing.T) {
	up := models.IRCode{Address: 0x10, Command: 0x8001}
	rpt := models.IRCode{Address: 0x10, Command: 0x8002}
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.IR = models.KeyBindings{Up: up, Repeat: rpt}
		seed(t, st, s, models.DefaultRuntime())
	})
	ctx := context.Background()

	// A repeat frame with no preceding key is dropped.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: rpt})
	if got := r.c.State().Runtime.Volume; got != 0 {
		t.Fatalf("volume after orphan repeat = %d, want 0", got)
	}

	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: up})
	if got := r.c.State().Runtime.Volume; got != 1 {
		t.Fatalf("volume after up frame = %d, want 1", got)
	}
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: rpt})
	if got := r.c.State().Runtime.Volume; got != 2 {
		t.Fatalf("volume after repeat = %d, want 2", got)
	}

	// Unknown frames neither act nor clear the repeat memory.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: models.IRCode{Address: 0x10, Command: 0x9999}})
	if got := r.c.State().Runtime.Volume; got != 2 {
		t.Fatalf("volume after unknown frame = %d, want 2", got)
	}
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: rpt})
	if got := r.c.State().Runtime.Volume; got != 3 {
		t.Errorf("volume after repeat = %d, want 3", got)
	}
}
