package control_test

import (
	"context"
	"testing"

	"github.com/mezmerize-audio/preampd/internal/models"
	"github.com/mezmerize-audio/preampd/internal/panel"
)

func TestMenuEntryAndExit(t *testing.T) {
	r := newRig(t, nil)

	r.press(models.KeyBack)
	st := r.c.State()
	if st.Mode != models.ModeMenu {
		t.Fatalf("mode = %v, want Menu", st.Mode)
	}
	if got := r.frame.Line(0); got != "Menu" {
		t.Errorf("line 0 = %q, want %q", got, "Menu")
	}
	if got := r.frame.Line(1); got != "> Volume" {
		t.Errorf("line 1 = %q, want %q", got, "> Volume")
	}

	// Volume keys stop acting on the volume inside the menu.
	r.press(models.KeyUp)
	if got := r.c.State().Runtime.Volume; got != 0 {
		t.Errorf("volume = %d, want 0 while in the menu", got)
	}

	r.press(models.KeyBack)
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Errorf("mode = %v, want Normal after back at the top", got)
	}
}

func TestMenuEditsVolumeSteps(t *testing.T) {
	r := newRig(t, nil)
	baseRuntime := r.store.RuntimeSaves()

	r.press(models.KeyBack, models.KeySelect, models.KeySelect)
	if got := r.c.State().Mode; got != models.ModeMenuCommand {
		t.Fatalf("mode = %v, want MenuCommand", got)
	}
	if got := r.frame.Line(0); got != "Steps" {
		t.Fatalf("editor title = %q, want %q", got, "Steps")
	}
	if got := r.frame.Line(1); got != "60" {
		t.Errorf("editor value = %q, want %q", got, "60")
	}

	r.press(models.KeyRight, models.KeyRight)
	if got := r.frame.Line(1); got != "62" {
		t.Errorf("editor value = %q, want %q", got, "62")
	}

	r.press(models.KeySelect)
	st := r.c.State()
	if st.Mode != models.ModeMenu {
		t.Fatalf("mode after commit = %v, want Menu", st.Mode)
	}
	if st.Settings.VolumeSteps != 62 {
		t.Fatalf("volume steps = %d, want 62", st.Settings.VolumeSteps)
	}

	// A step-count change flushes both records.
	rec, ok, err := r.store.LoadSettings()
	if err != nil || !ok {
		t.Fatalf("LoadSettings: ok=%v err=%v", ok, err)
	}
	if rec.VolumeSteps != 62 {
		t.Errorf("persisted steps = %d, want 62", rec.VolumeSteps)
	}
	if got := r.store.RuntimeSaves(); got != baseRuntime+1 {
		t.Errorf("runtime saves = %d, want %d", got, baseRuntime+1)
	}

	r.press(models.KeyBack, models.KeyBack)
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Errorf("mode = %v, want Normal", got)
	}
}

func TestMenuEditorCancelKeepsSettings(t *testing.T) {
	r := newRig(t, nil)

	r.press(models.KeyBack, models.KeySelect, models.KeySelect)
	r.press(models.KeyRight, models.KeyRight, models.KeyRight)
	r.press(models.KeyBack) // cancel the editor
	st := r.c.State()
	if st.Mode != models.ModeMenu {
		t.Fatalf("mode after cancel = %v, want Menu", st.Mode)
	}
	if st.Settings.VolumeSteps != 60 {
		t.Errorf("volume steps = %d, want unchanged 60", st.Settings.VolumeSteps)
	}

	rec, ok, err := r.store.LoadSettings()
	if err != nil || !ok {
		t.Fatalf("LoadSettings: ok=%v err=%v", ok, err)
	}
	if rec.VolumeSteps != 60 {
		t.Errorf("persisted steps = %d, want unchanged 60", rec.VolumeSteps)
	}
}

func TestMenuRefusesDeactivatingSelectedInput(t *testing.T) {
	r := newRig(t, nil)

	// Inputs -> Input 1 -> Active, then switch the option to Off.
	r.press(models.KeyBack, models.KeyRight, models.KeySelect,
		models.KeySelect, models.KeySelect)
	if got := r.frame.Line(0); got != "Active" {
		t.Fatalf("editor title = %q, want %q", got, "Active")
	}
	if got := r.frame.Line(1); got != "On" {
		t.Fatalf("editor option = %q, want %q", got, "On")
	}

	r.press(models.KeyLeft, models.KeySelect)
	st := r.c.State()
	if st.Mode != models.ModeMenuCommand {
		t.Fatalf("mode = %v, want the editor still open", st.Mode)
	}
	if got := r.frame.Line(3); got != "input is selected" {
		t.Errorf("error row = %q, want %q", got, "input is selected")
	}
	if !st.Settings.Inputs[0].Active {
		t.Error("selected input was deactivated")
	}

	r.press(models.KeyBack)
	if got := r.c.State().Mode; got != models.ModeMenu {
		t.Errorf("mode after cancel = %v, want Menu", got)
	}
}

func TestMenuRenameRebuildsTreeLabels(t *testing.T) {
	r := newRig(t, nil)

	// Inputs -> Input 1 -> Name.
	r.press(models.KeyBack, models.KeyRight, models.KeySelect,
		models.KeySelect, models.KeyRight, models.KeySelect)
	if got := r.frame.Line(0); got != "Input 1 Name" {
		t.Fatalf("editor title = %q, want %q", got, "Input 1 Name")
	}

	// Append 'A', then wrap left to Done and commit.
	r.press(models.KeySelect)
	if got := r.frame.Line(1); got != "Input 1A_" {
		t.Fatalf("edit row = %q, want %q", got, "Input 1A_")
	}
	r.press(models.KeyLeft, models.KeySelect)

	st := r.c.State()
	if st.Mode != models.ModeMenu {
		t.Fatalf("mode after commit = %v, want Menu", st.Mode)
	}
	if got := st.Settings.Inputs[0].Name; got != "Input 1A" {
		t.Fatalf("name = %q, want %q", got, "Input 1A")
	}

	// The rebuilt tree shows the new label as the level title.
	if got := r.frame.Line(0); got != "Input 1A" {
		t.Errorf("menu title = %q, want the renamed input", got)
	}

	rec, ok, err := r.store.LoadSettings()
	if err != nil || !ok {
		t.Fatalf("LoadSettings: ok=%v err=%v", ok, err)
	}
	if got := rec.Inputs[0].Name; got != "Input 1A" {
		t.Errorf("persisted name = %q, want %q", got, "Input 1A")
	}
}

func TestMenuIRLearnCapturesFrames(t *testing.T) {
	r := newRig(t, nil)
	ctx := context.Background()
	oldUp := models.DefaultSettings().IR.Up
	newUp := models.IRCode{Address: 0x10, Command: 0x8001}

	// IR Learn -> Up.
	r.press(models.KeyBack, models.KeyRight, models.KeyRight,
		models.KeySelect, models.KeyRight, models.KeySelect)
	if got := r.frame.Line(0); got != "Up" {
		t.Fatalf("editor title = %q, want %q", got, "Up")
	}
	if got := r.frame.Line(1); got != "0024 3AEA5A5F" {
		t.Fatalf("bound code row = %q, want the factory code", got)
	}

	// Frames are captured as the candidate, not mapped to keys.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: newUp})
	if got := r.frame.Line(1); got != "0010 00008001" {
		t.Fatalf("candidate row = %q, want %q", got, "0010 00008001")
	}
	if got := r.c.State().Mode; got != models.ModeMenuCommand {
		t.Fatalf("mode = %v, want the editor still open", got)
	}

	r.press(models.KeySelect)
	if got := r.c.State().Settings.IR.Up; got != newUp {
		t.Fatalf("bound code = %+v, want %+v", got, newUp)
	}

	r.press(models.KeyBack, models.KeyBack)
	if got := r.c.State().Mode; got != models.ModeNormal {
		t.Fatalf("mode = %v, want Normal", got)
	}

	// The new code acts, the factory one no longer does.
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: newUp})
	if got := r.c.State().Runtime.Volume; got != 1 {
		t.Errorf("volume after learned frame = %d, want 1", got)
	}
	r.c.HandleEvent(ctx, panel.Event{Kind: panel.KindIR, IR: oldUp})
	if got := r.c.State().Runtime.Volume; got != 1 {
		t.Errorf("volume after stale frame = %d, want unchanged 1", got)
	}
}

func TestMenuAboutScreen(t *testing.T) {
	r := newRig(t, nil)

	// Settings (left wraps from Volume) -> About (left wraps from Save
	// Custom).
	r.press(models.KeyBack, models.KeyLeft, models.KeySelect,
		models.KeyLeft, models.KeySelect)
	if got := r.c.State().Mode; got != models.ModeMenuCommand {
		t.Fatalf("mode = %v, want MenuCommand", got)
	}
	for row, want := range []string{"About", "preampd test", "bench", "mock driver"} {
		if got := r.frame.Line(row); got != want {
			t.Errorf("line %d = %q, want %q", row, got, want)
		}
	}

	r.press(models.KeySelect)
	st := r.c.State()
	if st.Mode != models.ModeMenu {
		t.Fatalf("mode after dismiss = %v, want Menu", st.Mode)
	}
	if got := r.frame.Line(0); got != "Settings" {
		t.Errorf("menu title = %q, want %q", got, "Settings")
	}
}

func TestMenuLoadCustomWithoutProfileShowsNotice(t *testing.T) {
	r := newRig(t, nil)

	r.press(models.KeyBack, models.KeyLeft, models.KeySelect,
		models.KeyRight, models.KeySelect)
	if got := r.frame.Line(0); got != "Load Custom" {
		t.Fatalf("line 0 = %q, want %q", got, "Load Custom")
	}
	if got := r.frame.Line(1); got != "no saved settings" {
		t.Errorf("line 1 = %q, want %q", got, "no saved settings")
	}

	r.press(models.KeyBack)
	if got := r.c.State().Mode; got != models.ModeMenu {
		t.Errorf("mode = %v, want Menu", got)
	}
}

func TestMenuLoadDefaultRestarts(t *testing.T) {
	r := newRig(t, func(st *recordingStore) {
		s := models.DefaultSettings()
		s.MuteLevel = 10
		seed(t, st, s, models.DefaultRuntime())
	})

	r.press(models.KeyUp, models.KeyUp, models.KeyUp)

	// Settings -> Load Default.
	r.press(models.KeyBack, models.KeyLeft, models.KeySelect,
		models.KeyRight, models.KeyRight, models.KeySelect)
	st := r.c.State()
	if st.Mode != models.ModeNormal {
		t.Fatalf("mode after load default = %v, want Normal", st.Mode)
	}
	if st.Settings.MuteLevel != 0 {
		t.Errorf("mute level = %d, want the default 0", st.Settings.MuteLevel)
	}
	if st.Runtime.Volume != 0 {
		t.Errorf("volume = %d, want reset 0", st.Runtime.Volume)
	}
}
