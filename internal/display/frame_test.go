package display_test

import (
	"reflect"
	"testing"

	"github.com/mezmerize-audio/preampd/internal/display"
)

func TestFrameStartsBlank(t *testing.T) {
	f := display.NewFrame()
	want := []string{"", "", "", ""}
	if got := f.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %q, want %q", got, want)
	}
	if f.Powered() {
		t.Error("new frame should be unpowered")
	}
}

func TestFramePrint(t *testing.T) {
	f := display.NewFrame()
	f.SetCursor(0, 0)
	f.Print("Mezmerize B1")
	f.SetCursor(4, 2)
	f.Print("Vol 42")

	if got := f.Line(0); got != "Mezmerize B1" {
		t.Errorf("row 0 = %q, want %q", got, "Mezmerize B1")
	}
	if got := f.Line(2); got != "    Vol 42" {
		t.Errorf("row 2 = %q, want %q", got, "    Vol 42")
	}
	if got := f.Line(1); got != "" {
		t.Errorf("row 1 = %q, want empty", got)
	}
}

func TestFramePrintClipsAtRightEdge(t *testing.T) {
	f := display.NewFrame()
	f.SetCursor(15, 0)
	f.Print("ABCDEFGH")

	if got := f.Line(0); got != "               ABCDE" {
		t.Errorf("row 0 = %q, want 15 spaces then ABCDE", got)
	}
	// Row below must be untouched, no wraparound.
	if got := f.Line(1); got != "" {
		t.Errorf("row 1 = %q, want empty", got)
	}
}

func TestFrameSetCursorClamps(t *testing.T) {
	f := display.NewFrame()
	f.SetCursor(99, 99)
	f.Print("X")
	want := "                   X" // col 19, row 3
	if got := f.Line(display.Rows - 1); got != want {
		t.Errorf("bottom row = %q, want %q", got, want)
	}

	f.Clear()
	f.SetCursor(-5, -5)
	f.Print("Y")
	if got := f.Line(0); got != "Y" {
		t.Errorf("row 0 = %q, want Y at origin", got)
	}
}

func TestFrameClear(t *testing.T) {
	f := display.NewFrame()
	f.SetCursor(0, 3)
	f.Print("leftover")
	f.Clear()

	want := []string{"", "", "", ""}
	if got := f.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() after Clear = %q, want blank", got)
	}
	// Cursor is homed: the next print lands at the origin.
	f.Print("home")
	if got := f.Line(0); got != "home" {
		t.Errorf("row 0 = %q, want %q", got, "home")
	}
}

func TestFramePowerAndBacklight(t *testing.T) {
	f := display.NewFrame()
	f.Power(true)
	f.Backlight(191)
	if !f.Powered() {
		t.Error("Powered() = false after Power(true)")
	}
	if got := f.BacklightLevel(); got != 191 {
		t.Errorf("BacklightLevel() = %d, want 191", got)
	}
	f.Power(false)
	if f.Powered() {
		t.Error("Powered() = true after Power(false)")
	}
}
