// Package display defines the text surface the controller renders to.
//
// The front panel carries a 20x4 character display. The controller and menu
// renderer write plain text through the Display interface; implementations
// decide what a "pixel" is. Frame keeps the text in memory so the API can
// expose it and tests can assert on it, Null discards everything.
package display

// Character geometry of the front panel display.
const (
	Cols = 20
	Rows = 4
)

// MaxBacklight is the highest raw backlight duty value.
const MaxBacklight uint8 = 255

// Display is the text surface for menus and status rendering.
type Display interface {
	// Power switches the display controller on or off.
	Power(on bool)
	// Backlight sets the raw backlight duty (0 = dark, MaxBacklight = full).
	Backlight(level uint8)
	// Clear blanks the frame and homes the cursor.
	Clear()
	// SetCursor positions the write cursor. Out-of-range coordinates clamp.
	SetCursor(col, row int)
	// Print writes text at the cursor, advancing it. Text past the right
	// edge of the row is dropped.
	Print(text string)
}
