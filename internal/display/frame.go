package display

import (
	"strings"
	"sync"
)

// Frame is an in-memory Display. The controller renders into it and the API
// reads the text back out, so access is guarded for concurrent readers.
type Frame struct {
	mu        sync.Mutex
	cells     [Rows][Cols]rune
	col, row  int
	powered   bool
	backlight uint8
}

var _ Display = (*Frame)(nil)

// NewFrame returns a blank, unpowered frame.
func NewFrame() *Frame {
	f := &Frame{}
	f.clearLocked()
	return f
}

// Power implements Display.
func (f *Frame) Power(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.powered = on
}

// Backlight implements Display.
func (f *Frame) Backlight(level uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backlight = level
}

// Clear implements Display.
func (f *Frame) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearLocked()
}

func (f *Frame) clearLocked() {
	for r := range f.cells {
		for c := range f.cells[r] {
			f.cells[r][c] = ' '
		}
	}
	f.col, f.row = 0, 0
}

// SetCursor implements Display.
func (f *Frame) SetCursor(col, row int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.col = clamp(col, 0, Cols-1)
	f.row = clamp(row, 0, Rows-1)
}

// Print implements Display.
func (f *Frame) Print(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range text {
		if f.col >= Cols {
			break
		}
		f.cells[f.row][f.col] = r
		f.col++
	}
}

// Powered reports whether the display controller is on.
func (f *Frame) Powered() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.powered
}

// BacklightLevel returns the last backlight duty written.
func (f *Frame) BacklightLevel() uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.backlight
}

// Lines returns the frame text, one string per row, trailing spaces trimmed.
func (f *Frame) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, Rows)
	for r := range f.cells {
		lines[r] = strings.TrimRight(string(f.cells[r][:]), " ")
	}
	return lines
}

// Line returns a single row, trailing spaces trimmed. Out-of-range rows are
// empty.
func (f *Frame) Line(row int) string {
	if row < 0 || row >= Rows {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.TrimRight(string(f.cells[row][:]), " ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
