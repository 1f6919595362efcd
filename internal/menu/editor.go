package menu

import (
	"strconv"

	"github.com/mezmerize-audio/preampd/internal/display"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// Status is the lifecycle of an editor. An editor stays in Editing until the
// user commits or cancels; the controller drops it on either terminal state.
type Status int

const (
	Editing Status = iota
	Committed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Editing:
		return "editing"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Editor is a single-value edit session. Handle consumes one key and reports
// the resulting status; Render draws the current candidate value.
type Editor interface {
	Handle(key models.Key) Status
	Render(d display.Display)
}

// NumericEditor edits an integer within [Min, Max]. Right increments, Left
// decrements (clamped, no wrap), Select commits, Back cancels.
type NumericEditor struct {
	Title  string
	Unit   string // e.g. "Secs.", "Deg C"
	Min    int
	Max    int
	Value  int
	Format func(v int) string // overrides the plain decimal rendering
	Commit func(v int) error

	err string
}

func (e *NumericEditor) Handle(key models.Key) Status {
	switch key {
	case models.KeyRight:
		if e.Value < e.Max {
			e.Value++
		}
	case models.KeyLeft:
		if e.Value > e.Min {
			e.Value--
		}
	case models.KeySelect:
		if e.Commit != nil {
			if err := e.Commit(e.Value); err != nil {
				e.err = errText(err)
				return Editing
			}
		}
		return Committed
	case models.KeyBack:
		return Cancelled
	}
	return Editing
}

func (e *NumericEditor) Render(d display.Display) {
	text := strconv.Itoa(e.Value)
	if e.Format != nil {
		text = e.Format(e.Value)
	}
	if e.Unit != "" {
		text += " " + e.Unit
	}
	d.Clear()
	printLine(d, 0, e.Title)
	printLine(d, 1, text)
	printLine(d, 3, e.err)
}

// OptionEditor cycles through a fixed choice list. Right selects the next
// option, Left the previous (wrapping), Select commits, Back cancels.
type OptionEditor struct {
	Title   string
	Options []string
	Index   int
	Commit  func(i int) error

	err string
}

func (e *OptionEditor) Handle(key models.Key) Status {
	n := len(e.Options)
	switch key {
	case models.KeyRight:
		e.Index = (e.Index + 1) % n
	case models.KeyLeft:
		e.Index = (e.Index + n - 1) % n
	case models.KeySelect:
		if e.Commit != nil {
			if err := e.Commit(e.Index); err != nil {
				e.err = errText(err)
				return Editing
			}
		}
		return Committed
	case models.KeyBack:
		return Cancelled
	}
	return Editing
}

func (e *OptionEditor) Render(d display.Display) {
	d.Clear()
	printLine(d, 0, e.Title)
	printLine(d, 1, e.Options[e.Index])
	printLine(d, 3, e.err)
}

// InfoEditor shows static lines until any Select or Back. Used for About.
type InfoEditor struct {
	Title string
	Lines []string
}

func (e *InfoEditor) Handle(key models.Key) Status {
	switch key {
	case models.KeySelect, models.KeyBack:
		return Cancelled
	}
	return Editing
}

func (e *InfoEditor) Render(d display.Display) {
	d.Clear()
	printLine(d, 0, e.Title)
	for i, line := range e.Lines {
		if i+1 >= display.Rows {
			break
		}
		printLine(d, i+1, line)
	}
}

// errText keeps commit errors short enough for one display row.
func errText(err error) string {
	msg := err.Error()
	if len(msg) > display.Cols {
		msg = msg[:display.Cols]
	}
	return msg
}
