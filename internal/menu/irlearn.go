package menu

import (
	"fmt"

	"github.com/mezmerize-audio/preampd/internal/display"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// IREditor learns a remote code for one logical key. While it is active the
// controller masks the key's binding and feeds every raw IR frame to Observe;
// the last frame received is the candidate. Select commits the candidate
// (a zero candidate unbinds the key), Back cancels and keeps the original.
type IREditor struct {
	Title     string
	Key       models.Key
	Original  models.IRCode
	Candidate models.IRCode
	Commit    func(code models.IRCode) error

	seen bool
	err  string
}

// Observe records a raw remote frame as the new candidate.
func (e *IREditor) Observe(code models.IRCode) {
	e.Candidate = code
	e.seen = true
}

func (e *IREditor) Handle(key models.Key) Status {
	switch key {
	case models.KeySelect:
		if e.Commit != nil {
			if err := e.Commit(e.Candidate); err != nil {
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

func (e *IREditor) Render(d display.Display) {
	d.Clear()
	printLine(d, 0, e.Title)
	switch {
	case e.seen:
		printLine(d, 1, fmt.Sprintf("%04X %08X", e.Candidate.Address, e.Candidate.Command))
	case e.Original.IsZero():
		printLine(d, 1, "unbound")
	default:
		printLine(d, 1, fmt.Sprintf("%04X %08X", e.Original.Address, e.Original.Command))
	}
	printLine(d, 2, "press remote key")
	printLine(d, 3, e.err)
}
