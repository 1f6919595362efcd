package menu

import (
	"strings"

	"github.com/mezmerize-audio/preampd/internal/display"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// Picker entries beyond the character set.
const (
	nameLetters = 26
	nameDigits  = 10
	entrySpace  = nameLetters + nameDigits
	entryCase   = entrySpace + 1
	entryDelete = entryCase + 1
	entryDone   = entryDelete + 1
	entryCount  = entryDone + 1
)

// NameEditor edits an input name by walking a character picker: letters in
// the current case, digits, space, then the Case/Delete/Done actions.
// Right and Left move the picker (wrapping), Select applies the entry, Back
// cancels. Done trims the name and commits; a blank name cancels instead,
// reverting to the original.
type NameEditor struct {
	Title    string
	Original string
	Commit   func(name string) error

	name  []rune
	pos   int
	upper bool
	err   string
}

// NewNameEditor starts an editor seeded with the current name.
func NewNameEditor(title, current string, commit func(string) error) *NameEditor {
	return &NameEditor{
		Title:    title,
		Original: current,
		Commit:   commit,
		name:     []rune(strings.TrimSpace(current)),
		upper:    true,
	}
}

// Name returns the text as edited so far.
func (e *NameEditor) Name() string { return string(e.name) }

func (e *NameEditor) Handle(key models.Key) Status {
	switch key {
	case models.KeyRight:
		e.pos = (e.pos + 1) % entryCount
	case models.KeyLeft:
		e.pos = (e.pos + entryCount - 1) % entryCount
	case models.KeySelect:
		return e.apply()
	case models.KeyBack:
		return Cancelled
	}
	return Editing
}

func (e *NameEditor) apply() Status {
	switch e.pos {
	case entryCase:
		e.upper = !e.upper
	case entryDelete:
		if len(e.name) > 0 {
			e.name = e.name[:len(e.name)-1]
		}
	case entryDone:
		name := strings.TrimSpace(string(e.name))
		if name == "" {
			return Cancelled
		}
		if e.Commit != nil {
			if err := e.Commit(name); err != nil {
				e.err = errText(err)
				return Editing
			}
		}
		return Committed
	default:
		if len(e.name) < models.MaxNameLen {
			e.name = append(e.name, e.entryRune())
		}
	}
	return Editing
}

// entryRune returns the character the picker currently points at. Only valid
// for character entries.
func (e *NameEditor) entryRune() rune {
	switch {
	case e.pos < nameLetters:
		if e.upper {
			return rune('A' + e.pos)
		}
		return rune('a' + e.pos)
	case e.pos < entrySpace:
		return rune('0' + e.pos - nameLetters)
	default:
		return ' '
	}
}

// entryLabel names the picker entry for rendering.
func (e *NameEditor) entryLabel() string {
	switch e.pos {
	case entrySpace:
		return "Space"
	case entryCase:
		return "Case"
	case entryDelete:
		return "Delete"
	case entryDone:
		return "Done"
	default:
		return string(e.entryRune())
	}
}

func (e *NameEditor) Render(d display.Display) {
	d.Clear()
	printLine(d, 0, e.Title)
	printLine(d, 1, string(e.name)+"_")
	printLine(d, 2, "["+e.entryLabel()+"]")
	printLine(d, 3, e.err)
}
