// Package menu implements the on-device menu: a navigable tree of commands
// plus the editors the commands invoke.
//
// The package is deliberately passive. A Session or an Editor advances one
// key at a time and reports what happened; the controller owns the mode
// machine, builds editors with live bounds and applies committed values.
package menu

import (
	"github.com/mezmerize-audio/preampd/internal/display"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// Command identifies a menu leaf. Per-input, per-trigger and per-key leaves
// carry the index in Item.Arg.
type Command int

const (
	CmdNone Command = iota

	// Volume group.
	CmdVolumeSteps
	CmdMinAttenuation
	CmdMaxAttenuation
	CmdMaxStartVolume
	CmdMuteLevel
	CmdRecallLevel

	// Per-input leaves; Arg is the input index.
	CmdInputActive
	CmdInputName
	CmdInputMaxVol
	CmdInputMinVol

	// IR learning; Arg is the models.Key being learned.
	CmdIRLearn

	// Per-trigger leaves; Arg is the trigger index.
	CmdTriggerActive
	CmdTriggerType
	CmdTriggerMode
	CmdTriggerDelay
	CmdTriggerTemp

	CmdInactivityTimer

	// Display group.
	CmdDisplaySaver
	CmdDisplayOnLevel
	CmdDisplayDimLevel
	CmdDisplayTimeout
	CmdDisplayVolume
	CmdDisplayInput
	CmdDisplayTemp1
	CmdDisplayTemp2

	// Settings group.
	CmdSaveCustom
	CmdLoadCustom
	CmdLoadDefault
	CmdAbout
)

// Item is one entry of the menu tree: either a group (Children set) or a
// command leaf.
type Item struct {
	Label    string
	Cmd      Command
	Arg      int
	Children []Item
}

// learnableKeys lists the IR-learn entries in display order.
var learnableKeys = []struct {
	label string
	key   models.Key
}{
	{"On/Off", models.KeyOnOff},
	{"Up", models.KeyUp},
	{"Down", models.KeyDown},
	{"Repeat", models.KeyRepeat},
	{"Left", models.KeyLeft},
	{"Right", models.KeyRight},
	{"Select", models.KeySelect},
	{"Back", models.KeyBack},
	{"Mute", models.KeyMute},
	{"Previous", models.KeyPrevious},
	{"Input 1", models.KeyInput1},
	{"Input 2", models.KeyInput2},
	{"Input 3", models.KeyInput3},
	{"Input 4", models.KeyInput4},
	{"Input 5", models.KeyInput5},
	{"Input 6", models.KeyInput6},
}

// Tree builds the device menu for the given settings. Input entries are
// labeled with their configured names, so the tree is rebuilt on every menu
// entry.
func Tree(s *models.PersistedSettings) []Item {
	inputs := make([]Item, models.NumInputs)
	for i := range inputs {
		inputs[i] = Item{
			Label: s.Inputs[i].Name,
			Children: []Item{
				{Label: "Active", Cmd: CmdInputActive, Arg: i},
				{Label: "Name", Cmd: CmdInputName, Arg: i},
				{Label: "Max-Vol", Cmd: CmdInputMaxVol, Arg: i},
				{Label: "Min-Vol", Cmd: CmdInputMinVol, Arg: i},
			},
		}
	}

	ir := make([]Item, len(learnableKeys))
	for i, lk := range learnableKeys {
		ir[i] = Item{Label: lk.label, Cmd: CmdIRLearn, Arg: int(lk.key)}
	}

	triggers := make([]Item, 0, models.NumTriggers+1)
	for t := 0; t < models.NumTriggers; t++ {
		triggers = append(triggers, Item{
			Label: trigLabel(t),
			Children: []Item{
				{Label: "Active", Cmd: CmdTriggerActive, Arg: t},
				{Label: "Type", Cmd: CmdTriggerType, Arg: t},
				{Label: "Mode", Cmd: CmdTriggerMode, Arg: t},
				{Label: "On-Delay", Cmd: CmdTriggerDelay, Arg: t},
				{Label: "Temp", Cmd: CmdTriggerTemp, Arg: t},
			},
		})
	}
	triggers = append(triggers, Item{Label: "Inactivity-Timer", Cmd: CmdInactivityTimer})

	return []Item{
		{Label: "Volume", Children: []Item{
			{Label: "Steps", Cmd: CmdVolumeSteps},
			{Label: "Min-Att", Cmd: CmdMinAttenuation},
			{Label: "Max-Att", Cmd: CmdMaxAttenuation},
			{Label: "Max-Start-Vol", Cmd: CmdMaxStartVolume},
			{Label: "Mute-Lvl", Cmd: CmdMuteLevel},
			{Label: "Recall-Level", Cmd: CmdRecallLevel},
		}},
		{Label: "Inputs", Children: inputs},
		{Label: "IR Learn", Children: ir},
		{Label: "Triggers", Children: triggers},
		{Label: "Display", Children: []Item{
			{Label: "Saver", Cmd: CmdDisplaySaver},
			{Label: "On-Level", Cmd: CmdDisplayOnLevel},
			{Label: "Dim-Level", Cmd: CmdDisplayDimLevel},
			{Label: "Timeout", Cmd: CmdDisplayTimeout},
			{Label: "Volume", Cmd: CmdDisplayVolume},
			{Label: "Input", Cmd: CmdDisplayInput},
			{Label: "Temp1", Cmd: CmdDisplayTemp1},
			{Label: "Temp2", Cmd: CmdDisplayTemp2},
		}},
		{Label: "Settings", Children: []Item{
			{Label: "Save Custom", Cmd: CmdSaveCustom},
			{Label: "Load Custom", Cmd: CmdLoadCustom},
			{Label: "Load Default", Cmd: CmdLoadDefault},
			{Label: "About", Cmd: CmdAbout},
		}},
	}
}

func trigLabel(t int) string {
	return "Trigger " + string(rune('1'+t))
}

// cursor is one level of the navigation stack.
type cursor struct {
	items []Item
	index int
}

// Session walks the menu tree one key at a time.
type Session struct {
	stack []cursor
}

// NavResult reports the outcome of one navigation key.
type NavResult struct {
	Invoke *Item // set when a command leaf was selected
	Exited bool  // set when Back was pressed at the top level
}

// NewSession opens a session at the top of the tree.
func NewSession(root []Item) *Session {
	return &Session{stack: []cursor{{items: root}}}
}

// Current returns the highlighted item.
func (s *Session) Current() Item {
	top := s.stack[len(s.stack)-1]
	return top.items[top.index]
}

// Depth returns how many levels deep the session is, starting at 1.
func (s *Session) Depth() int { return len(s.stack) }

// Rebuild re-points the session at a freshly built tree, keeping the cursor
// position. Commands that rename items change labels without changing the
// tree shape, so indexes carry over.
func (s *Session) Rebuild(root []Item) {
	items := root
	for l := range s.stack {
		s.stack[l].items = items
		if s.stack[l].index >= len(items) {
			s.stack[l].index = len(items) - 1
		}
		items = items[s.stack[l].index].Children
	}
}

// Handle advances the session by one key. Right selects the next item, Left
// the previous (wrapping), Select descends into a group or invokes a leaf,
// Back ascends and finally exits. Other keys are ignored.
func (s *Session) Handle(key models.Key) NavResult {
	top := &s.stack[len(s.stack)-1]
	n := len(top.items)
	switch key {
	case models.KeyRight:
		top.index = (top.index + 1) % n
	case models.KeyLeft:
		top.index = (top.index + n - 1) % n
	case models.KeySelect:
		it := top.items[top.index]
		if len(it.Children) > 0 {
			s.stack = append(s.stack, cursor{items: it.Children})
			return NavResult{}
		}
		invoked := it
		return NavResult{Invoke: &invoked}
	case models.KeyBack:
		if len(s.stack) == 1 {
			return NavResult{Exited: true}
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
	return NavResult{}
}

// Render draws the current level: the parent label as title, then a window
// of items with a marker on the highlighted one.
func (s *Session) Render(d display.Display) {
	top := s.stack[len(s.stack)-1]
	title := "Menu"
	if len(s.stack) > 1 {
		parent := s.stack[len(s.stack)-2]
		title = parent.items[parent.index].Label
	}

	// Keep the highlighted item inside the three list rows.
	start := top.index - 1
	if start < 0 {
		start = 0
	}
	if max := len(top.items) - (display.Rows - 1); start > max {
		start = max
	}
	if start < 0 {
		start = 0
	}

	d.Clear()
	printLine(d, 0, title)
	for row := 1; row < display.Rows; row++ {
		i := start + row - 1
		if i >= len(top.items) {
			break
		}
		marker := "  "
		if i == top.index {
			marker = "> "
		}
		printLine(d, row, marker+top.items[i].Label)
	}
}

func printLine(d display.Display, row int, text string) {
	d.SetCursor(0, row)
	d.Print(text)
}
