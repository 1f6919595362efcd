package control

import (
	"fmt"
	"strings"

	"github.com/mezmerize-audio/preampd/internal/atten"
	"github.com/mezmerize-audio/preampd/internal/hardware"
	"github.com/mezmerize-audio/preampd/internal/models"
)

// renderLocked redraws the front display for the current mode.
func (c *Controller) renderLocked() {
	switch c.state.Mode {
	case models.ModeNormal:
		c.renderStatusLocked()
	case models.ModeMenu:
		if c.session != nil {
			c.session.Render(c.disp)
		}
	case models.ModeMenuCommand:
		if c.editor != nil {
			c.editor.Render(c.disp)
		}
	case models.ModeStandby:
		c.disp.Clear()
		c.printLine(1, "Standby")
	case models.ModePowerLoss:
		c.disp.Clear()
		c.printLine(0, "Power Loss")
		c.printLine(2, "waiting for supply")
	}
}

// renderStatusLocked draws the Normal screen: input name, volume and the
// two amplifier temperatures, each per its display setting. A trigger fault
// takes over its temperature row.
func (c *Controller) renderStatusLocked() {
	s := &c.state.Settings

	c.disp.Clear()
	if s.Display.ShowInput {
		c.printLine(0, s.Inputs[c.state.Runtime.Input].Name)
	}
	c.printLine(1, c.volumeText())
	c.printLine(2, c.tempLine(0, s.Display.Temp1Mode))
	c.printLine(3, c.tempLine(1, s.Display.Temp2Mode))
}

func (c *Controller) volumeText() string {
	rt := &c.state.Runtime
	if rt.Muted {
		return "Muted"
	}
	switch c.state.Settings.Display.VolumeMode {
	case models.VolModeSteps:
		return fmt.Sprintf("Volume %d", rt.Volume)
	case models.VolModeDB:
		return fmt.Sprintf("Volume -%.1f dB", atten.CodeDB(rt.Attenuation))
	}
	return ""
}

func (c *Controller) tempLine(ch int, mode uint8) string {
	if fault := c.state.TriggerFaults[ch]; fault != "" {
		return fault
	}
	if mode == models.TempModeNone {
		return ""
	}

	label := fmt.Sprintf("Amp%d", ch+1)
	t := c.state.Temps[ch]
	switch {
	case t <= hardware.TempDisconnected:
		return label + " n/c"
	case t >= hardware.TempShorted:
		return label + " short"
	}

	parts := []string{label}
	if mode == models.TempModeDegrees || mode == models.TempModeBoth {
		parts = append(parts, fmt.Sprintf("%.0fC", t))
	}
	if mode == models.TempModeBar || mode == models.TempModeBoth {
		parts = append(parts, tempBar(t))
	}
	return strings.Join(parts, " ")
}

// tempBar draws a ten-segment bar scaled to the interlock ceiling.
func tempBar(t float64) string {
	const segments = 10
	n := int(t / models.MaxTempLimitC * segments)
	if n < 0 {
		n = 0
	}
	if n > segments {
		n = segments
	}
	return strings.Repeat("=", n)
}

func (c *Controller) printLine(row int, text string) {
	c.disp.SetCursor(0, row)
	c.disp.Print(text)
}
