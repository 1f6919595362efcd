// Package syspower requests host power transitions from systemd-logind.
//
// The controller asks for a full power-off when a trigger temperature
// interlock trips; everything else (standby, power-loss recovery) is handled
// in-process by re-entering the boot sequence.
package syspower

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Requester asks the host system for a power transition.
type Requester interface {
	// PowerOff requests an orderly shutdown. reason is logged, not sent.
	PowerOff(reason string) error
}

// Logind talks to systemd-logind over the system bus.
type Logind struct{}

// NewLogind returns a logind-backed Requester.
func NewLogind() *Logind {
	return &Logind{}
}

// PowerOff calls org.freedesktop.login1.Manager.PowerOff. The false argument
// skips the interactive polkit prompt; the daemon runs unattended.
func (l *Logind) PowerOff(reason string) error {
	slog.Warn("syspower: requesting power off", "reason", reason)

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("syspower: connect system bus: %w", err)
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.login1", "/org/freedesktop/login1")
	call := obj.Call("org.freedesktop.login1.Manager.PowerOff", 0, false)
	if call.Err != nil {
		return fmt.Errorf("syspower: PowerOff: %w", call.Err)
	}
	return nil
}
