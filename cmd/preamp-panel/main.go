// Command preamp-panel emulates the front panel MCU and the stock remote on
// a serial port. Terminal keystrokes become framed panel events, so a daemon
// on the other end of a pty pair behaves as if the real panel were attached:
//
//	socat pty,raw,echo=0,link=/tmp/panelA pty,raw,echo=0,link=/tmp/panelB
//	preampd --mock --panel /tmp/panelA
//	preamp-panel -port /tmp/panelB
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/mezmerize-audio/preampd/internal/models"
	"github.com/mezmerize-audio/preampd/internal/panel"
)

func main() {
	var (
		port = flag.String("port", "", "serial port or pty to write panel frames to")
		baud = flag.Int("baud", 115200, "baud rate")
	)
	flag.Parse()
	if *port == "" {
		fmt.Fprintln(os.Stderr, "preamp-panel: -port is required")
		flag.Usage()
		os.Exit(2)
	}

	sp, err := serial.Open(*port, &serial.Mode{
		BaudRate: *baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		slog.Error("cannot open port", "port", *port, "err", err)
		os.Exit(1)
	}
	defer sp.Close()

	fmt.Printf("emulating panel MCU on %s at %d baud\n", *port, *baud)
	fmt.Println("  up/down      volume knob")
	fmt.Println("  left/right   navigation knob")
	fmt.Println("  enter        select")
	fmt.Println("  b/backspace  back")
	fmt.Println("  p            on/off (back double-click)")
	fmt.Println("  m            remote: mute")
	fmt.Println("  l            remote: previous input")
	fmt.Println("  1-6          remote: direct input")
	fmt.Println("  q/ctrl-c     quit")

	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		slog.Error("cannot enter raw mode", "err", err)
		os.Exit(1)
	}
	err = run(sp)
	_ = term.Restore(fd, old)
	if err != nil {
		slog.Error("panel emulator failed", "err", err)
		os.Exit(1)
	}
}

var errQuit = errors.New("quit")

// run pumps keystrokes and the liveness beacon into the frame stream. Both
// producers share one Framer so the sequence numbers stay contiguous.
func run(sp serial.Port) error {
	var (
		mu sync.Mutex
		fr panel.Framer
	)
	send := func(e panel.Event) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := sp.Write(fr.Frame(e))
		return err
	}

	// The real MCU beacons once a second so the daemon can tell a dead
	// link from a quiet one.
	done := make(chan struct{})
	defer close(done)
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				if err := send(panel.Event{Kind: panel.KindHeartbeat}); err != nil {
					return
				}
			}
		}
	}()

	// The remote keys replay the stock binding codes, so they work against
	// a daemon on factory settings and against anything relearned from them.
	remote := models.DefaultSettings().IR

	in := bufio.NewReader(os.Stdin)
	for {
		ev, label, err := readKey(in, &remote)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}
		if ev == nil {
			continue
		}
		if err := send(*ev); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		fmt.Printf("%s\r\n", label)
	}
}

// readKey maps one keystroke onto a panel event. Arrow keys arrive as
// ESC [ A..D sequences; anything unmapped is dropped.
func readKey(in *bufio.Reader, remote *models.KeyBindings) (*panel.Event, string, error) {
	b, err := in.ReadByte()
	if err != nil {
		return nil, "", err
	}
	switch {
	case b == 0x03 || b == 'q': // ctrl-c
		return nil, "", errQuit
	case b == '\r' || b == '\n':
		return &panel.Event{Kind: panel.KindButton, ID: 0, Action: panel.ActionClick}, "select", nil
	case b == 'b' || b == 0x7f || b == 0x08:
		return &panel.Event{Kind: panel.KindButton, ID: 1, Action: panel.ActionClick}, "back", nil
	case b == 'p':
		return &panel.Event{Kind: panel.KindButton, ID: 1, Action: panel.ActionDouble}, "on/off", nil
	case b == 'm':
		return &panel.Event{Kind: panel.KindIR, IR: remote.Mute}, "remote mute", nil
	case b == 'l':
		return &panel.Event{Kind: panel.KindIR, IR: remote.Previous}, "remote previous", nil
	case b >= '1' && b <= '6':
		i := int(b - '1')
		return &panel.Event{Kind: panel.KindIR, IR: remote.Input[i]}, fmt.Sprintf("remote input %d", i+1), nil
	case b == 0x1b:
		b2, err := in.ReadByte()
		if err != nil || b2 != '[' {
			return nil, "", err
		}
		b3, err := in.ReadByte()
		if err != nil {
			return nil, "", err
		}
		switch b3 {
		case 'A':
			return &panel.Event{Kind: panel.KindEncoder, ID: 0, Delta: 1}, "volume +1", nil
		case 'B':
			return &panel.Event{Kind: panel.KindEncoder, ID: 0, Delta: -1}, "volume -1", nil
		case 'C':
			return &panel.Event{Kind: panel.KindEncoder, ID: 1, Delta: 1}, "nav +1", nil
		case 'D':
			return &panel.Event{Kind: panel.KindEncoder, ID: 1, Delta: -1}, "nav -1", nil
		}
	}
	return nil, "", nil
}
