// Command preampd is the preamplifier controller daemon.
// Run with --mock to use simulated hardware (no preamp board required).
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"strconv"
	"strings"

	"github.com/mezmerize-audio/preampd/internal/api"
	"github.com/mezmerize-audio/preampd/internal/auth"
	"github.com/mezmerize-audio/preampd/internal/config"
	"github.com/mezmerize-audio/preampd/internal/control"
	"github.com/mezmerize-audio/preampd/internal/events"
	"github.com/mezmerize-audio/preampd/internal/hardware"
	"github.com/mezmerize-audio/preampd/internal/identity"
	"github.com/mezmerize-audio/preampd/internal/maintenance"
	"github.com/mezmerize-audio/preampd/internal/models"
	"github.com/mezmerize-audio/preampd/internal/panel"
	"github.com/mezmerize-audio/preampd/internal/syspower"
	"github.com/mezmerize-audio/preampd/internal/zeroconf"
)

// nvramImageSize matches the 24C64 EEPROM on the real board, so a mock
// image file and a hardware image share the same record layout.
const nvramImageSize = 8192

func main() {
	var (
		mock      = flag.Bool("mock", false, "use mock hardware driver (no preamp board required)")
		addr      = flag.String("addr", ":80", "HTTP listen address")
		cfgDir    = flag.String("config-dir", "", "config directory (default: ~/.config/preampd)")
		panelPort = flag.String("panel", "", "front panel serial port (default: from profile; with --mock: none)")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Resolve config directory
	if *cfgDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Error("cannot determine home directory", "err", err)
			os.Exit(1)
		}
		*cfgDir = filepath.Join(home, ".config", "preampd")
	}
	if err := os.MkdirAll(*cfgDir, 0755); err != nil {
		slog.Error("cannot create config directory", "path", *cfgDir, "err", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Device profile (wiring + live tunables)
	prof, err := config.LoadProfile(*cfgDir)
	if err != nil {
		slog.Error("cannot load device profile", "err", err)
		os.Exit(1)
	}
	defer prof.Close()
	dev := prof.Current()

	// Hardware driver and the NVRAM behind the persisted state
	var (
		hw hardware.Driver
		nv config.NVRAM
	)
	if *mock {
		slog.Info("using mock hardware driver")
		hw = hardware.NewMock()
		if err := hw.Init(ctx); err != nil {
			slog.Error("hardware initialization failed", "err", err)
			os.Exit(1)
		}
		img, err := config.NewFileNVRAM(filepath.Join(*cfgDir, "nvram.bin"), nvramImageSize)
		if err != nil {
			slog.Error("cannot open NVRAM image", "err", err)
			os.Exit(1)
		}
		nv = img
	} else {
		slog.Info("using real preamp board driver", "i2c", dev.I2CDevice, "muses", dev.MusesPort)
		board := hardware.NewBoard(hardware.BoardConfig{
			I2CDevice:      dev.I2CDevice,
			RelayAddr:      dev.RelayAddr,
			EEPROMAddr:     dev.EEPROMAddr,
			MusesPort:      dev.MusesPort,
			MusesLatchPin:  dev.MusesLatchPin,
			ADCPort:        dev.ADCPort,
			NTCChannels:    dev.NTCChannels,
			SupplyChannel:  dev.SupplyChannel,
			NTCRefOhms:     dev.NTCRefOhms,
			VrefMillivolts: dev.VrefMillivolts,
			SupplyDivider:  dev.SupplyDivider,
		})
		if err := board.Init(ctx); err != nil {
			slog.Error("hardware initialization failed", "err", err)
			os.Exit(1)
		}
		hw = board
		nv = board.NVRAM()
	}

	// Persisted-state store
	store, err := config.NewNVStore(nv)
	if err != nil {
		slog.Error("cannot open persisted-state store", "err", err)
		os.Exit(1)
	}

	// Event bus
	bus := events.NewBus()

	// System power requester; mock runs keep the host alive.
	var power syspower.Requester
	if !*mock {
		power = syspower.NewLogind()
	}

	// Controller (runs the boot sequence synchronously)
	version := identity.GetVersionFromDir(*cfgDir)
	ctrl, err := control.New(ctx, control.Options{
		Driver:  hw,
		Store:   store,
		Bus:     bus,
		Profile: prof,
		Power:   power,
		Info: models.Info{
			Version:  version,
			Hostname: identity.GetHostname(),
			Mock:     *mock,
		},
	})
	if err != nil {
		slog.Error("controller initialization failed", "err", err)
		os.Exit(1)
	}

	// Front panel event source. A mock run without an explicit port gets an
	// inert source; the API is then the only control surface.
	port := *panelPort
	if port == "" && !*mock {
		port = dev.PanelPort
	}
	var src panel.Source
	if port == "" {
		slog.Info("no front panel port, API control only")
		src = panel.NewScript()
	} else {
		reader, err := panel.Open(port, dev.PanelBaud)
		if err != nil {
			slog.Error("cannot open front panel port", "port", port, "err", err)
			os.Exit(1)
		}
		slog.Info("front panel connected", "port", port, "baud", dev.PanelBaud)
		go func() {
			if err := reader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("panel reader stopped", "err", err)
			}
		}()
		src = reader
	}

	// Control loop
	runErr := make(chan error, 1)
	go func() {
		runErr <- ctrl.Run(ctx, src)
	}()

	// Auth service
	authSvc, err := auth.NewService(*cfgDir)
	if err != nil {
		slog.Error("auth service initialization failed", "err", err)
		os.Exit(1)
	}
	defer authSvc.Close()

	// Maintenance goroutine (nightly config backups)
	maint := maintenance.New(*cfgDir)
	go maint.Start(ctx)

	// Zeroconf mDNS registration
	hostname, _ := os.Hostname()
	apiPort := 80
	if parts := strings.SplitN(*addr, ":", 2); len(parts) == 2 && parts[1] != "" {
		if p, err := strconv.Atoi(parts[1]); err == nil {
			apiPort = p
		}
	}
	zc := zeroconf.New(hostname, apiPort, version)
	go func() {
		if err := zc.Start(ctx); err != nil {
			slog.Warn("zeroconf failed", "err", err)
		}
	}()

	// HTTP server
	router := api.NewRouter(ctrl, authSvc, maint, bus)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("preampd listening", "addr", *addr, "mock", *mock, "config", *cfgDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	// Wait for a signal or a control loop failure
	select {
	case <-ctx.Done():
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("control loop failed", "err", err)
		}
		cancel()
		runErr = nil
	}
	slog.Info("shutting down...")

	// Let the control loop flush the runtime record before touching hardware.
	if runErr != nil {
		<-runErr
	}

	// Unwind the SSE handlers, then the server.
	bus.Close()
	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	if err := hw.Close(); err != nil {
		slog.Warn("hardware close error", "err", err)
	}

	slog.Info("shutdown complete")
}
