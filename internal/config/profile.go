package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const profileFileName = "profile.json"

// DeviceProfile describes the board wiring and the operating tunables.
// Bus paths and addresses take effect at the next start; thresholds and
// timings reload live when the file changes.
type DeviceProfile struct {
	// Wiring.
	I2CDevice      string  `json:"i2c_device"`
	RelayAddr      uint16  `json:"relay_addr"`
	EEPROMAddr     uint16  `json:"eeprom_addr"`
	MusesPort      string  `json:"muses_port"`
	MusesLatchPin  string  `json:"muses_latch_pin"`
	ADCPort        string  `json:"adc_port"`
	NTCChannels    [2]int  `json:"ntc_channels"`
	SupplyChannel  int     `json:"supply_channel"`
	NTCRefOhms     float64 `json:"ntc_ref_ohms"`
	VrefMillivolts int     `json:"vref_millivolts"`
	SupplyDivider  float64 `json:"supply_divider"`
	PanelPort      string  `json:"panel_port"`
	PanelBaud      int     `json:"panel_baud"`

	// Tunables.
	PowerFailLowMV  int `json:"power_fail_low_mv"`  // below this the rail is definitely gone
	PowerFailHighMV int `json:"power_fail_high_mv"` // below this (but above low) the rail is failing
	PowerGoodMV     int `json:"power_good_mv"`      // at or above this the rail has recovered
	VoltagePollMS   int `json:"voltage_poll_ms"`
	TempPollMS      int `json:"temp_poll_ms"`
	TriggerPulseMS  int `json:"trigger_pulse_ms"`  // pulse width for non-latching triggers
	TriggerSettleMS int `json:"trigger_settle_ms"` // wait after a smart-trigger engage before re-reading
	TriggerRetries  int `json:"trigger_retries"`   // smart-trigger re-reads before declaring a fault
}

// DefaultProfile returns the profile of the standard controller build.
func DefaultProfile() DeviceProfile {
	return DeviceProfile{
		I2CDevice:       "/dev/i2c-1",
		RelayAddr:       0x20,
		EEPROMAddr:      0x50,
		MusesPort:       "SPI0.0",
		MusesLatchPin:   "GPIO25",
		ADCPort:         "SPI0.1",
		NTCChannels:     [2]int{0, 1},
		SupplyChannel:   2,
		NTCRefOhms:      10000,
		VrefMillivolts:  3300,
		SupplyDivider:   2.0,
		PanelPort:       "/dev/ttyAMA0",
		PanelBaud:       115200,
		PowerFailLowMV:  3000,
		PowerFailHighMV: 4600,
		PowerGoodMV:     4700,
		VoltagePollMS:   250,
		TempPollMS:      1000,
		TriggerPulseMS:  500,
		TriggerSettleMS: 200,
		TriggerRetries:  1,
	}
}

// fillDefaults replaces zero-valued fields with the defaults so a
// profile file only needs to name what it overrides.
func (p *DeviceProfile) fillDefaults() {
	def := DefaultProfile()
	if p.I2CDevice == "" {
		p.I2CDevice = def.I2CDevice
	}
	if p.RelayAddr == 0 {
		p.RelayAddr = def.RelayAddr
	}
	if p.EEPROMAddr == 0 {
		p.EEPROMAddr = def.EEPROMAddr
	}
	if p.MusesPort == "" {
		p.MusesPort = def.MusesPort
	}
	if p.MusesLatchPin == "" {
		p.MusesLatchPin = def.MusesLatchPin
	}
	if p.ADCPort == "" {
		p.ADCPort = def.ADCPort
	}
	if p.NTCRefOhms == 0 {
		p.NTCRefOhms = def.NTCRefOhms
	}
	if p.VrefMillivolts == 0 {
		p.VrefMillivolts = def.VrefMillivolts
	}
	if p.SupplyDivider == 0 {
		p.SupplyDivider = def.SupplyDivider
	}
	if p.PanelPort == "" {
		p.PanelPort = def.PanelPort
	}
	if p.PanelBaud == 0 {
		p.PanelBaud = def.PanelBaud
	}
	if p.PowerFailLowMV == 0 {
		p.PowerFailLowMV = def.PowerFailLowMV
	}
	if p.PowerFailHighMV == 0 {
		p.PowerFailHighMV = def.PowerFailHighMV
	}
	if p.PowerGoodMV == 0 {
		p.PowerGoodMV = def.PowerGoodMV
	}
	if p.VoltagePollMS == 0 {
		p.VoltagePollMS = def.VoltagePollMS
	}
	if p.TempPollMS == 0 {
		p.TempPollMS = def.TempPollMS
	}
	if p.TriggerPulseMS == 0 {
		p.TriggerPulseMS = def.TriggerPulseMS
	}
	if p.TriggerSettleMS == 0 {
		p.TriggerSettleMS = def.TriggerSettleMS
	}
	if p.TriggerRetries == 0 {
		p.TriggerRetries = def.TriggerRetries
	}
}

// Profile is a live view of the device profile file, reloading the
// tunables when the file changes.
type Profile struct {
	mu      sync.RWMutex
	path    string
	cur     DeviceProfile
	watcher *fsnotify.Watcher
}

// LoadProfile reads profile.json from the config directory. A missing
// file yields the defaults; the file is then watched for changes.
func LoadProfile(configDir string) (*Profile, error) {
	p := &Profile{path: filepath.Join(configDir, profileFileName)}
	if err := p.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("profile: could not create fsnotify watcher", "err", err)
		return p, nil
	}
	p.watcher = watcher
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		slog.Warn("profile: could not watch config dir", "err", err)
	}
	go p.watchLoop()
	return p, nil
}

// Path returns the profile file path.
func (p *Profile) Path() string { return p.path }

// Current returns a copy of the live profile.
func (p *Profile) Current() DeviceProfile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cur
}

// Reload re-reads the profile file. A missing file resets to defaults;
// a malformed one keeps the previous values.
func (p *Profile) Reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.mu.Lock()
			p.cur = DefaultProfile()
			p.mu.Unlock()
			return nil
		}
		return err
	}

	var dp DeviceProfile
	if err := json.Unmarshal(data, &dp); err != nil {
		return err
	}
	dp.fillDefaults()

	p.mu.Lock()
	p.cur = dp
	p.mu.Unlock()
	slog.Debug("profile: reloaded", "path", p.path)
	return nil
}

// Close stops the file watcher.
func (p *Profile) Close() {
	if p.watcher != nil {
		p.watcher.Close()
	}
}

func (p *Profile) watchLoop() {
	if p.watcher == nil {
		return
	}
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Name == p.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				if err := p.Reload(); err != nil {
					slog.Warn("profile: failed to reload", "err", err)
				}
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("profile: watcher error", "err", err)
		}
	}
}
