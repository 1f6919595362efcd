// Package config persists the controller's settings records and loads
// the device profile.
package config

import (
	"fmt"
	"sync"

	"github.com/mezmerize-audio/preampd/internal/models"
)

// NVRAM is the non-volatile medium under the store: the board EEPROM on
// real hardware, a file or memory image otherwise.
type NVRAM interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() int
}

// Store is the interface for persisting the settings records.
type Store interface {
	// LoadSettings reads the active settings record. ok reports whether
	// the record carries the compiled schema version and passes
	// validation; when it does not, the caller falls back to defaults.
	LoadSettings() (s models.PersistedSettings, ok bool, err error)

	// SaveSettings writes the active settings record with the current
	// schema version stamped.
	SaveSettings(s *models.PersistedSettings) error

	// LoadRuntime reads the runtime record, with the same ok contract.
	LoadRuntime() (r models.RuntimeSettings, ok bool, err error)

	// SaveRuntime writes the runtime record with the current schema
	// version stamped.
	SaveRuntime(r *models.RuntimeSettings) error

	// LoadCustom reads the user-saved settings copy.
	LoadCustom() (s models.PersistedSettings, ok bool, err error)

	// SaveCustom writes a settings record into the custom slot.
	SaveCustom(s *models.PersistedSettings) error
}

// NVStore is a Store over a raw NVRAM image, using the fixed record
// offsets of the codec.
type NVStore struct {
	mu sync.Mutex
	nv NVRAM
}

// NewNVStore creates a store over the given medium. The medium must be
// large enough for all three record slots.
func NewNVStore(nv NVRAM) (*NVStore, error) {
	need := CustomOffset + SettingsRecordSize
	if nv.Size() < need {
		return nil, fmt.Errorf("config: medium holds %d bytes, need %d", nv.Size(), need)
	}
	return &NVStore{nv: nv}, nil
}

func (st *NVStore) LoadSettings() (models.PersistedSettings, bool, error) {
	return st.loadSettingsAt(SettingsOffset)
}

func (st *NVStore) LoadCustom() (models.PersistedSettings, bool, error) {
	return st.loadSettingsAt(CustomOffset)
}

func (st *NVStore) loadSettingsAt(off int64) (models.PersistedSettings, bool, error) {
	buf := make([]byte, SettingsRecordSize)
	st.mu.Lock()
	_, err := st.nv.ReadAt(buf, off)
	st.mu.Unlock()
	if err != nil {
		return models.PersistedSettings{}, false, fmt.Errorf("config: read settings: %w", err)
	}
	s, err := DecodeSettings(buf)
	if err != nil {
		return models.PersistedSettings{}, false, err
	}
	ok := s.Valid() && s.Validate() == nil
	return s, ok, nil
}

func (st *NVStore) SaveSettings(s *models.PersistedSettings) error {
	return st.saveSettingsAt(s, SettingsOffset)
}

func (st *NVStore) SaveCustom(s *models.PersistedSettings) error {
	return st.saveSettingsAt(s, CustomOffset)
}

func (st *NVStore) saveSettingsAt(s *models.PersistedSettings, off int64) error {
	cp := *s
	cp.SchemaVersion = models.SchemaVersion
	buf := EncodeSettings(&cp)
	st.mu.Lock()
	_, err := st.nv.WriteAt(buf, off)
	st.mu.Unlock()
	if err != nil {
		return fmt.Errorf("config: write settings: %w", err)
	}
	return nil
}

func (st *NVStore) LoadRuntime() (models.RuntimeSettings, bool, error) {
	buf := make([]byte, RuntimeRecordSize)
	st.mu.Lock()
	_, err := st.nv.ReadAt(buf, RuntimeOffset)
	st.mu.Unlock()
	if err != nil {
		return models.RuntimeSettings{}, false, fmt.Errorf("config: read runtime: %w", err)
	}
	r, err := DecodeRuntime(buf)
	if err != nil {
		return models.RuntimeSettings{}, false, err
	}
	ok := r.Valid() && int(r.Input) < models.NumInputs && int(r.PrevInput) < models.NumInputs
	return r, ok, nil
}

func (st *NVStore) SaveRuntime(r *models.RuntimeSettings) error {
	cp := *r
	cp.SchemaVersion = models.SchemaVersion
	buf := EncodeRuntime(&cp)
	st.mu.Lock()
	_, err := st.nv.WriteAt(buf, RuntimeOffset)
	st.mu.Unlock()
	if err != nil {
		return fmt.Errorf("config: write runtime: %w", err)
	}
	return nil
}

// Ensure NVStore implements config.Store
var _ Store = (*NVStore)(nil)
