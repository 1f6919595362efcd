package config_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mezmerize-audio/preampd/internal/config"
	"github.com/mezmerize-audio/preampd/internal/models"
)

func newTestStore(t *testing.T) *config.NVStore {
	t.Helper()
	st, err := config.NewNVStore(config.NewMemNVRAM(1024))
	if err != nil {
		t.Fatalf("NewNVStore: %v", err)
	}
	return st
}

func TestStoreFreshMediumInvalid(t *testing.T) {
	st := newTestStore(t)

	if _, ok, err := st.LoadSettings(); err != nil || ok {
		t.Errorf("fresh settings: ok=%t err=%v, want invalid and no error", ok, err)
	}
	if _, ok, err := st.LoadRuntime(); err != nil || ok {
		t.Errorf("fresh runtime: ok=%t err=%v, want invalid and no error", ok, err)
	}
	if _, ok, err := st.LoadCustom(); err != nil || ok {
		t.Errorf("fresh custom: ok=%t err=%v, want invalid and no error", ok, err)
	}
}

func TestStoreSettingsRoundTrip(t *testing.T) {
	st := newTestStore(t)

	s := models.DefaultSettings()
	s.VolumeSteps = 90
	if err := st.SaveSettings(&s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got, ok, err := st.LoadSettings()
	if err != nil || !ok {
		t.Fatalf("LoadSettings: ok=%t err=%v", ok, err)
	}
	if !reflect.DeepEqual(s, got) {
		t.Errorf("loaded settings mismatch:\n got %+v\nwant %+v", got, s)
	}
}

func TestStoreRuntimeRoundTrip(t *testing.T) {
	st := newTestStore(t)

	r := models.DefaultRuntime()
	r.Input = 2
	r.Volume = 25
	r.LastVol[2] = 25
	if err := st.SaveRuntime(&r); err != nil {
		t.Fatalf("SaveRuntime: %v", err)
	}

	got, ok, err := st.LoadRuntime()
	if err != nil || !ok {
		t.Fatalf("LoadRuntime: ok=%t err=%v", ok, err)
	}
	if !reflect.DeepEqual(r, got) {
		t.Errorf("loaded runtime mismatch:\n got %+v\nwant %+v", got, r)
	}
}

func TestStoreRuntimeRejectsBadInputIndex(t *testing.T) {
	st := newTestStore(t)

	r := models.DefaultRuntime()
	r.Input = 9
	if err := st.SaveRuntime(&r); err != nil {
		t.Fatalf("SaveRuntime: %v", err)
	}
	if _, ok, err := st.LoadRuntime(); err != nil || ok {
		t.Errorf("runtime with input 9: ok=%t err=%v, want invalid", ok, err)
	}
}

func TestStoreCustomSlotIndependent(t *testing.T) {
	st := newTestStore(t)

	active := models.DefaultSettings()
	active.MuteLevel = 5
	custom := models.DefaultSettings()
	custom.MuteLevel = 40

	if err := st.SaveSettings(&active); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if err := st.SaveCustom(&custom); err != nil {
		t.Fatalf("SaveCustom: %v", err)
	}

	gotActive, ok, _ := st.LoadSettings()
	if !ok || gotActive.MuteLevel != 5 {
		t.Errorf("active slot: ok=%t mute_level=%d, want 5", ok, gotActive.MuteLevel)
	}
	gotCustom, ok, _ := st.LoadCustom()
	if !ok || gotCustom.MuteLevel != 40 {
		t.Errorf("custom slot: ok=%t mute_level=%d, want 40", ok, gotCustom.MuteLevel)
	}
}

func TestStoreStampsSchemaVersion(t *testing.T) {
	st := newTestStore(t)

	s := models.DefaultSettings()
	s.SchemaVersion = 0 // stale tag must not survive a save
	if err := st.SaveSettings(&s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, ok, err := st.LoadSettings()
	if err != nil || !ok {
		t.Fatalf("LoadSettings: ok=%t err=%v", ok, err)
	}
	if got.SchemaVersion != models.SchemaVersion {
		t.Errorf("schema version = %d, want %d", got.SchemaVersion, models.SchemaVersion)
	}
}

func TestStoreDetectsVersionMismatch(t *testing.T) {
	nv := config.NewMemNVRAM(1024)
	st, err := config.NewNVStore(nv)
	if err != nil {
		t.Fatalf("NewNVStore: %v", err)
	}

	s := models.DefaultSettings()
	if err := st.SaveSettings(&s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	// Clobber the trailing version tag directly on the medium.
	if _, err := nv.WriteAt([]byte{0xFF, 0xFF}, config.SettingsRecordSize-2); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, ok, err := st.LoadSettings(); err != nil || ok {
		t.Errorf("clobbered settings: ok=%t err=%v, want invalid", ok, err)
	}
}

func TestStoreRejectsTinyMedium(t *testing.T) {
	if _, err := config.NewNVStore(config.NewMemNVRAM(64)); err == nil {
		t.Error("expected error for undersized medium")
	}
}

func TestFileNVRAMPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nvram.bin")

	nv, err := config.NewFileNVRAM(path, 1024)
	if err != nil {
		t.Fatalf("NewFileNVRAM: %v", err)
	}
	st, err := config.NewNVStore(nv)
	if err != nil {
		t.Fatalf("NewNVStore: %v", err)
	}
	s := models.DefaultSettings()
	s.Inputs[0].Name = "Streamer"
	if err := st.SaveSettings(&s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	// Reopen the image as a fresh store.
	nv2, err := config.NewFileNVRAM(path, 1024)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	st2, err := config.NewNVStore(nv2)
	if err != nil {
		t.Fatalf("NewNVStore: %v", err)
	}
	got, ok, err := st2.LoadSettings()
	if err != nil || !ok {
		t.Fatalf("LoadSettings after reopen: ok=%t err=%v", ok, err)
	}
	if got.Inputs[0].Name != "Streamer" {
		t.Errorf("persisted name = %q, want %q", got.Inputs[0].Name, "Streamer")
	}
}
