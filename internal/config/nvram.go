package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MemNVRAM is an in-memory NVRAM for tests that never touches disk.
type MemNVRAM struct {
	mu   sync.Mutex
	data []byte
}

// NewMemNVRAM returns a zero-filled in-memory image. A fresh image
// decodes to an invalid record, which is exactly first-boot behavior.
func NewMemNVRAM(size int) *MemNVRAM {
	return &MemNVRAM{data: make([]byte, size)}
}

func (m *MemNVRAM) Size() int { return len(m.data) }

func (m *MemNVRAM) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("nvram: read [%d,%d) out of range", off, off+int64(len(p)))
	}
	copy(p, m.data[off:])
	return len(p), nil
}

func (m *MemNVRAM) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("nvram: write [%d,%d) out of range", off, off+int64(len(p)))
	}
	copy(m.data[off:], p)
	return len(p), nil
}

// Ensure MemNVRAM implements config.NVRAM
var _ NVRAM = (*MemNVRAM)(nil)

// FileNVRAM keeps the NVRAM image in a single file, rewritten
// atomically on every write. It stands in for the board EEPROM when the
// daemon runs with the mock driver.
type FileNVRAM struct {
	mu   sync.Mutex
	path string
	data []byte
}

// NewFileNVRAM opens or creates an image of the given size. An existing
// shorter image is zero-extended, a longer one truncated.
func NewFileNVRAM(path string, size int) (*FileNVRAM, error) {
	f := &FileNVRAM{path: path, data: make([]byte, size)}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("nvram: read %s: %w", path, err)
	}
	copy(f.data, existing)
	return f, nil
}

// Path returns the image file path.
func (f *FileNVRAM) Path() string { return f.path }

func (f *FileNVRAM) Size() int { return len(f.data) }

func (f *FileNVRAM) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off < 0 || off+int64(len(p)) > int64(len(f.data)) {
		return 0, fmt.Errorf("nvram: read [%d,%d) out of range", off, off+int64(len(p)))
	}
	copy(p, f.data[off:])
	return len(p), nil
}

func (f *FileNVRAM) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if off < 0 || off+int64(len(p)) > int64(len(f.data)) {
		return 0, fmt.Errorf("nvram: write [%d,%d) out of range", off, off+int64(len(p)))
	}
	copy(f.data[off:], p)
	if err := f.writeAtomic(); err != nil {
		return 0, fmt.Errorf("nvram: flush %s: %w", f.path, err)
	}
	return len(p), nil
}

// writeAtomic rewrites the image file via a temp file and rename.
func (f *FileNVRAM) writeAtomic() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, f.data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, f.path)
}

// Ensure FileNVRAM implements config.NVRAM
var _ NVRAM = (*FileNVRAM)(nil)
