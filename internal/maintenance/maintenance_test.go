package maintenance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestBackup_CreatesFile verifies that runBackup creates a .tar.gz archive.
func TestBackup_CreatesFile(t *testing.T) {
	// Create a fake config dir with a file in it
	cfgDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(cfgDir, "profile.json"), []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	// Point the backup destination at a scratch home
	origHome := os.Getenv("HOME")
	fakeHome := t.TempDir()
	os.Setenv("HOME", fakeHome)
	t.Cleanup(func() { os.Setenv("HOME", origHome) })

	file, err := runBackup(cfgDir)
	if err != nil {
		t.Fatalf("runBackup: %v", err)
	}

	if _, err := os.Stat(file); err != nil {
		t.Errorf("backup file %q does not exist: %v", file, err)
	}
	if !strings.HasSuffix(file, ".tar.gz") {
		t.Errorf("backup file %q does not end with .tar.gz", file)
	}
}

// TestBackup_DeletesOld verifies that pruneOldBackups removes files older than maxAge.
func TestBackup_DeletesOld(t *testing.T) {
	dir := t.TempDir()

	// Create a "new" backup
	newFile := filepath.Join(dir, "preampd-config-2099-01-01.tar.gz")
	if err := os.WriteFile(newFile, []byte("new"), 0644); err != nil {
		t.Fatal(err)
	}

	// Create an "old" backup with a past mod time
	oldFile := filepath.Join(dir, "preampd-config-2000-01-01.tar.gz")
	if err := os.WriteFile(oldFile, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	pastTime := time.Now().Add(-100 * 24 * time.Hour)
	if err := os.Chtimes(oldFile, pastTime, pastTime); err != nil {
		t.Fatal(err)
	}

	pruneOldBackups(dir, 90*24*time.Hour)

	// Old file should be gone
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Errorf("old backup %q still exists after pruning", oldFile)
	}
	// New file should still be there
	if _, err := os.Stat(newFile); err != nil {
		t.Errorf("new backup %q was incorrectly pruned: %v", newFile, err)
	}
}

// TestListBackups verifies that ListBackups returns only backup archives.
func TestListBackups(t *testing.T) {
	origHome := os.Getenv("HOME")
	fakeHome := t.TempDir()
	os.Setenv("HOME", fakeHome)
	t.Cleanup(func() { os.Setenv("HOME", origHome) })

	backupDir := filepath.Join(fakeHome, "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		t.Fatal(err)
	}

	names := []string{
		"preampd-config-2024-01-01.tar.gz",
		"preampd-config-2024-06-15.tar.gz",
		"other-file.txt", // should NOT be included
	}
	for _, n := range names {
		os.WriteFile(filepath.Join(backupDir, n), []byte{}, 0644)
	}

	files, err := ListBackups()
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("ListBackups returned %d files; want 2: %v", len(files), files)
	}
}

// TestListBackups_NoDir verifies an empty result when no backups exist yet.
func TestListBackups_NoDir(t *testing.T) {
	origHome := os.Getenv("HOME")
	os.Setenv("HOME", t.TempDir())
	t.Cleanup(func() { os.Setenv("HOME", origHome) })

	files, err := ListBackups()
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("ListBackups returned %d files for missing dir; want 0", len(files))
	}
}
