// Package maintenance runs the daemon's background housekeeping: nightly
// tarball backups of the config directory with age-based pruning.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const backupPrefix = "preampd-config-"

// Service manages background maintenance goroutines.
type Service struct {
	configDir string
}

// New creates a new maintenance Service for the given config directory.
func New(configDir string) *Service {
	return &Service{configDir: configDir}
}

// Start launches the backup goroutine and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.runBackupLoop(ctx)
	<-ctx.Done()
}

// RunBackupNow performs a backup immediately and returns the backup file path.
func (s *Service) RunBackupNow() (string, error) {
	return runBackup(s.configDir)
}

// ListBackups returns available backup files sorted by name (newest last).
func ListBackups() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	backupDir := filepath.Join(home, "backups")

	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) && strings.HasSuffix(e.Name(), ".tar.gz") {
			files = append(files, filepath.Join(backupDir, e.Name()))
		}
	}
	return files, nil
}

// runBackupLoop performs daily backups at 2am.
func (s *Service) runBackupLoop(ctx context.Context) {
	for {
		now := time.Now()
		// Next 2am
		next2am := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, now.Location())
		if !next2am.After(now) {
			next2am = next2am.Add(24 * time.Hour)
		}
		delay := next2am.Sub(now)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
			path, err := runBackup(s.configDir)
			if err != nil {
				slog.Error("maintenance: backup failed", "err", err)
			} else {
				slog.Info("maintenance: backup created", "file", path)
			}
		}
	}
}

// runBackup creates a timestamped backup of the config directory.
func runBackup(configDir string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}

	backupDir := filepath.Join(home, "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	// Use configDir if provided, else default to ~/.config/preampd
	src := configDir
	if src == "" {
		src = filepath.Join(home, ".config", "preampd")
	}

	date := time.Now().Format("2006-01-02")
	destFile := filepath.Join(backupDir, fmt.Sprintf("%s%s.tar.gz", backupPrefix, date))

	cmd := exec.Command("tar", "-czf", destFile, src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("tar: %w: %s", err, out)
	}

	// Prune backups older than 90 days
	pruneOldBackups(backupDir, 90*24*time.Hour)

	return destFile, nil
}

// pruneOldBackups deletes backup files older than maxAge from backupDir.
func pruneOldBackups(backupDir string, maxAge time.Duration) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(backupDir, e.Name())
			if err := os.Remove(path); err != nil {
				slog.Warn("maintenance: failed to prune old backup", "file", path, "err", err)
			} else {
				slog.Info("maintenance: pruned old backup", "file", path)
			}
		}
	}
}
