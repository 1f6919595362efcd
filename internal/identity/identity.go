// Package identity provides the daemon's version and hostname strings.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultVersion is the fallback version string when metadata.json is not found.
const DefaultVersion = "0.9.0"

// GetHostname returns the system hostname.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "preamp"
	}
	return h
}

// GetVersion reads the version from ~/.config/preampd/metadata.json.
// Falls back to DefaultVersion if the file is missing or unreadable.
func GetVersion() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultVersion
	}
	return GetVersionFromDir(filepath.Join(home, ".config", "preampd"))
}

// GetVersionFromDir reads the version from a specific config directory.
// The installer stamps metadata.json next to the other config files.
func GetVersionFromDir(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return DefaultVersion
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return DefaultVersion
	}

	if v, ok := meta["version"].(string); ok && v != "" {
		return v
	}
	return DefaultVersion
}
