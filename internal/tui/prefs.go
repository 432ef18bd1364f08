package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/airules/airules/internal/files"
	"github.com/airules/airules/internal/report"
)

// Prefs holds user preferences for the review screen that persist across
// sessions.
type Prefs struct {
	// Mode is the render mode shown in the preview and used when writing.
	Mode report.Mode `json:"mode"`
	// Preview shows the rendered Markdown pane under the rules table.
	Preview bool `json:"preview"`
}

// DefaultPrefs returns the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{Mode: report.Categorized, Preview: true}
}

// prefsPath returns the path to the preferences file.
func prefsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".airules", "tui_prefs.json"), nil
}

// LoadPrefs loads user preferences from disk, returning defaults if not found.
func LoadPrefs() Prefs {
	prefs := DefaultPrefs()

	path, err := prefsPath()
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prefs
	}
	_ = json.Unmarshal(data, &prefs) //nolint:errcheck // fall back to defaults
	if _, err := report.ParseMode(string(prefs.Mode)); err != nil {
		prefs.Mode = report.Categorized
	}
	return prefs
}

// SavePrefs persists user preferences to disk.
func SavePrefs(prefs Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return files.WriteFileAtomic(path, data, 0o600)
}
