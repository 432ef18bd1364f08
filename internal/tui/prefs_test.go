package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airules/airules/internal/report"
)

func TestDefaultPrefs(t *testing.T) {
	prefs := DefaultPrefs()
	if prefs.Mode != report.Categorized || !prefs.Preview {
		t.Errorf("unexpected defaults: %+v", prefs)
	}
}

func TestLoadPrefs_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if got := LoadPrefs(); got != DefaultPrefs() {
		t.Errorf("LoadPrefs() with no file = %+v, want defaults", got)
	}
}

func TestSaveAndLoadPrefs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := Prefs{Mode: report.Flat, Preview: false}
	if err := SavePrefs(want); err != nil {
		t.Fatalf("SavePrefs: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".airules", "tui_prefs.json")); err != nil {
		t.Fatalf("prefs file not created: %v", err)
	}
	if got := LoadPrefs(); got != want {
		t.Errorf("LoadPrefs() = %+v, want %+v", got, want)
	}
}

func TestLoadPrefs_InvalidContent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".airules")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tui_prefs.json"), []byte(`{"mode":"fancy","preview":false}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got := LoadPrefs()
	if got.Mode != report.Categorized {
		t.Errorf("unknown mode should fall back to categorized, got %q", got.Mode)
	}
	if got.Preview {
		t.Errorf("valid fields are kept")
	}
}
