package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// DefaultDebounce is how long watch mode waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// ErrNotFound is returned when no config file exists at the searched
// locations.
var ErrNotFound = errors.New("config file not found")

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".airules.yml", ".airules.yaml", "airules.yml", "airules.yaml"}

// FileConfig is the on-disk YAML configuration shape for airules.
type FileConfig struct {
	Mode      *string `yaml:"mode"`
	Output    *string `yaml:"output"`
	Enable    *string `yaml:"enable"`
	Disable   *string `yaml:"disable"`
	Threads   *int    `yaml:"threads"`
	Timeout   *string `yaml:"timeout"`
	NoColor   *bool   `yaml:"no_color"`
	LogLevel  *string `yaml:"log_level"`
	LogFormat *string `yaml:"log_format"`
	NoCache   *bool   `yaml:"no_cache"`

	// ExcludeRules drops generated rules whose text matches an entry
	// exactly or as a glob pattern.
	ExcludeRules []string `yaml:"exclude_rules"`

	// Watch mode settings
	Watch *WatchConfig `yaml:"watch"`
}

// WatchConfig holds settings for `airules watch`.
type WatchConfig struct {
	// Debounce is a duration string such as "500ms".
	Debounce *string `yaml:"debounce"`

	// Paths are extra files, relative to the project root, whose changes
	// trigger regeneration in addition to the built-in manifest list.
	Paths []string `yaml:"paths"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, fmt.Errorf("no local config in %s: %w", repoRoot, ErrNotFound)
}

// GlobalPath returns the global config location under the XDG base
// directory or ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "airules", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, fmt.Errorf("no global config at %s: %w", p, ErrNotFound)
}

// Validate checks values that YAML typing alone cannot.
func (fc FileConfig) Validate() error {
	if fc.Mode != nil {
		switch *fc.Mode {
		case "categorized", "flat":
		default:
			return fmt.Errorf("mode: unknown value %q", *fc.Mode)
		}
	}
	if fc.Threads != nil && *fc.Threads < 0 {
		return fmt.Errorf("threads: must not be negative")
	}
	if fc.Timeout != nil {
		if _, err := time.ParseDuration(*fc.Timeout); err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
	}
	for _, p := range fc.ExcludeRules {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("exclude_rules: invalid pattern %q", p)
		}
	}
	if fc.Watch != nil && fc.Watch.Debounce != nil {
		if _, err := time.ParseDuration(*fc.Watch.Debounce); err != nil {
			return fmt.Errorf("watch.debounce: %w", err)
		}
	}
	return nil
}

// GetWatchConfig returns the watch configuration with defaults applied.
func (fc FileConfig) GetWatchConfig() WatchConfig {
	if fc.Watch == nil {
		return WatchConfig{}
	}
	return *fc.Watch
}

// GetDebounce returns the debounce interval (default DefaultDebounce).
func (wc WatchConfig) GetDebounce() time.Duration {
	if wc.Debounce == nil {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(*wc.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// Starter is the commented template written by `airules config init`.
const Starter = `# airules configuration
# Values here are overridden by command-line flags.

# Render mode: categorized or flat
mode: categorized

# File that holds the <!-- airules:start --> / <!-- airules:end --> block
output: AGENTS.md

# Comma-separated scanner IDs or glob patterns
# enable: "node,typescript,prettier"
# disable: "git"

# Concurrent scanners (0 = number of CPUs, 1 = sequential)
threads: 0

# Per-scanner time limit
timeout: 10s

# Rules to leave out, by exact text or glob pattern
# exclude_rules:
#   - "Use the latest LTS version of Node.js."
#   - "Run * before pushing."

# log_level: info
# log_format: text
# no_color: false
# no_cache: false

watch:
  debounce: 300ms
  # paths: ["docs/conventions.md"]
`

// WriteStarter writes Starter to path unless a file already exists there.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Starter), 0o644)
}
